package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/swaraj404/DeepDoc/internal/config"
	"github.com/swaraj404/DeepDoc/internal/models"
)

type chunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID          string  `bun:"id,pk"`
	Content     string  `bun:"content,notnull"`
	Embedding   string  `bun:"embedding,notnull"`
	Source      string  `bun:"source,notnull"`
	ChunkIndex  int     `bun:"chunk_index,notnull"`
	TotalChunks int     `bun:"total_chunks,notnull"`
	Timestamp   string  `bun:"timestamp,notnull"`
	FilePath    string  `bun:"file_path"`
	Distance    float64 `bun:"distance,scanonly"`
}

// PostgresIndex stores chunks in postgres with a pgvector column, queried by
// cosine distance.
type PostgresIndex struct {
	db *bun.DB
}

// OpenPostgres connects via pgdriver when a separate password is configured
// (supabase style), otherwise through lib/pq with a plain DSN, then ensures
// the chunks table exists.
func OpenPostgres(ctx context.Context, cfg *config.DatabaseConfig) (*PostgresIndex, error) {
	var sqldb *sql.DB
	var err error
	if cfg.Password != "" {
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN), pgdriver.WithPassword(cfg.Password)))
	} else {
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
		id text PRIMARY KEY,
		content text NOT NULL,
		embedding vector(%d) NOT NULL,
		source text NOT NULL,
		chunk_index integer NOT NULL,
		total_chunks integer NOT NULL,
		timestamp text NOT NULL,
		file_path text
	)`, cfg.VectorSize)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("failed to initialize chunks table: %w", err)
	}

	log.Debug().Str("dsn", cfg.DSN).Int("vector_size", cfg.VectorSize).Msg("Opened postgres index")
	return &PostgresIndex{db: db}, nil
}

func (p *PostgresIndex) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]chunkRow, len(records))
	for i, rec := range records {
		idx, _ := strconv.Atoi(rec.Metadata[models.MetaChunkIndex])
		total, _ := strconv.Atoi(rec.Metadata[models.MetaTotalChunks])
		rows[i] = chunkRow{
			ID:          rec.ID,
			Content:     rec.Content,
			Embedding:   vectorString(rec.Embedding),
			Source:      rec.Metadata[models.MetaSource],
			ChunkIndex:  idx,
			TotalChunks: total,
			Timestamp:   rec.Metadata[models.MetaTimestamp],
			FilePath:    rec.Metadata[models.MetaFilePath],
		}
	}
	if _, err := p.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (p *PostgresIndex) Query(ctx context.Context, embedding []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	var rows []chunkRow
	err := p.db.NewSelect().
		Model(&rows).
		Column("id", "content", "source", "chunk_index", "total_chunks", "timestamp", "file_path").
		ColumnExpr("embedding <=> ? AS distance", vectorString(embedding)).
		OrderExpr("embedding <=> ?", vectorString(embedding)).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	hits := make([]Hit, len(rows))
	for i, row := range rows {
		hits[i] = Hit{
			ID:      row.ID,
			Content: row.Content,
			Metadata: map[string]string{
				models.MetaSource:      row.Source,
				models.MetaChunkIndex:  strconv.Itoa(row.ChunkIndex),
				models.MetaTotalChunks: strconv.Itoa(row.TotalChunks),
				models.MetaTimestamp:   row.Timestamp,
				models.MetaFilePath:    row.FilePath,
			},
			Distance: row.Distance,
		}
	}
	return hits, nil
}

func (p *PostgresIndex) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := p.db.NewDelete().Model((*chunkRow)(nil)).Where("source = ?", sourceID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (p *PostgresIndex) Count(ctx context.Context) (int, error) {
	count, err := p.db.NewSelect().Model((*chunkRow)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return count, nil
}

func (p *PostgresIndex) Close() error {
	return p.db.Close()
}

// vectorString renders an embedding as a pgvector input literal, e.g. [1,2,3].
func vectorString(vec []float32) string {
	var b strings.Builder
	b.WriteString("[")
	for i, v := range vec {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteString("]")
	return b.String()
}
