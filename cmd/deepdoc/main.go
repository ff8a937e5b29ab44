package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/swaraj404/DeepDoc/internal/config"
	"github.com/swaraj404/DeepDoc/internal/embedding"
	"github.com/swaraj404/DeepDoc/internal/helper"
	"github.com/swaraj404/DeepDoc/internal/llmservice"
	"github.com/swaraj404/DeepDoc/internal/rag"
	"github.com/swaraj404/DeepDoc/internal/store"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a document file to ingest")
	sourceID := flag.String("source", "", "Source id for ingestion (defaults to the file name)")
	query := flag.String("query", "", "Question to answer")
	search := flag.String("search", "", "Query to search without composing an answer")
	marks := flag.Int("marks", 3, "Question complexity (>= 1)")
	chunks := flag.Int("chunks", 0, "Max context chunks (0 = derived from marks)")
	withSources := flag.Bool("sources", false, "Include source previews in the answer")
	stats := flag.Bool("stats", false, "Print collection statistics")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	applyLogLevel(cfg.LogLevel)
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx := context.Background()
	engine, err := buildEngine(ctx, cfg, *query != "")
	if err != nil {
		log.Fatal().Err(err).Msg("Error building engine")
	}
	defer engine.Close()

	switch {
	case *filePath != "":
		ingestFile(ctx, engine, *filePath, *sourceID)
	case *query != "":
		answerQuery(ctx, engine, *query, *marks, *chunks, *withSources)
	case *search != "":
		searchChunks(ctx, engine, *search, *chunks)
	case *stats:
		printStats(ctx, engine)
	default:
		log.Fatal().Msg("Provide -file to ingest, -query to answer, -search to search, or -stats")
	}
}

func buildEngine(ctx context.Context, cfg *config.Config, needsGenerator bool) (*rag.Engine, error) {
	index, err := store.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	var generate llmservice.GenerateFunc
	if needsGenerator {
		generate, err = llmservice.NewGenerator(&cfg.InferLLM)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize generator: %w", err)
		}
	}

	return rag.New(cfg, index, embedder, generate), nil
}

func ingestFile(ctx context.Context, engine *rag.Engine, filePath, sourceID string) {
	ok, err := engine.Ingest(ctx, filePath, sourceID)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Ingestion failed")
	}
	if ok {
		log.Info().Str("file", filePath).Msg("Document stored successfully")
	}
}

func answerQuery(ctx context.Context, engine *rag.Engine, query string, marks, chunks int, withSources bool) {
	record, err := engine.Answer(ctx, query, marks, chunks, withSources)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering query")
	}

	fmt.Printf("Query: %s\n\n", record.Query)
	fmt.Printf("Answer: %s\n\n", record.Answer)
	fmt.Printf("Confidence: %.1f%%  (chunks used: %d)\n", record.Confidence*100, record.ChunksUsed)
	if withSources && len(record.Sources) > 0 {
		fmt.Println("\nSources:")
		helper.PrettyPrint(record.Sources)
	}
}

func searchChunks(ctx context.Context, engine *rag.Engine, query string, chunks int) {
	results, err := engine.Search(ctx, query, chunks)
	if err != nil {
		log.Fatal().Err(err).Msg("Error searching")
	}
	if len(results) == 0 {
		fmt.Println("No matching chunks.")
		return
	}
	helper.PrettyPrint(results)
}

func printStats(ctx context.Context, engine *rag.Engine) {
	stats, err := engine.Stats(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading stats")
	}
	helper.PrettyPrint(stats)
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
