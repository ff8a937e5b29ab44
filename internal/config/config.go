package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from a YAML file.
type Config struct {
	RAG      RAGConfig      `yaml:"rag"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	InferLLM LLMConfig      `yaml:"inference_llm"`
	Database DatabaseConfig `yaml:"database"`
	LogLevel string         `yaml:"log_level"`
}

// RAGConfig holds chunking, retrieval and scoring knobs.
type RAGConfig struct {
	ChunkSize           int       `yaml:"chunk_size"`
	ChunkOverlap        int       `yaml:"chunk_overlap"`
	MinChunkLength      int       `yaml:"min_chunk_length"`
	SimilarityThreshold float64   `yaml:"similarity_threshold"`
	MaxChunks           int       `yaml:"max_chunks"`
	ContextChunks       int       `yaml:"context_chunks"`
	ConfidenceBoost     float64   `yaml:"confidence_boost"`
	ConfidenceWeights   []float64 `yaml:"confidence_weights"`
}

// LLMConfig describes one LLM endpoint (embedding or inference).
type LLMConfig struct {
	Provider string   `yaml:"provider"` // openai | ollama
	BaseURL  string   `yaml:"base_url"`
	Key      string   `yaml:"key"`
	Model    string   `yaml:"model"`
	Timeout  Duration `yaml:"timeout"`
	Retries  int      `yaml:"retries"`
}

// Duration lets YAML carry durations as strings like "60s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DatabaseConfig selects and configures the vector store backend.
type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // chromem | postgres
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
	DSN        string `yaml:"dsn"`
	Password   string `yaml:"password"`
	VectorSize int    `yaml:"vector_size"`
	Debug      bool   `yaml:"debug"`
}

const (
	defaultChunkSize      = 1000
	defaultChunkOverlap   = 200
	defaultMinChunkLength = 50
	defaultThreshold      = 0.01
	defaultMaxChunks      = 10
	defaultContextChunks  = 3
	defaultBoost          = 3.0
	defaultLLMTimeout     = Duration(60 * time.Second)
	defaultGenRetries     = 3
	defaultCollection     = "pdf_embeddings"
	defaultVectorSize     = 768
)

// LoadConfig reads the config file at path and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config usable without a config file, for tests and dry runs.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = defaultChunkSize
	}
	if c.RAG.ChunkOverlap <= 0 {
		c.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if c.RAG.MinChunkLength <= 0 {
		c.RAG.MinChunkLength = defaultMinChunkLength
	}
	if c.RAG.SimilarityThreshold <= 0 {
		c.RAG.SimilarityThreshold = defaultThreshold
	}
	if c.RAG.MaxChunks <= 0 {
		c.RAG.MaxChunks = defaultMaxChunks
	}
	if c.RAG.ContextChunks <= 0 {
		c.RAG.ContextChunks = defaultContextChunks
	}
	if c.RAG.ConfidenceBoost <= 0 {
		c.RAG.ConfidenceBoost = defaultBoost
	}
	if len(c.RAG.ConfidenceWeights) == 0 {
		c.RAG.ConfidenceWeights = []float64{1.0, 0.8, 0.6, 0.4, 0.2}
	}
	for _, llm := range []*LLMConfig{&c.EmbedLLM, &c.InferLLM} {
		if llm.Timeout <= 0 {
			llm.Timeout = defaultLLMTimeout
		}
	}
	if c.InferLLM.Retries <= 0 {
		c.InferLLM.Retries = defaultGenRetries
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "chromem"
	}
	if c.Database.Collection == "" {
		c.Database.Collection = defaultCollection
	}
	if c.Database.Path == "" {
		c.Database.Path = "./database"
	}
	if c.Database.VectorSize <= 0 {
		c.Database.VectorSize = defaultVectorSize
	}
}
