package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OllamaConfig contains connection details for the local Ollama server.
type OllamaConfig struct {
	URL         string `yaml:"url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ModelsConfig names the model used for each role.
type ModelsConfig struct {
	Decision  string `yaml:"decision"`
	Chat      string `yaml:"chat"`
	Embedding string `yaml:"embedding"`
	Reranker  string `yaml:"reranker"`
	Language  string `yaml:"language"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Chroma *ChromaConfig `yaml:"chroma,omitempty"`
}

// ChromaConfig contains connection details for a Chroma vector store.
type ChromaConfig struct {
	URL         string `yaml:"url"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig bounds the candidate pool and the reranked result set.
type RetrievalConfig struct {
	Candidates int `yaml:"candidates"`
	TopK       int `yaml:"top_k"`
}

// ScorerConfig selects and configures the reranker's scoring strategy.
type ScorerConfig struct {
	Type   string              `yaml:"type"`
	Remote *RemoteScorerConfig `yaml:"remote,omitempty"`
}

// RemoteScorerConfig contains connection details for an external scoring
// endpoint.
type RemoteScorerConfig struct {
	Endpoint    string `yaml:"endpoint"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SummaryConfig configures the ingestion summary.
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Ollama      OllamaConfig      `yaml:"ollama"`
	Models      ModelsConfig      `yaml:"models"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Scorer      ScorerConfig      `yaml:"scorer"`
	Summary     SummaryConfig     `yaml:"summary"`
	Server      ServerConfig      `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/docchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Ollama: OllamaConfig{URL: "http://localhost:11434", TimeoutSecs: 300},
		Models: ModelsConfig{
			Decision:  "qwen2.5:3b",
			Chat:      "qwen2.5:7b",
			Embedding: "nomic-embed-text",
			Reranker:  "nomic-embed-text",
			Language:  "English",
		},
		VectorStore: VectorStoreConfig{
			Type:   "chroma",
			Chroma: &ChromaConfig{URL: "http://localhost:8000", Collection: "pdfs", TimeoutSecs: 60},
		},
		Chunker:   ChunkerConfig{Size: 1000, Overlap: 200},
		Retrieval: RetrievalConfig{Candidates: 10, TopK: 3},
		Scorer:    ScorerConfig{Type: "embedding"},
		Summary:   SummaryConfig{MaxSentences: 3},
		Server:    ServerConfig{Addr: ":8080"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = "http://localhost:11434"
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = 300
	}
	if cfg.Models.Language == "" {
		cfg.Models.Language = "English"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "chroma"
	}
	if cfg.VectorStore.Type == "chroma" {
		if cfg.VectorStore.Chroma == nil {
			cfg.VectorStore.Chroma = &ChromaConfig{}
		}
		if cfg.VectorStore.Chroma.URL == "" {
			cfg.VectorStore.Chroma.URL = "http://localhost:8000"
		}
		if cfg.VectorStore.Chroma.Collection == "" {
			cfg.VectorStore.Chroma.Collection = "pdfs"
		}
		if cfg.VectorStore.Chroma.TimeoutSecs == 0 {
			cfg.VectorStore.Chroma.TimeoutSecs = 60
		}
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 1000
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 200
	}
	if cfg.Retrieval.Candidates == 0 {
		cfg.Retrieval.Candidates = 10
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Scorer.Type == "" {
		cfg.Scorer.Type = "embedding"
	}
	if cfg.Scorer.Type == "remote" && cfg.Scorer.Remote != nil && cfg.Scorer.Remote.TimeoutSecs == 0 {
		cfg.Scorer.Remote.TimeoutSecs = 30
	}
	if cfg.Summary.MaxSentences == 0 {
		cfg.Summary.MaxSentences = 3
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}
