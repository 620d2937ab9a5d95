package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names an environment variable that may point at a config file.
const EnvConfigPath = "SPARSEVEC_CONFIG"

// EmbedderConfig selects the text vectorizer.
type EmbedderConfig struct {
	Type string `yaml:"type"`
}

// ChunkerConfig configures how documents are split into passages.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// ClusterConfig configures k-means over passage vectors.
type ClusterConfig struct {
	K             int `yaml:"k"`
	MaxIterations int `yaml:"max_iterations"`
	// MinRatio prunes center coordinates below this share of the center's
	// sum. Unset means the default; an explicit 0 disables pruning.
	MinRatio *float32 `yaml:"min_ratio,omitempty"`
	Rule     string   `yaml:"rule"`
	Workers  int      `yaml:"workers"`
}

// PruneRatio is MinRatio, or 0 when it is unset.
func (c ClusterConfig) PruneRatio() float32 {
	if c.MinRatio == nil {
		return 0
	}
	return *c.MinRatio
}

// TaggingConfig configures how passages are tagged from cluster centers.
type TaggingConfig struct {
	// Threshold is the dot product below which a passage gets the first
	// cluster's tag. Unset disables the fallback.
	Threshold  *float32 `yaml:"threshold,omitempty"`
	LabelTerms int      `yaml:"label_terms"`
}

// SearchConfig configures query ranking.
type SearchConfig struct {
	Rule string `yaml:"rule"`
	TopK int    `yaml:"top_k"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Cluster  ClusterConfig  `yaml:"cluster"`
	Tagging  TaggingConfig  `yaml:"tagging"`
	Search   SearchConfig   `yaml:"search"`
	Log      LogConfig      `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML and fills unset fields with defaults.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries $SPARSEVEC_CONFIG, ./config.yaml, then
// ~/.config/sparsevec/config.yaml. If none exists, defaults are written to
// the user path and returned.
func LoadDefault() (*AppConfig, string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		cfg, err := Load(p)
		return cfg, p, err
	}
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
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

// DefaultUserConfigPath is ~/.config/sparsevec/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sparsevec", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	minRatio := float32(0.01)
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "tfidf"},
		Chunker:  ChunkerConfig{Type: "sentence", SentencesPerChunk: 3, OverlapSentences: 0},
		Cluster:  ClusterConfig{K: 3, MaxIterations: 20, MinRatio: &minRatio, Rule: "closest"},
		Tagging:  TaggingConfig{LabelTerms: 3},
		Search:   SearchConfig{Rule: "dot", TopK: 5},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = def.Chunker.Type
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = def.Chunker.SentencesPerChunk
	}
	if cfg.Cluster.K == 0 {
		cfg.Cluster.K = def.Cluster.K
	}
	if cfg.Cluster.MaxIterations == 0 {
		cfg.Cluster.MaxIterations = def.Cluster.MaxIterations
	}
	if cfg.Cluster.MinRatio == nil {
		cfg.Cluster.MinRatio = def.Cluster.MinRatio
	}
	if cfg.Cluster.Rule == "" {
		cfg.Cluster.Rule = def.Cluster.Rule
	}
	if cfg.Tagging.LabelTerms == 0 {
		cfg.Tagging.LabelTerms = def.Tagging.LabelTerms
	}
	if cfg.Search.Rule == "" {
		cfg.Search.Rule = def.Search.Rule
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = def.Search.TopK
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}
