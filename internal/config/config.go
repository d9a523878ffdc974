package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	Backend   BackendConfig
	Serve     ServeConfig
	Retrieval RetrievalConfig
	Log       LogConfig
}

// BackendConfig points the client at the retrieval backend.
type BackendConfig struct {
	BaseURL string
	Timeout string // duration string, e.g. "60s"
}

// ServeConfig configures the bundled development backend.
type ServeConfig struct {
	Port    int
	DataDir string
}

type RetrievalConfig struct {
	TopK          int
	SnippetLength int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: "60s",
		},
		Serve: ServeConfig{
			Port:    8000,
			DataDir: defaultDataDir(),
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			SnippetLength: 200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/pdfchat/config.json, then applies PDFCHAT_*
// environment overrides on top of file values and defaults.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "pdfchat-data"
		}
	}
	return filepath.Join(dir, "pdfchat")
}
