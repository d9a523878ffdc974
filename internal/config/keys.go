package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "backend.base_url", typ: kString, env: "PDFCHAT_BACKEND_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Backend.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.BaseURL },
	},
	{
		key: "backend.timeout", typ: kString, env: "PDFCHAT_BACKEND_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Backend.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.Timeout },
	},
	{
		key: "serve.port", typ: kInt, env: "PDFCHAT_SERVE_PORT",
		apply:   func(cfg *Config, v any) { cfg.Serve.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Serve.Port },
	},
	{
		key: "serve.data_dir", typ: kString, env: "PDFCHAT_SERVE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Serve.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Serve.DataDir },
	},
	{
		key: "retrieval.top_k", typ: kInt, env: "PDFCHAT_RETRIEVAL_TOP_K",
		apply:   func(cfg *Config, v any) { cfg.Retrieval.TopK = v.(int) },
		extract: func(cfg Config) any { return cfg.Retrieval.TopK },
	},
	{
		key: "retrieval.snippet_length", typ: kInt, env: "PDFCHAT_RETRIEVAL_SNIPPET_LENGTH",
		apply:   func(cfg *Config, v any) { cfg.Retrieval.SnippetLength = v.(int) },
		extract: func(cfg Config) any { return cfg.Retrieval.SnippetLength },
	},
	{
		key: "log.level", typ: kString, env: "PDFCHAT_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
