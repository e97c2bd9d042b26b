package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		CSVPath:        "calls.csv",
		OutputDir:      "transcripts",
		ModelsDir:      "models",
		ModelSize:      "small",
		Language:       "English",
		NumSpeakers:    2,
		Encoder:        "sherpa",
		Refine:         true,
		RefineEndpoint: "http://localhost:8503/llama_generate",
		RefineTimeout:  2 * time.Minute,
		LogFile:        "transcription.log",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing csv", func(c *Config) { c.CSVPath = "" }},
		{"zero speakers", func(c *Config) { c.NumSpeakers = 0 }},
		{"negative speakers", func(c *Config) { c.NumSpeakers = -1 }},
		{"bad language", func(c *Config) { c.Language = "russian" }},
		{"bad encoder", func(c *Config) { c.Encoder = "torch" }},
		{"refine without endpoint", func(c *Config) { c.RefineEndpoint = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestValidate_NoRefineNeedsNoEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Refine = false
	cfg.RefineEndpoint = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("endpoint should not be required with refinement off: %v", err)
	}
}

func TestWhisperLanguage(t *testing.T) {
	cfg := validConfig()
	if got := cfg.WhisperLanguage(); got != "en" {
		t.Errorf("English maps to %q, want \"en\"", got)
	}
	cfg.Language = "any"
	if got := cfg.WhisperLanguage(); got != "" {
		t.Errorf("any maps to %q, want autodetect", got)
	}
}
