// Package config holds the flag-based CLI configuration.
package config

import (
	"flag"
	"fmt"
	"time"
)

// Config is the batch run configuration.
type Config struct {
	CSVPath   string // manifest with filename,file_path columns
	OutputDir string
	ModelsDir string

	ModelSize   string // whisper size selector
	Language    string // "English" or "any"
	NumSpeakers int    // target speaker count, >= 1
	Encoder     string // speaker encoder backend: "onnx" or "sherpa"

	Refine         bool
	RefineEndpoint string
	RefineTimeout  time.Duration

	LogFile string
}

// Load parses the command line.
func Load() *Config {
	cfg := &Config{}
	flag.StringVar(&cfg.CSVPath, "csv", "", "Path to CSV file with filename and file_path columns")
	flag.StringVar(&cfg.OutputDir, "output", "transcripts", "Directory to save transcripts")
	flag.StringVar(&cfg.ModelsDir, "models", "models", "Directory holding the model files")
	flag.StringVar(&cfg.ModelSize, "model", "small", "Whisper model size (tiny|base|small|medium|large|large-v1|large-v2|large-v3)")
	flag.StringVar(&cfg.Language, "language", "English", "Language setting (any|English)")
	flag.IntVar(&cfg.NumSpeakers, "speakers", 2, "Number of speakers to detect")
	flag.StringVar(&cfg.Encoder, "encoder", "sherpa", "Speaker encoder backend (sherpa|onnx)")
	flag.BoolVar(&cfg.Refine, "refine", true, "Use the text refiner for transcript enhancement")
	flag.StringVar(&cfg.RefineEndpoint, "refine-endpoint", "http://localhost:8503/llama_generate", "Text refiner API endpoint URL")
	flag.DurationVar(&cfg.RefineTimeout, "refine-timeout", 2*time.Minute, "Text refiner request timeout")
	flag.StringVar(&cfg.LogFile, "log", "transcription.log", "Log file path (also logs to stderr)")
	flag.Parse()
	return cfg
}

// Validate checks the configuration before any model loads.
func (c *Config) Validate() error {
	if c.CSVPath == "" {
		return fmt.Errorf("missing -csv path")
	}
	if c.NumSpeakers < 1 {
		return fmt.Errorf("speaker count must be >= 1, got %d", c.NumSpeakers)
	}
	if c.Language != "any" && c.Language != "English" {
		return fmt.Errorf("language must be \"any\" or \"English\", got %q", c.Language)
	}
	if c.Encoder != "sherpa" && c.Encoder != "onnx" {
		return fmt.Errorf("encoder must be \"sherpa\" or \"onnx\", got %q", c.Encoder)
	}
	if c.Refine && c.RefineEndpoint == "" {
		return fmt.Errorf("refinement enabled but no endpoint configured")
	}
	return nil
}

// WhisperLanguage maps the CLI language setting to the recognizer language
// code; "any" means autodetect.
func (c *Config) WhisperLanguage() string {
	if c.Language == "English" {
		return "en"
	}
	return ""
}
