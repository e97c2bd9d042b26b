// Package models resolves model files under the models directory for the
// engines: Whisper encoder/decoder/tokens per model size, the speaker
// embedding model and the optional Silero VAD model.
package models

import (
	"fmt"
	"os"
	"path/filepath"
)

// Whisper model sizes this pipeline accepts.
var whisperSizes = map[string]bool{
	"tiny":     true,
	"base":     true,
	"small":    true,
	"medium":   true,
	"large":    true,
	"large-v1": true,
	"large-v2": true,
	"large-v3": true,
}

// File names inside the models directory.
const (
	embeddingModelFile = "speaker-embedding.onnx"
	vadModelFile       = "silero_vad.onnx"
)

// WhisperPaths holds the resolved Whisper model files.
type WhisperPaths struct {
	Encoder string
	Decoder string
	Tokens  string
}

// WhisperModelName maps the size selector and language to the model variant:
// English runs use the ".en" models except for the large sizes, which only
// exist multilingual.
func WhisperModelName(size, language string) (string, error) {
	if !whisperSizes[size] {
		return "", fmt.Errorf("unknown whisper model size %q", size)
	}
	if language == "English" && size != "large" && size != "large-v1" && size != "large-v2" && size != "large-v3" {
		return size + ".en", nil
	}
	return size, nil
}

// ResolveWhisper returns the Whisper model file paths for the selector,
// checking they exist.
func ResolveWhisper(modelsDir, size, language string) (WhisperPaths, error) {
	name, err := WhisperModelName(size, language)
	if err != nil {
		return WhisperPaths{}, err
	}
	paths := WhisperPaths{
		Encoder: filepath.Join(modelsDir, name+"-encoder.onnx"),
		Decoder: filepath.Join(modelsDir, name+"-decoder.onnx"),
		Tokens:  filepath.Join(modelsDir, name+"-tokens.txt"),
	}
	for _, p := range []string{paths.Encoder, paths.Decoder, paths.Tokens} {
		if _, err := os.Stat(p); err != nil {
			return WhisperPaths{}, fmt.Errorf("whisper model file missing: %s", p)
		}
	}
	return paths, nil
}

// ResolveEmbedding returns the speaker embedding model path, checking it
// exists.
func ResolveEmbedding(modelsDir string) (string, error) {
	p := filepath.Join(modelsDir, embeddingModelFile)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("speaker embedding model missing: %s", p)
	}
	return p, nil
}

// FindVAD returns the Silero VAD model path when present. The VAD is
// optional; the transcriber falls back to energy segmentation without it.
func FindVAD(modelsDir string) (string, bool) {
	p := filepath.Join(modelsDir, vadModelFile)
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}
