// callscribe batch-transcribes recorded phone calls: whisper transcription,
// speaker diarization, AGENT/CUSTOMER role attribution and optional LLM-based
// transcript refinement.
//
// Usage:
//
//	callscribe -csv calls.csv -models models -output transcripts
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"callscribe/ai"
	"callscribe/internal/config"
	"callscribe/internal/service"
	"callscribe/models"
	"callscribe/refine"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	setupLogging(cfg.LogFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	whisperPaths, err := models.ResolveWhisper(cfg.ModelsDir, cfg.ModelSize, cfg.Language)
	if err != nil {
		logrus.Fatalf("whisper model not available: %v", err)
	}
	embeddingPath, err := models.ResolveEmbedding(cfg.ModelsDir)
	if err != nil {
		logrus.Fatalf("speaker embedding model not available: %v", err)
	}

	segmenter := buildSegmenter(cfg.ModelsDir)

	transcriber, err := ai.NewWhisperTranscriber(ai.WhisperConfig{
		EncoderPath: whisperPaths.Encoder,
		DecoderPath: whisperPaths.Decoder,
		TokensPath:  whisperPaths.Tokens,
		Language:    cfg.WhisperLanguage(),
		NumThreads:  4,
		Provider:    "cpu",
	}, segmenter)
	if err != nil {
		logrus.Fatalf("failed to load whisper model: %v", err)
	}
	defer transcriber.Close()
	logrus.Infof("loaded transcription engine %s", transcriber.Name())

	encoder, err := buildEncoder(cfg.Encoder, embeddingPath)
	if err != nil {
		logrus.Fatalf("failed to load speaker encoder: %v", err)
	}
	defer encoder.Close()

	pipeline, err := ai.NewCallPipeline(transcriber, encoder, cfg.NumSpeakers)
	if err != nil {
		logrus.Fatalf("failed to build pipeline: %v", err)
	}

	var refiner *refine.Orchestrator
	if cfg.Refine {
		refiner = refine.NewOrchestrator(refine.NewClient(cfg.RefineEndpoint, cfg.RefineTimeout))
		logrus.Infof("transcript refinement enabled via %s", cfg.RefineEndpoint)
	} else {
		logrus.Info("transcript refinement disabled, using local composition")
	}

	batch := service.NewBatchProcessor(cfg, pipeline, refiner)
	if err := batch.Run(ctx); err != nil {
		logrus.Fatalf("batch failed: %v", err)
	}
}

// setupLogging mirrors every log line to the log file and stderr.
func setupLogging(path string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.Warnf("cannot open log file %s: %v, logging to stderr only", path, err)
		return
	}
	logrus.SetOutput(io.MultiWriter(f, os.Stderr))
}

// buildSegmenter prefers the Silero VAD model when present in the models
// directory and falls back to the energy-based segmenter.
func buildSegmenter(modelsDir string) ai.SpeechSegmenter {
	if vadPath, ok := models.FindVAD(modelsDir); ok {
		vad, err := ai.NewSileroVAD(ai.DefaultSileroVADConfig(vadPath))
		if err == nil {
			logrus.Info("using silero VAD for speech segmentation")
			return vad
		}
		logrus.Warnf("silero VAD unavailable: %v, falling back to energy VAD", err)
	}
	return ai.NewEnergyVAD(ai.DefaultEnergyVADConfig())
}

func buildEncoder(backend, modelPath string) (ai.SpeakerEncoder, error) {
	if backend == "onnx" {
		return ai.NewONNXEncoder(ai.DefaultONNXEncoderConfig(modelPath))
	}
	return ai.NewSherpaEncoder(ai.DefaultSherpaEncoderConfig(modelPath))
}
