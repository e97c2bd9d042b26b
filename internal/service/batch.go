// Package service drives the batch: one CSV manifest in, one transcript file
// per recording out.
package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"callscribe/ai"
	"callscribe/audio"
	"callscribe/internal/config"
	"callscribe/refine"
	"callscribe/roles"
	"callscribe/transcript"
)

// Row is one manifest entry.
type Row struct {
	Filename string
	Path     string
}

// BatchProcessor runs the pipeline over a CSV manifest, strictly one file at
// a time, reusing the loaded engines across files. A failing file is logged
// and skipped; the batch never aborts.
type BatchProcessor struct {
	cfg      *config.Config
	pipeline *ai.CallPipeline
	refiner  *refine.Orchestrator // nil when refinement is disabled
}

// NewBatchProcessor wires the batch driver.
func NewBatchProcessor(cfg *config.Config, pipeline *ai.CallPipeline, refiner *refine.Orchestrator) *BatchProcessor {
	return &BatchProcessor{cfg: cfg, pipeline: pipeline, refiner: refiner}
}

// Run processes every manifest row in order.
func (p *BatchProcessor) Run(ctx context.Context) error {
	rows, err := ReadManifest(p.cfg.CSVPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	runID := uuid.NewString()
	log := logrus.WithField("run", runID)
	log.Infof("starting batch: %d files, %d speakers, model=%s refine=%v",
		len(rows), p.pipeline.NumSpeakers(), p.cfg.ModelSize, p.refiner != nil)

	done := 0
	for _, row := range rows {
		if _, err := os.Stat(row.Path); err != nil {
			log.Warnf("file not found: %s, skipping", row.Path)
			continue
		}

		outPath := filepath.Join(p.cfg.OutputDir, outputName(row.Filename))
		log.Infof("processing %s", row.Filename)

		text, err := p.ProcessFile(ctx, row.Path)
		if err != nil {
			log.WithError(err).Errorf("error processing %s", row.Filename)
			continue
		}
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			log.WithError(err).Errorf("error writing %s", outPath)
			continue
		}
		log.Infof("saved transcript to %s", outPath)
		done++
	}

	log.Infof("batch complete: %d/%d files", done, len(rows))
	return nil
}

// ProcessFile runs the full pipeline for one recording and returns the final
// transcript text.
func (p *BatchProcessor) ProcessFile(ctx context.Context, path string) (string, error) {
	clip, err := audio.Load(path)
	if err != nil {
		return "", err
	}
	logrus.Infof("loaded %s: %.1fs of audio", filepath.Base(path), clip.Duration())

	segments, err := p.pipeline.Process(clip.Samples)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("no speech found in %s", path)
	}

	table := roles.ScoreSegments(segments)
	assignment := roles.Resolve(table, segments)
	if assignment.Ambiguous {
		logrus.Warnf("role resolution ambiguous for %s (customer=%d agent=%d)",
			filepath.Base(path), assignment.Customer, assignment.Agent)
	}

	if p.refiner == nil {
		return transcript.ComposeTurns(segments), nil
	}
	return p.refiner.Refine(ctx, segments, table, assignment), nil
}

// ReadManifest parses the CSV manifest. The header must contain filename and
// file_path columns; order and extra columns do not matter.
func ReadManifest(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	nameIdx := lo.IndexOf(header, "filename")
	pathIdx := lo.IndexOf(header, "file_path")
	if nameIdx < 0 || pathIdx < 0 {
		return nil, fmt.Errorf("CSV must contain filename and file_path columns")
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if nameIdx >= len(record) || pathIdx >= len(record) {
			continue
		}
		rows = append(rows, Row{
			Filename: strings.TrimSpace(record[nameIdx]),
			Path:     strings.TrimSpace(record[pathIdx]),
		})
	}
	return rows, nil
}

// outputName maps an input file name to its transcript name: same stem,
// .txt extension.
func outputName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return stem + ".txt"
}
