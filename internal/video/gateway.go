package video

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"alcyxob/workout-telemetry/internal/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrOutputNotFound = errors.New("output not found")

type Status string

const (
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Table is a parsed results CSV.
type Table struct {
	Header []string            `json:"header"`
	Rows   []map[string]string `json:"rows"`
}

// Result describes one processed upload. File names are relative to the
// output directory and can be fetched with FramePath and VideoPath.
type Result struct {
	OutputID  string   `json:"outputId"`
	Activity  string   `json:"activity"`
	Status    Status   `json:"status"`
	CSVFile   string   `json:"csvFile,omitempty"`
	VideoFile string   `json:"videoFile,omitempty"`
	Frames    []string `json:"frames"`
	Results   *Table   `json:"results,omitempty"`
	Stdout    string   `json:"stdout,omitempty"`
}

// Gateway accepts uploaded videos, runs the activity analyzer on them and
// serves the produced artifacts.
type Gateway struct {
	registry   *Registry
	frames     FrameExtractor
	uploadsDir string
	outputsDir string
	metrics    *metrics.Manager
}

func NewGateway(registry *Registry, frames FrameExtractor, uploadsDir, outputsDir string, metricsManager *metrics.Manager) *Gateway {
	return &Gateway{
		registry:   registry,
		frames:     frames,
		uploadsDir: uploadsDir,
		outputsDir: outputsDir,
		metrics:    metricsManager,
	}
}

// Process stores the upload, runs the analyzer for activity and collects its
// artifacts. A failed run returns a Result with StatusFailed together with
// the error.
func (g *Gateway) Process(ctx context.Context, activity string, upload io.Reader, filename string) (*Result, error) {
	analyzer, err := g.registry.Get(activity)
	if err != nil {
		return nil, err
	}

	outputID := uuid.NewString()
	videoPath, err := g.saveUpload(outputID, upload, filename)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	outDir := filepath.Join(g.outputsDir, outputID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	result := &Result{OutputID: outputID, Activity: activity, Frames: []string{}}

	out, err := analyzer.Run(ctx, videoPath, outDir)
	if err != nil {
		result.Status = StatusFailed
		g.metrics.VideoProcessed(string(StatusFailed))
		var subErr *SubprocessError
		if errors.As(err, &subErr) {
			log.Errorf("analysis of [%s] for %s failed: %s\n%s", outputID, activity, err, subErr.Stderr)
		} else {
			log.Errorf("analysis of [%s] for %s failed: %s", outputID, activity, err)
		}
		return result, err
	}

	result.Status = StatusProcessed
	result.Stdout = out.Stdout

	if out.CSVPath != "" {
		result.CSVFile = filepath.Base(out.CSVPath)
		table, err := readTable(out.CSVPath)
		if err != nil {
			log.Warnf("parse results of [%s]: %s", outputID, err)
		} else {
			result.Results = table
		}
	}

	if out.VideoPath != "" && g.frames != nil {
		frames, playable := g.frames.ExtractFrames(ctx, out.VideoPath, outDir)
		if frames != nil {
			result.Frames = frames
		}
		result.VideoFile = filepath.Base(playable)
	} else if out.VideoPath != "" {
		result.VideoFile = filepath.Base(out.VideoPath)
	}

	g.metrics.VideoProcessed(string(StatusProcessed))
	log.Infof("video [%s] processed for %s: csv=%q video=%q frames=%d",
		outputID, activity, result.CSVFile, result.VideoFile, len(result.Frames))
	return result, nil
}

func (g *Gateway) saveUpload(outputID string, upload io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(g.uploadsDir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp4"
	}
	path := filepath.Join(g.uploadsDir, outputID+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(f, upload)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// Results parses the CSV produced for outputID.
func (g *Gateway) Results(outputID string) (*Table, error) {
	dir, err := g.outputDir(outputID)
	if err != nil {
		return nil, err
	}
	out, err := Harvest(dir)
	if err != nil {
		return nil, err
	}
	if out.CSVPath == "" {
		return nil, fmt.Errorf("%w: no results for %s", ErrOutputNotFound, outputID)
	}
	return readTable(out.CSVPath)
}

// Frames lists the preview frames of outputID.
func (g *Gateway) Frames(outputID string) ([]string, error) {
	dir, err := g.outputDir(outputID)
	if err != nil {
		return nil, err
	}
	frames, err := listFrames(filepath.Join(dir, framesDirName))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	return frames, err
}

// FramePath resolves a frame file of outputID on disk.
func (g *Gateway) FramePath(outputID, file string) (string, error) {
	dir, err := g.outputDir(outputID)
	if err != nil {
		return "", err
	}
	return existingFile(filepath.Join(dir, framesDirName), file)
}

// VideoPath resolves a video file of outputID on disk.
func (g *Gateway) VideoPath(outputID, file string) (string, error) {
	dir, err := g.outputDir(outputID)
	if err != nil {
		return "", err
	}
	if !videoExtensions[strings.ToLower(filepath.Ext(file))] {
		return "", ErrOutputNotFound
	}
	return existingFile(dir, file)
}

// outputDir maps an output id to its directory. Only generated ids are
// accepted, which keeps callers inside outputsDir.
func (g *Gateway) outputDir(outputID string) (string, error) {
	id, err := uuid.Parse(outputID)
	if err != nil || id.String() != outputID {
		return "", ErrOutputNotFound
	}
	dir := filepath.Join(g.outputsDir, outputID)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", ErrOutputNotFound
	}
	return dir, nil
}

func existingFile(dir, file string) (string, error) {
	if file == "" || file != filepath.Base(file) || file == "." || file == ".." {
		return "", ErrOutputNotFound
	}
	path := filepath.Join(dir, file)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrOutputNotFound
	}
	return path, nil
}

func readTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	table := &Table{Header: []string{}, Rows: []map[string]string{}}
	if len(records) == 0 {
		return table, nil
	}
	table.Header = records[0]
	for _, record := range records[1:] {
		row := make(map[string]string, len(table.Header))
		for i, col := range table.Header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
