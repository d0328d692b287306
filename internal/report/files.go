package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/models"
)

// Report file layout under the output directory
const (
	MainReportFile   = "main_report.md"
	ActionPlanFile   = "action_plan.md"
	StatsFile        = "stats.json"
	FullAnalysisFile = "full_analysis.json"
	SOPDir           = "sops"
)

// ChatSummary is the per-chat entry of the stats dump
type ChatSummary struct {
	Type  models.Category `json:"type"`
	Total int             `json:"total"`
	Mine  int             `json:"mine"`
}

// StatsDocument is the stats dump without message texts
type StatsDocument struct {
	Stats        models.Stats           `json:"stats"`
	ChatsSummary map[string]ChatSummary `json:"chats_summary"`
}

// StatsJSON renders the stats dump
func StatsJSON(collection *models.CollectionResult) ([]byte, error) {
	doc := StatsDocument{
		Stats:        collection.Stats,
		ChatsSummary: make(map[string]ChatSummary, len(collection.Chats)),
	}
	for _, record := range collection.OrderedChats() {
		doc.ChatsSummary[record.Chat.Name] = ChatSummary{
			Type:  record.Chat.Category,
			Total: record.TotalMessages,
			Mine:  record.MyMessages,
		}
	}
	return marshalIndent(doc)
}

// FullAnalysisJSON renders the parsed analysis, or {"raw_response": ...} when degraded
func FullAnalysisJSON(analysis *models.AnalysisResult) ([]byte, error) {
	if analysis == nil {
		analysis = &models.AnalysisResult{}
	}
	return marshalIndent(analysis)
}

// marshalIndent keeps non-ASCII and HTML characters readable
func marshalIndent(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Writer saves report artifacts to a directory
type Writer struct {
	dir    string
	now    func() time.Time
	logger zerolog.Logger
}

// NewWriter creates a writer rooted at dir
func NewWriter(dir string, logger zerolog.Logger) *Writer {
	return &Writer{
		dir:    dir,
		now:    time.Now,
		logger: logger.With().Str("component", "report").Logger(),
	}
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.dir
}

// Write renders and saves every artifact, overwriting earlier runs, and returns the written paths
func (w *Writer) Write(analysis *models.AnalysisResult, collection *models.CollectionResult) ([]string, error) {
	generated := w.now()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	statsData, err := StatsJSON(collection)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stats: %w", err)
	}
	analysisData, err := FullAnalysisJSON(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{MainReportFile, []byte(MainReport(analysis, collection, generated))},
		{ActionPlanFile, []byte(ActionPlan(analysis, generated))},
		{StatsFile, statsData},
		{FullAnalysisFile, analysisData},
	}

	sops := analysis.SOPs()
	if len(sops) > 0 {
		if err := os.MkdirAll(filepath.Join(w.dir, SOPDir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SOP directory: %w", err)
		}
	}
	for i, sop := range sops {
		files = append(files, struct {
			name string
			data []byte
		}{
			filepath.Join(SOPDir, SOPFilename(i+1, sop.ProcessName.String())),
			[]byte(SOPDocument(sop, generated)),
		})
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(w.dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
		w.logger.Debug().Str("path", path).Int("bytes", len(f.data)).Msg("Report file written")
	}

	w.logger.Info().
		Str("dir", w.dir).
		Int("files", len(written)).
		Int("sops", len(sops)).
		Bool("degraded", analysis.IsDegraded()).
		Msg("Reports saved")

	return written, nil
}
