package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/stockwatch/internal/entity"
)

// StateRepository keeps the StockState in a human-editable JSON file.
type StateRepository struct {
	Path   string
	logger *zap.Logger
}

func NewStateRepository(path string, logger *zap.Logger) *StateRepository {
	return &StateRepository{Path: path, logger: logger}
}

// Load returns the stored state. A missing, empty or unparseable file yields
// an empty state; only I/O failures other than "not found" are returned.
func (r *StateRepository) Load(ctx context.Context) (*entity.StockState, error) {
	data, err := os.ReadFile(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Info("no previous state, starting fresh", zap.String("path", r.Path))
		return entity.NewStockState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.Path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return entity.NewStockState(), nil
	}

	var record stateRecord
	if err := json.Unmarshal(data, &record); err != nil {
		r.logger.Warn("⚠️ state file is not valid JSON, ignoring it",
			zap.String("path", r.Path),
			zap.Error(err),
		)
		return entity.NewStockState(), nil
	}

	state := &entity.StockState{LastAvailable: record.LastAvailable}
	if record.LastStatusEmailUTC != nil {
		sent, err := parseTimestamp(*record.LastStatusEmailUTC)
		if err != nil {
			r.logger.Warn("⚠️ unreadable status email timestamp, treating it as unset",
				zap.String("path", r.Path),
				zap.String("value", *record.LastStatusEmailUTC),
				zap.Error(err),
			)
		}
		state.LastStatusEmailUTC = sent
	}
	return state, nil
}

// stateRecord mirrors the file layout. The timestamp is kept as a string so
// a blank or hand-edited value only drops that field.
type stateRecord struct {
	LastAvailable      *bool   `json:"last_available"`
	LastStatusEmailUTC *string `json:"last_status_email_utc"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// parseTimestamp returns nil for a blank value. Timestamps without an offset
// are taken as UTC.
func parseTimestamp(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			utc := t.UTC()
			return &utc, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Save overwrites the whole record. The file is replaced via rename so a
// crash never leaves a half-written state behind.
func (r *StateRepository) Save(ctx context.Context, state *entity.StockState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, r.Path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}
	return nil
}
