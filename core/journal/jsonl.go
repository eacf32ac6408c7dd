package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/voltgo/core/reservation"
)

// JSONLStore writes one JSON event per line with size based rotation.
type JSONLStore struct {
	logger *lumberjack.Logger
	path   string
}

// NewJSONLStore creates a store with rotation options in megabytes and days.
func NewJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*JSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	return &JSONLStore{logger: lj, path: path}, nil
}

// Append writes the event. Rotation happens inside lumberjack.
func (s *JSONLStore) Append(_ context.Context, ev reservation.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = s.logger.Write(append(b, '\n'))
	return err
}

// files lists the active file and its rotated backups
// (name-<timestamp>.ext next to name.ext).
func (s *JSONLStore) files() ([]string, error) {
	ext := filepath.Ext(s.path)
	return filepath.Glob(strings.TrimSuffix(s.path, ext) + "*" + ext)
}

// Query scans every file, including rotated ones, in chronological order.
func (s *JSONLStore) Query(ctx context.Context, q Query) ([]reservation.Event, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	var res []reservation.Event
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var ev reservation.Event
			if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
				continue
			}
			if q.Match(ev) {
				res = append(res, ev)
			}
		}
		_ = file.Close()
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Time.Before(res[j].Time) })
	return q.tail(res), nil
}

// Close closes the underlying writer.
func (s *JSONLStore) Close() error {
	return s.logger.Close()
}
