// Package localstore persists job state, clip records and run manifests as
// JSON files on the local filesystem. One pipeline instance owns one video
// directory; concurrent instances never share a row.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

type Store struct {
	root string
	now  func() time.Time
}

func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &Store{root: root, now: time.Now}, nil
}

// WithClock overrides the timestamp source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) videoDir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *Store) jobPath(id string) string {
	return filepath.Join(s.videoDir(id), "job.json")
}

// CreateVideo seeds the job row in status queued.
func (s *Store) CreateVideo(ctx context.Context, v types.Video) error {
	if err := os.MkdirAll(s.videoDir(v.ID), 0o755); err != nil {
		return fmt.Errorf("create video dir: %w", err)
	}
	if v.Status == "" {
		v.Status = types.StatusQueued
	}
	v.UpdatedAt = s.now().UTC()
	return writeJSON(s.jobPath(v.ID), v)
}

func (s *Store) GetVideo(ctx context.Context, id string) (types.Video, error) {
	b, err := os.ReadFile(s.jobPath(id))
	if err != nil {
		return types.Video{}, fmt.Errorf("read job %s: %w", id, err)
	}
	var v types.Video
	if err := json.Unmarshal(b, &v); err != nil {
		return types.Video{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	return v, nil
}

func (s *Store) UpdateVideo(ctx context.Context, v types.Video) error {
	v.UpdatedAt = s.now().UTC()
	return writeJSON(s.jobPath(v.ID), v)
}

func (s *Store) InsertClip(ctx context.Context, c types.ClipResult) error {
	dir := filepath.Join(s.videoDir(c.VideoID), "clips")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create clips dir: %w", err)
	}
	return writeJSON(filepath.Join(dir, c.ClipID+".json"), c)
}

func (s *Store) WriteManifest(ctx context.Context, videoID string, m types.Manifest) error {
	if err := os.MkdirAll(s.videoDir(videoID), 0o755); err != nil {
		return fmt.Errorf("create video dir: %w", err)
	}
	return writeJSON(filepath.Join(s.videoDir(videoID), "manifest.json"), m)
}

// FindStale returns videos stuck in processing with no progress update for at
// least maxAge. Used by the external sweep, never by the pipeline itself.
func (s *Store) FindStale(ctx context.Context, maxAge time.Duration) ([]types.Video, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list store root: %w", err)
	}
	cutoff := s.now().UTC().Add(-maxAge)

	var stale []types.Video
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := s.GetVideo(ctx, e.Name())
		if err != nil {
			continue
		}
		if v.Status == types.StatusProcessing && v.UpdatedAt.Before(cutoff) {
			stale = append(stale, v)
		}
	}
	return stale, nil
}

// writeJSON writes via a temp file and rename so a crash mid-write never
// leaves a truncated job row.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
