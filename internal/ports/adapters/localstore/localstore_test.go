package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

func TestCreateGetUpdateVideo(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v := types.Video{ID: "vid-1", Path: "/in/talk.mp4"}
	if err := s.CreateVideo(ctx, v); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	got, err := s.GetVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if got.Status != types.StatusQueued {
		t.Fatalf("new video should be queued, got %q", got.Status)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt not set")
	}

	got.Status = types.StatusProcessing
	got.Progress = 40
	if err := s.UpdateVideo(ctx, got); err != nil {
		t.Fatalf("UpdateVideo: %v", err)
	}
	got2, err := s.GetVideo(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetVideo after update: %v", err)
	}
	if got2.Status != types.StatusProcessing || got2.Progress != 40 {
		t.Fatalf("update lost: %+v", got2)
	}
}

func TestGetVideo_Missing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.GetVideo(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing video")
	}
}

func TestInsertClipAndManifest(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.CreateVideo(ctx, types.Video{ID: "vid-1"}); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	clip := types.ClipResult{ClipID: "clip-1", VideoID: "vid-1", ViralityScore: 8.5}
	if err := s.InsertClip(ctx, clip); err != nil {
		t.Fatalf("InsertClip: %v", err)
	}
	if err := s.WriteManifest(ctx, "vid-1", types.Manifest{Input: "/in/talk.mp4"}); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
}

func TestFindStale(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.WithClock(func() time.Time { return now })

	seed := func(id string, status types.VideoStatus) {
		if err := s.CreateVideo(ctx, types.Video{ID: id}); err != nil {
			t.Fatalf("CreateVideo %s: %v", id, err)
		}
		v, _ := s.GetVideo(ctx, id)
		v.Status = status
		if err := s.UpdateVideo(ctx, v); err != nil {
			t.Fatalf("UpdateVideo %s: %v", id, err)
		}
	}
	seed("stuck", types.StatusProcessing)
	seed("done", types.StatusCompleted)

	// Fresh processing job written 30 minutes later.
	now = base.Add(30 * time.Minute)
	seed("fresh", types.StatusProcessing)

	now = base.Add(45 * time.Minute)
	stale, err := s.FindStale(ctx, 20*time.Minute)
	if err != nil {
		t.Fatalf("FindStale: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != "stuck" {
		t.Fatalf("expected only the stuck job, got %+v", stale)
	}
}
