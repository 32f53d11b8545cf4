package ports

import (
	"context"

	"github.com/clipforge/clipforge/internal/types"
)

// VideoTool is the synchronous transcoding primitive surface. Every call
// shells out and returns an error on non-zero exit.
type VideoTool interface {
	Probe(ctx context.Context, path string) (types.MediaInfo, error)
	ExtractFrames(ctx context.Context, path, outDir string, fps float64) ([]string, error)
	ExtractAudioMono16k(ctx context.Context, path, outPath string) error
	Cut(ctx context.Context, path, outPath string, start, duration float64) error
	Reframe(ctx context.Context, path, outPath string, faceRatio float64) error
	BurnCaptions(ctx context.Context, path, cuesPath, outPath string) error
	Thumbnail(ctx context.Context, path, outPath string, timestamp float64) error
	ExtractSegmentFrames(ctx context.Context, path, outDir string, numFrames int) ([]string, error)
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

// VisionModel analyzes one frame image. Implementations do a single attempt;
// retry and default fallbacks live in the vision collector.
type VisionModel interface {
	AnalyzeFrame(ctx context.Context, imagePath string) (types.FrameAnalysis, error)
}

// ContentModel reasons over transcript text. Single attempt per call, same as
// VisionModel.
type ContentModel interface {
	IdentifyMoments(ctx context.Context, transcript string, duration float64) ([]types.ViralMoment, error)
	AnalyzeSentiment(ctx context.Context, text string) (types.Sentiment, error)
}

// JobStore persists the single video row a pipeline instance owns plus the
// clips it produces. The pipeline never queries beyond those rows.
type JobStore interface {
	GetVideo(ctx context.Context, id string) (types.Video, error)
	UpdateVideo(ctx context.Context, v types.Video) error
	InsertClip(ctx context.Context, c types.ClipResult) error
}

// ProgressSink receives stage-boundary progress updates. Percent is 0-100.
type ProgressSink interface {
	OnProgress(percent int, stage string)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(percent int, stage string)

func (f ProgressFunc) OnProgress(percent int, stage string) { f(percent, stage) }
