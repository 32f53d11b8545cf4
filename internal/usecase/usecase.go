// Package usecase orchestrates one video's pipeline: sample, analyze,
// transcribe, identify moments, select segments, then generate a vertical
// captioned clip per selected segment. Stages run strictly in order; clip
// rows are only persisted once every clip succeeded.
package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/domain/crop"
	"github.com/clipforge/clipforge/internal/domain/segments"
	"github.com/clipforge/clipforge/internal/domain/subtitles"
	"github.com/clipforge/clipforge/internal/domain/transcript"
	"github.com/clipforge/clipforge/internal/moments"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
	"github.com/clipforge/clipforge/internal/vision"
)

type Deps struct {
	Video    ports.VideoTool
	ASR      ports.ASR
	Vision   *vision.Collector
	Content  *moments.Client
	Store    ports.JobStore
	Progress ports.ProgressSink
	Log      zerolog.Logger
}

type Config struct {
	FPS              float64
	ClipMinDuration  float64
	ClipMaxDuration  float64
	TopN             int
	MinViralityScore float64
	CropFrames       int
	CropThreshold    float64
	WordsPerGroup    int
	SubtitleDelay    float64
}

type Usecase struct {
	d   Deps
	cfg Config
}

func New(d Deps, cfg Config) Usecase {
	return Usecase{d: d, cfg: cfg}
}

type Input struct {
	VideoID   string
	VideoPath string
	// WorkDir holds the frames/, clips/ and audio intermediates for this
	// video. Owned exclusively by this run.
	WorkDir string
}

type Result struct {
	Clips    []types.ClipResult
	Manifest types.Manifest
}

// ProcessVideo drives the job through queued -> processing ->
// completed|failed. Any stage or per-clip failure fails the whole run:
// partial clip sets are never persisted.
func (u Usecase) ProcessVideo(ctx context.Context, in Input) (Result, error) {
	v, err := u.d.Store.GetVideo(ctx, in.VideoID)
	if err != nil {
		return Result{}, err
	}

	v.Status = types.StatusProcessing
	v.Progress = 0
	v.ErrorMessage = ""
	if err := u.d.Store.UpdateVideo(ctx, v); err != nil {
		return Result{}, err
	}

	clips, err := u.run(ctx, &v, in)
	if err != nil {
		// Remove whatever clip artifacts were produced: a failed run must
		// not leave a partial clip set behind.
		os.RemoveAll(filepath.Join(in.WorkDir, "clips"))

		v.Status = types.StatusFailed
		v.ErrorMessage = err.Error()
		if uerr := u.d.Store.UpdateVideo(ctx, v); uerr != nil {
			u.d.Log.Error().Err(uerr).Str("video_id", v.ID).Msg("persist failed status")
		}
		return Result{}, err
	}

	for _, c := range clips {
		if err := u.d.Store.InsertClip(ctx, c); err != nil {
			v.Status = types.StatusFailed
			v.ErrorMessage = fmt.Sprintf("persist clip %s: %v", c.ClipID, err)
			if uerr := u.d.Store.UpdateVideo(ctx, v); uerr != nil {
				u.d.Log.Error().Err(uerr).Str("video_id", v.ID).Msg("persist failed status")
			}
			return Result{}, err
		}
	}

	v.Status = types.StatusCompleted
	v.Progress = 100
	if err := u.d.Store.UpdateVideo(ctx, v); err != nil {
		return Result{}, err
	}
	u.report(100, "Processing completed")

	return Result{Clips: clips, Manifest: buildManifest(in.VideoPath, clips)}, nil
}

func (u Usecase) run(ctx context.Context, v *types.Video, in Input) ([]types.ClipResult, error) {
	log := u.d.Log.With().Str("video_id", in.VideoID).Logger()

	framesDir := filepath.Join(in.WorkDir, "frames")
	clipsDir := filepath.Join(in.WorkDir, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create clips dir: %w", err)
	}
	audioPath := filepath.Join(in.WorkDir, "audio.wav")
	defer func() {
		// Sampled frames and extracted audio are intermediates on both the
		// success and the failure path.
		os.RemoveAll(framesDir)
		os.Remove(audioPath)
	}()

	info, err := u.d.Video.Probe(ctx, in.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("video %s has no duration", in.VideoPath)
	}
	log.Info().Float64("duration", info.Duration).Int("width", info.Width).Int("height", info.Height).
		Msg("starting processing pipeline")

	u.progress(ctx, v, 10, "Extracting frames")
	framePaths, err := u.d.Video.ExtractFrames(ctx, in.VideoPath, framesDir, u.cfg.FPS)
	if err != nil {
		return nil, fmt.Errorf("extract frames: %w", err)
	}

	u.progress(ctx, v, 25, "Analyzing visual content")
	analyses, _, err := u.d.Vision.BatchAnalyze(ctx, framePaths, u.cfg.FPS)
	if err != nil {
		return nil, err
	}

	u.progress(ctx, v, 40, "Extracting audio")
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.VideoPath, audioPath); err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}

	u.progress(ctx, v, 55, "Transcribing audio")
	tr, err := u.d.ASR.Transcribe(ctx, audioPath, in.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	words := transcript.Words(tr)
	fullText := transcript.FullText(tr)

	u.progress(ctx, v, 70, "Identifying viral moments")
	viralMoments := u.d.Content.Identify(ctx, fullText, info.Duration)
	log.Info().Int("moments", len(viralMoments)).Msg("viral moments identified")

	u.progress(ctx, v, 75, "Selecting best segments")
	selector := segments.Selector{
		Config: segments.Config{
			MinDuration: u.cfg.ClipMinDuration,
			MaxDuration: u.cfg.ClipMaxDuration,
			TopN:        u.cfg.TopN,
			MinScore:    u.cfg.MinViralityScore,
		},
		Sentiment: func(text string) *types.Sentiment {
			return u.d.Content.Sentiment(ctx, text)
		},
		Log: log,
	}
	selected := selector.Select(tr, words, analyses, viralMoments, info.Duration)
	log.Info().Int("segments", len(selected)).Msg("segments selected")

	// A video without usable moments completes with zero clips.
	if len(selected) == 0 {
		return nil, nil
	}

	clips := make([]types.ClipResult, 0, len(selected))
	for i, seg := range selected {
		pct := 75 + (i+1)*(25/len(selected))
		u.progress(ctx, v, pct, fmt.Sprintf("Generating clip %d/%d", i+1, len(selected)))

		clipID := fmt.Sprintf("%s_clip_%d", in.VideoID, i+1)
		clip, err := u.generateClip(ctx, in.VideoPath, seg, clipsDir, clipID, in.VideoID)
		if err != nil {
			return nil, fmt.Errorf("generate clip %s: %w", clipID, err)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

// generateClip produces the final vertical captioned clip plus thumbnail for
// one selected segment. Intermediate cut and reframed files are removed on
// every path.
func (u Usecase) generateClip(ctx context.Context, videoPath string, seg types.CandidateSegment, outDir, clipID, videoID string) (types.ClipResult, error) {
	log := u.d.Log.With().Str("clip_id", clipID).Logger()

	tempCut := filepath.Join(outDir, clipID+"_temp_cut.mp4")
	tempVertical := filepath.Join(outDir, clipID+"_temp_vertical.mp4")
	tempFramesDir := filepath.Join(outDir, clipID+"_temp_frames")
	defer func() {
		os.Remove(tempCut)
		os.Remove(tempVertical)
		os.RemoveAll(tempFramesDir)
	}()

	if err := u.d.Video.Cut(ctx, videoPath, tempCut, seg.Start, seg.Duration); err != nil {
		return types.ClipResult{}, err
	}

	decision := u.cropDecision(ctx, tempCut, tempFramesDir, log)
	log.Info().Float64("crop_ratio", decision.FacePositionRatio).Msg("crop strategy selected")

	if err := u.d.Video.Reframe(ctx, tempCut, tempVertical, decision.FacePositionRatio); err != nil {
		return types.ClipResult{}, err
	}

	subtitlePath := filepath.Join(outDir, clipID+"_subs.ass")
	if err := os.WriteFile(subtitlePath, []byte(u.renderCaptions(seg)), 0o644); err != nil {
		return types.ClipResult{}, fmt.Errorf("write subtitles: %w", err)
	}

	finalVideo := filepath.Join(outDir, clipID+"_final.mp4")
	if err := u.d.Video.BurnCaptions(ctx, tempVertical, subtitlePath, finalVideo); err != nil {
		return types.ClipResult{}, err
	}

	thumbnail := filepath.Join(outDir, clipID+"_thumb.jpg")
	if err := u.d.Video.Thumbnail(ctx, finalVideo, thumbnail, seg.Duration/2); err != nil {
		return types.ClipResult{}, err
	}

	analysis := seg.Moment
	if analysis.HookType == "" {
		analysis.HookType = seg.HookType
	}

	return types.ClipResult{
		ClipID:        clipID,
		VideoID:       videoID,
		Start:         seg.Start,
		End:           seg.End,
		Duration:      seg.Duration,
		ViralityScore: seg.ViralityScore,
		Transcript:    segmentText(seg.Transcript),
		Keywords:      seg.Keywords,
		VideoPath:     finalVideo,
		ThumbnailPath: thumbnail,
		SubtitlePath:  subtitlePath,
		Analysis:      analysis,
	}, nil
}

// cropDecision samples a few frames from the cut and votes on the crop
// center. Frame extraction trouble degrades to a centered crop rather than
// failing the clip.
func (u Usecase) cropDecision(ctx context.Context, cutPath, tempFramesDir string, log zerolog.Logger) types.CropDecision {
	framePaths, err := u.d.Video.ExtractSegmentFrames(ctx, cutPath, tempFramesDir, u.cfg.CropFrames)
	if err != nil {
		log.Warn().Err(err).Msg("segment frame extraction failed, using centered crop")
		return types.CropDecision{FacePositionRatio: 0.5}
	}

	analyses := make([]types.FrameAnalysis, 0, len(framePaths))
	for _, p := range framePaths {
		analyses = append(analyses, u.d.Vision.AnalyzeFrame(ctx, p))
	}
	return crop.Decide(analyses, u.cfg.CropThreshold)
}

func (u Usecase) renderCaptions(seg types.CandidateSegment) string {
	opts := subtitles.Options{
		Keywords:      seg.Keywords,
		WordsPerGroup: u.cfg.WordsPerGroup,
		Delay:         u.cfg.SubtitleDelay,
	}
	if len(seg.WordTranscript) > 0 {
		return subtitles.RenderWordLevel(subtitles.WordCues(seg.WordTranscript, opts))
	}
	return subtitles.RenderSegmentLevel(subtitles.SegmentCues(seg.Transcript, opts))
}

// progress persists the new percentage on the job row and notifies the sink.
// A progress write failure is logged, not fatal: losing a progress tick must
// not kill a healthy pipeline.
func (u Usecase) progress(ctx context.Context, v *types.Video, pct int, stage string) {
	v.Progress = pct
	if err := u.d.Store.UpdateVideo(ctx, *v); err != nil {
		u.d.Log.Warn().Err(err).Str("video_id", v.ID).Int("progress", pct).Msg("persist progress")
	}
	u.report(pct, stage)
	u.d.Log.Info().Str("video_id", v.ID).Int("progress", pct).Msg(stage)
}

func (u Usecase) report(pct int, stage string) {
	if u.d.Progress != nil {
		u.d.Progress.OnProgress(pct, stage)
	}
}

func segmentText(segs []types.Segment) string {
	out := ""
	for _, s := range segs {
		if s.Text == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += s.Text
	}
	return out
}

func buildManifest(input string, clips []types.ClipResult) types.Manifest {
	m := types.Manifest{Input: input}
	for _, c := range clips {
		m.Clips = append(m.Clips, types.ManifestClip{
			ID:            c.ClipID,
			StartSec:      c.Start,
			EndSec:        c.End,
			ViralityScore: c.ViralityScore,
			Transcript:    c.Transcript,
			Keywords:      c.Keywords,
			HookType:      c.Analysis.HookType,
			Reason:        c.Analysis.Reason,
			File:          filepath.ToSlash(c.VideoPath),
			Thumbnail:     filepath.ToSlash(c.ThumbnailPath),
			Subtitles:     filepath.ToSlash(c.SubtitlePath),
		})
	}
	return m
}
