// Package ffmpeg shells out to ffmpeg/ffprobe for all transcoding
// primitives. Every call is synchronous and fails on non-zero exit with the
// tool's combined output attached to the error.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func (a *Adapter) Probe(ctx context.Context, path string) (types.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	b, err := cmd.Output()
	if err != nil {
		return types.MediaInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var out probeOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return types.MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := types.MediaInfo{}
	if out.Format.Duration != "" {
		info.Duration, err = strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return types.MediaInfo{}, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
		}
	}
	for _, s := range out.Streams {
		if s.CodecType == "video" {
			info.Width = s.Width
			info.Height = s.Height
			info.Codec = s.CodecName
			break
		}
	}
	return info, nil
}

func (a *Adapter) ExtractFrames(ctx context.Context, path, outDir string, fps float64) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	pattern := filepath.Join(outDir, "frame_%04d.jpg")
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", path,
		"-vf", "fps="+fmtFloat(fps),
		"-q:v", "2",
		pattern,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg extract frames: %w\n%s", err, string(b))
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("list frame dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, ".jpg") {
			paths = append(paths, filepath.Join(outDir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, path, outPath string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", path,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outPath,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

// Cut is a stream copy: fast and keyframe-imprecise, which is acceptable
// because boundaries were already snapped to sentence edges.
func (a *Adapter) Cut(ctx context.Context, path, outPath string, start, duration float64) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtFloat(start),
		"-i", path,
		"-t", fmtFloat(duration),
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		outPath,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg cut: %w\n%s", err, string(b))
	}
	return nil
}

// Reframe crops to 9:16 centered on faceRatio (0 left, 0.5 center, 1 right)
// and scales to a fixed 1080x1920 output.
func (a *Adapter) Reframe(ctx context.Context, path, outPath string, faceRatio float64) error {
	info, err := a.Probe(ctx, path)
	if err != nil {
		return err
	}
	filter := verticalCropFilter(info.Width, info.Height, faceRatio)

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", path,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		outPath,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg reframe: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) BurnCaptions(ctx context.Context, path, cuesPath, outPath string) error {
	abs, err := filepath.Abs(cuesPath)
	if err != nil {
		return fmt.Errorf("resolve subtitle path: %w", err)
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", path,
		"-vf", "ass="+escapeFilterPath(abs),
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "copy",
		outPath,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg burn captions: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) Thumbnail(ctx context.Context, path, outPath string, timestamp float64) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtFloat(timestamp),
		"-i", path,
		"-vframes", "1",
		"-q:v", "2",
		outPath,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg thumbnail: %w\n%s", err, string(b))
	}
	return nil
}

// ExtractSegmentFrames grabs numFrames stills evenly spread across the clip,
// keeping a 0.1s margin from the end so the last seek cannot overshoot.
func (a *Adapter) ExtractSegmentFrames(ctx context.Context, path, outDir string, numFrames int) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	info, err := a.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	var paths []string
	for i, ts := range segmentTimestamps(info.Duration, numFrames) {
		framePath := filepath.Join(outDir, fmt.Sprintf("segment_frame_%03d.jpg", i+1))
		cmd := exec.CommandContext(ctx, a.ffmpeg,
			"-y",
			"-ss", fmtFloat(ts),
			"-i", path,
			"-vframes", "1",
			"-q:v", "2",
			framePath,
		)
		if b, err := cmd.CombinedOutput(); err != nil {
			return nil, fmt.Errorf("ffmpeg segment frame %d: %w\n%s", i+1, err, string(b))
		}
		paths = append(paths, framePath)
	}
	return paths, nil
}

func segmentTimestamps(duration float64, numFrames int) []float64 {
	safe := duration - 0.1
	if safe < 0 {
		safe = 0
	}
	if numFrames <= 1 {
		return []float64{safe / 2}
	}
	interval := safe / float64(numFrames-1)
	out := make([]float64, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		ts := float64(i) * interval
		if ts > safe {
			ts = safe
		}
		out = append(out, ts)
	}
	return out
}

// verticalCropFilter computes a 9:16 crop window centered on the face
// position and clamped to the source bounds, followed by a lanczos scale to
// the fixed output resolution.
func verticalCropFilter(width, height int, faceRatio float64) string {
	cropW := height * 9 / 16
	cropH := height
	if cropW > width {
		cropW = width
		cropH = width * 16 / 9
	}

	faceX := int(float64(width) * faceRatio)
	x := faceX - cropW/2
	if x < 0 {
		x = 0
	}
	if x > width-cropW {
		x = width - cropW
	}
	y := (height - cropH) / 2

	return fmt.Sprintf("crop=%d:%d:%d:%d,scale=1080:1920:flags=lanczos", cropW, cropH, x, y)
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
