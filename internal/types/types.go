package types

import "time"

type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// SegmentWord is a word clipped to a candidate segment window. Start/End are
// relative to the segment start; the absolute source times are kept alongside.
type SegmentWord struct {
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	AbsoluteStart float64 `json:"absolute_start"`
	AbsoluteEnd   float64 `json:"absolute_end"`
	Word          string  `json:"word"`
}

// FrameAnalysis is the structured result of one vision call, keyed by the
// frame timestamp. FacePositionX is 0 (left edge) to 100 (right edge) and nil
// unless exactly one dominant face is detected.
type FrameAnalysis struct {
	HasFace         bool     `json:"has_face"`
	FaceCount       int      `json:"face_count"`
	FacePositionX   *float64 `json:"face_position_x"`
	Expression      string   `json:"expression"`
	SceneType       string   `json:"scene_type"`
	TextOnScreen    bool     `json:"text_on_screen"`
	EngagementScore float64  `json:"engagement_score"`
}

type Sentiment struct {
	Sentiment       string  `json:"sentiment"`
	Emotion         string  `json:"emotion"`
	EngagementScore float64 `json:"engagement_score"`
}

type ViralMoment struct {
	Start         float64  `json:"start_time"`
	End           float64  `json:"end_time"`
	Reason        string   `json:"reason"`
	Keywords      []string `json:"keywords"`
	ViralityScore float64  `json:"virality_score"`
	HookType      string   `json:"hook_type"`
}

// CandidateSegment is a moment after duration normalization and sentence
// snapping. It lives only for one selection pass.
type CandidateSegment struct {
	Start          float64
	End            float64
	Duration       float64
	ViralityScore  float64
	Transcript     []Segment
	WordTranscript []SegmentWord
	Keywords       []string
	HookType       string
	Reason         string
	Moment         ViralMoment
}

// CropDecision carries the horizontal crop center as a 0.0-1.0 ratio.
// 0.5 means centered.
type CropDecision struct {
	FacePositionRatio float64
}

type MediaInfo struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Codec    string  `json:"codec"`
}

// ClipResult is the persisted unit per selected segment. Never mutated after
// creation.
type ClipResult struct {
	ClipID        string      `json:"clip_id"`
	VideoID       string      `json:"video_id"`
	Start         float64     `json:"start_time"`
	End           float64     `json:"end_time"`
	Duration      float64     `json:"duration"`
	ViralityScore float64     `json:"virality_score"`
	Transcript    string      `json:"transcript"`
	Keywords      []string    `json:"keywords"`
	VideoPath     string      `json:"video_path"`
	ThumbnailPath string      `json:"thumbnail_path"`
	SubtitlePath  string      `json:"subtitle_path"`
	Analysis      ViralMoment `json:"analysis_data"`
}

type VideoStatus string

const (
	StatusQueued     VideoStatus = "queued"
	StatusProcessing VideoStatus = "processing"
	StatusCompleted  VideoStatus = "completed"
	StatusFailed     VideoStatus = "failed"
)

// Video is the job record owned by the orchestrator and persisted by the job
// store. Transitions are one-directional: queued -> processing ->
// completed|failed. Only an external sweep may force processing -> failed.
type Video struct {
	ID           string      `json:"id"`
	Path         string      `json:"path"`
	Status       VideoStatus `json:"status"`
	Progress     int         `json:"progress"`
	ErrorMessage string      `json:"error_message,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type Manifest struct {
	Input string         `json:"input"`
	Clips []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID            string   `json:"id"`
	StartSec      float64  `json:"start_sec"`
	EndSec        float64  `json:"end_sec"`
	ViralityScore float64  `json:"virality_score"`
	Transcript    string   `json:"transcript"`
	Keywords      []string `json:"keywords"`
	HookType      string   `json:"hook_type"`
	Reason        string   `json:"reason"`
	File          string   `json:"file"`
	Thumbnail     string   `json:"thumbnail"`
	Subtitles     string   `json:"subtitles"`
}
