package frames

// Sample is one extracted frame at a fixed cadence: frame i maps to
// timestamp i/fps. Discarded after analysis.
type Sample struct {
	Timestamp     float64
	Path          string
	Fingerprint   uint64
	FingerprintOK bool
}

// Decision marks whether a sample must be analyzed or can reuse the analysis
// of the reference frame at RefTimestamp.
type Decision struct {
	Sample    Sample
	Duplicate bool
	// RefTimestamp is the timestamp of the preceding non-duplicate frame
	// whose analysis this frame reuses. Only meaningful when Duplicate.
	RefTimestamp float64
}

// Stats reports the dedup outcome for one video.
type Stats struct {
	TotalFrames    int
	AnalyzedFrames int
	SkippedFrames  int
}

func (s Stats) SkipRatio() float64 {
	if s.TotalFrames == 0 {
		return 0
	}
	return float64(s.SkippedFrames) / float64(s.TotalFrames)
}

// NewSamples fingerprints the extracted frame paths in order. A fingerprint
// failure is non-fatal: the sample is kept with FingerprintOK=false, which
// forces it to be analyzed rather than aborting the run.
func NewSamples(paths []string, fps float64) []Sample {
	samples := make([]Sample, 0, len(paths))
	for i, p := range paths {
		s := Sample{Timestamp: float64(i) / fps, Path: p}
		if fp, err := Fingerprint(p); err == nil {
			s.Fingerprint = fp
			s.FingerprintOK = true
		}
		samples = append(samples, s)
	}
	return samples
}

// Dedup walks samples in order comparing each fingerprint against the
// immediately preceding non-duplicate frame. Distance at or below threshold
// marks a duplicate; otherwise the frame becomes the new reference. This is a
// greedy chain comparison, not all-pairs: drift across a slowly-changing
// scene can accumulate past the threshold without any single step exceeding
// it.
func Dedup(samples []Sample, threshold int) ([]Decision, Stats) {
	decisions := make([]Decision, 0, len(samples))
	stats := Stats{TotalFrames: len(samples)}

	haveRef := false
	var ref Sample
	for _, s := range samples {
		dup := haveRef && s.FingerprintOK && ref.FingerprintOK &&
			Distance(s.Fingerprint, ref.Fingerprint) <= threshold
		if dup {
			stats.SkippedFrames++
			decisions = append(decisions, Decision{Sample: s, Duplicate: true, RefTimestamp: ref.Timestamp})
			continue
		}
		stats.AnalyzedFrames++
		decisions = append(decisions, Decision{Sample: s})
		ref = s
		haveRef = true
	}
	return decisions, stats
}
