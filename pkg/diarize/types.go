package diarize

import (
	"fmt"
	"time"
)

// Segment is one speaker-attributed span of a recording.
//
// Segments emitted by a single analysis are time-ordered, non-overlapping,
// and together cover [0, duration). Confidence lies in [0.30, 0.95] except
// for the no-voice fallback segment, which is exactly 0.5.
type Segment struct {
	// SpeakerID is the global speaker id, stable across recordings.
	// 0 is reserved for the no-voice fallback.
	SpeakerID uint64

	Start time.Duration
	End   time.Duration

	Confidence float64

	// Overlap reports that some frames in the segment resembled two
	// speakers at once. Informational; overlapped speech is flagged,
	// not separated.
	Overlap bool
}

func (s Segment) String() string {
	return fmt.Sprintf("[%v-%v] speaker %d (%.2f)", s.Start, s.End, s.SpeakerID, s.Confidence)
}

// InputError reports an unrecoverable problem with the input recording:
// unreadable file, not a supported audio container, or zero duration.
// It is the only error class surfaced by Process; everything else
// degrades gracefully.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("diarize: %s: %v", e.Reason, e.Err)
	}
	return "diarize: " + e.Reason
}

func (e *InputError) Unwrap() error { return e.Err }

// Config holds the tunable parameters of the analysis pipeline.
// The zero value is usable; defaults() fills in unset fields.
type Config struct {
	// SampleRate of the canonical analysis format. Default 16000.
	SampleRate int

	// WindowSeconds is the nominal analysis window. Short recordings
	// reduce it to max(MinWindowSeconds, 0.8×duration). Default 10.
	WindowSeconds float64

	// MinWindowSeconds bounds the adaptive window from below. Default 2.
	MinWindowSeconds float64

	// CalibrationWindows is the number of leading windows used to
	// estimate the noise floor. Default 5.
	CalibrationWindows int

	// MaxSpeakers caps the cluster-count search. Default 8.
	MaxSpeakers int

	// Stay is the Viterbi self-transition probability. Default 0.9.
	Stay float64

	// SmoothWidth is the majority-vote smoothing window. Default 3.
	SmoothWidth int

	// MinSegment is the minimum emitted segment duration; shorter
	// segments are absorbed into a neighbor. Default 500ms.
	MinSegment time.Duration

	// MergeGap is the largest silence between same-speaker segments
	// that still merges them. Default 500ms.
	MergeGap time.Duration

	// MatchThreshold is the minimum cosine similarity for matching a
	// recording centroid to a persisted speaker signature. Default 0.70.
	MatchThreshold float64

	// CacheSize bounds the feature cache (recordings). Default 20.
	CacheSize int
}

func (c *Config) defaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.WindowSeconds == 0 {
		c.WindowSeconds = 10
	}
	if c.MinWindowSeconds == 0 {
		c.MinWindowSeconds = 2
	}
	if c.CalibrationWindows == 0 {
		c.CalibrationWindows = 5
	}
	if c.MaxSpeakers == 0 {
		c.MaxSpeakers = 8
	}
	if c.Stay == 0 {
		c.Stay = 0.9
	}
	if c.SmoothWidth == 0 {
		c.SmoothWidth = 3
	}
	if c.MinSegment == 0 {
		c.MinSegment = 500 * time.Millisecond
	}
	if c.MergeGap == 0 {
		c.MergeGap = 500 * time.Millisecond
	}
	if c.MatchThreshold == 0 {
		c.MatchThreshold = 0.70
	}
	if c.CacheSize == 0 {
		c.CacheSize = 20
	}
}

// window returns the adaptive analysis window and hop in samples for a
// recording of the given duration.
func (c *Config) window(duration time.Duration) (win, hop int) {
	sec := c.WindowSeconds
	short := duration.Seconds() * 0.8
	if short < sec {
		sec = short
	}
	if sec < c.MinWindowSeconds {
		sec = c.MinWindowSeconds
	}
	win = int(sec * float64(c.SampleRate))
	hop = win / 2
	if hop < 1 {
		hop = 1
	}
	return win, hop
}
