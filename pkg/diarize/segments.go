package diarize

import (
	"math"
	"time"
)

// frameSeq is the smoothed, globally-relabeled per-frame sequence the
// segment builder walks.
type frameSeq struct {
	times    []time.Duration // window start offsets, ascending
	speakers []uint64        // global speaker ids
	sims     []float64       // similarity to the frame's own centroid
	overlap  []bool
}

// Confidence bounds for emitted segments. The weighted factor sum is
// clamped to [0,1] and rescaled into this band.
const (
	confFloor = 0.30
	confCeil  = 0.95

	// fallbackConfidence is used for the no-voice whole-file segment.
	fallbackConfidence = 0.5

	// singleSpeakerConfidence is used when the cluster search falls
	// back to one speaker.
	singleSpeakerConfidence = 0.7
)

// buildSegments converts the frame sequence into merged, confidence-
// scored segments covering [0, duration). Boundaries sit at the first
// frame of each label run; the first segment is pulled back to 0 and
// the last extended to the recording end.
func buildSegments(fs frameSeq, duration time.Duration, cfg *Config) []Segment {
	n := len(fs.times)
	if n == 0 {
		return []Segment{{
			SpeakerID:  0,
			Start:      0,
			End:        duration,
			Confidence: fallbackConfidence,
		}}
	}

	var segs []Segment
	for start := 0; start < n; {
		end := start
		for end < n && fs.speakers[end] == fs.speakers[start] {
			end++
		}

		segStart := fs.times[start]
		if start == 0 {
			segStart = 0
		}
		segEnd := duration
		if end < n {
			segEnd = fs.times[end]
		}

		overlap := false
		for i := start; i < end; i++ {
			if fs.overlap[i] {
				overlap = true
				break
			}
		}

		segs = append(segs, Segment{
			SpeakerID:  fs.speakers[start],
			Start:      segStart,
			End:        segEnd,
			Confidence: segmentConfidence(fs.sims[start:end], segEnd-segStart),
			Overlap:    overlap,
		})
		start = end
	}

	segs = mergeSameSpeaker(segs, cfg.MergeGap)
	segs = absorbShortSegments(segs, cfg.MinSegment)
	return segs
}

// segmentConfidence combines four normalized factors: cohesion (mean
// similarity to the centroid), stability (low similarity spread),
// duration, and frame support. The weighted sum is rescaled to the
// [confFloor, confCeil] band.
func segmentConfidence(sims []float64, dur time.Duration) float64 {
	var mean float64
	for _, s := range sims {
		mean += s
	}
	mean /= float64(len(sims))

	var variance float64
	for _, s := range sims {
		d := s - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(sims)))

	stability := 1 - 2*std
	if stability < 0 {
		stability = 0
	} else if stability > 1 {
		stability = 1
	}

	durFactor := dur.Seconds() / 5
	if durFactor > 1 {
		durFactor = 1
	}
	support := float64(len(sims)) / 10
	if support > 1 {
		support = 1
	}

	score := 0.4*mean + 0.25*stability + 0.2*durFactor + 0.15*support
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return confFloor + score*(confCeil-confFloor)
}

// mergeSameSpeaker joins consecutive segments of the same speaker whose
// gap is below maxGap.
func mergeSameSpeaker(segs []Segment, maxGap time.Duration) []Segment {
	if len(segs) < 2 {
		return segs
	}
	out := segs[:1]
	for _, s := range segs[1:] {
		last := &out[len(out)-1]
		if s.SpeakerID == last.SpeakerID && s.Start-last.End < maxGap {
			last.End = s.End
			if s.Confidence > last.Confidence {
				last.Confidence = s.Confidence
			}
			last.Overlap = last.Overlap || s.Overlap
			continue
		}
		out = append(out, s)
	}
	return out
}

// absorbShortSegments folds segments shorter than min into a neighbor,
// preferring the previous one, keeping the time axis covered.
func absorbShortSegments(segs []Segment, min time.Duration) []Segment {
	for {
		idx := -1
		for i, s := range segs {
			if s.End-s.Start < min && len(segs) > 1 {
				idx = i
				break
			}
		}
		if idx == -1 {
			return segs
		}

		s := segs[idx]
		if idx > 0 {
			segs[idx-1].End = s.End
			segs[idx-1].Overlap = segs[idx-1].Overlap || s.Overlap
		} else {
			segs[1].Start = s.Start
			segs[1].Overlap = segs[1].Overlap || s.Overlap
		}
		segs = append(segs[:idx], segs[idx+1:]...)

		// Re-merge in case absorption made neighbors contiguous
		// same-speaker segments.
		segs = mergeSameSpeaker(segs, time.Nanosecond)
	}
}
