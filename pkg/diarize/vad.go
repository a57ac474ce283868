package diarize

import (
	"github.com/lawrencel1ng/recordio-diarizer/pkg/audio/dsp"
)

// VoiceModel is an optional learned voice-activity classifier. When
// configured, its verdict takes precedence over the energy heuristic;
// any error from it falls back to the heuristic (non-fatal).
type VoiceModel interface {
	// Voiced reports whether the window contains speech.
	Voiced(window []float32, sampleRate int) (bool, error)
}

// Minimum absolute RMS threshold and ZCR ceiling for the heuristic.
const (
	vadMinRMS = 0.003
	vadMaxZCR = 0.4

	// The noise floor is the minimum window RMS seen during
	// calibration, scaled down so that a session with no leading
	// silence still detects its own speech.
	vadFloorScale    = 0.5
	vadFloorHeadroom = 1.5
)

// vad classifies fixed analysis windows as speech or non-speech.
//
// The noise floor adapts per session: it is the minimum scaled RMS of
// the first calibration windows, frozen afterwards. Reset is called at
// the start of each analysis.
type vad struct {
	model       VoiceModel
	calibration int // windows used for calibration

	seen       int
	noiseFloor float64
}

func newVAD(model VoiceModel, calibrationWindows int) *vad {
	return &vad{model: model, calibration: calibrationWindows}
}

// Reset clears the adaptive state for a new session.
func (v *vad) Reset() {
	v.seen = 0
	v.noiseFloor = 0
}

// Voiced classifies one window. The heuristic: RMS above the adaptive
// threshold and a zero-crossing rate below the fricative/noise ceiling.
func (v *vad) Voiced(window []float32, sampleRate int) bool {
	rms := dsp.RMS(window)

	if v.seen < v.calibration {
		scaled := rms * vadFloorScale
		if v.seen == 0 || scaled < v.noiseFloor {
			v.noiseFloor = scaled
		}
		v.seen++
	}

	if v.model != nil {
		if voiced, err := v.model.Voiced(window, sampleRate); err == nil {
			return voiced
		}
		// Model unavailable or failing: fall through to the heuristic.
	}

	threshold := v.noiseFloor * vadFloorHeadroom
	if threshold < vadMinRMS {
		threshold = vadMinRMS
	}
	return rms > threshold && dsp.ZeroCrossingRate(window) < vadMaxZCR
}
