package diarize

import (
	"errors"
	"math"
	"testing"
)

func sine(freq float64, amp float64, rate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestVADDetectsTone(t *testing.T) {
	v := newVAD(nil, 5)
	win := sine(440, 0.1, 16000, 16000)
	// Must detect its own speech from the first window, even with no
	// leading silence to calibrate against.
	if !v.Voiced(win, 16000) {
		t.Error("loud tone not detected as voiced")
	}
}

func TestVADRejectsSilence(t *testing.T) {
	v := newVAD(nil, 5)
	if v.Voiced(make([]float32, 16000), 16000) {
		t.Error("digital silence detected as voiced")
	}
}

func TestVADRejectsNearSilence(t *testing.T) {
	v := newVAD(nil, 5)
	// Below the absolute RMS floor regardless of calibration.
	win := sine(440, 0.002, 16000, 16000)
	if v.Voiced(win, 16000) {
		t.Error("near-silent tone detected as voiced")
	}
}

func TestVADRejectsHighZCRNoise(t *testing.T) {
	v := newVAD(nil, 5)
	// Sample-rate alternation: loud but crosses zero every sample.
	win := make([]float32, 16000)
	for i := range win {
		if i%2 == 0 {
			win[i] = 0.1
		} else {
			win[i] = -0.1
		}
	}
	if v.Voiced(win, 16000) {
		t.Error("broadband noise detected as voiced")
	}
}

func TestVADAdaptiveFloor(t *testing.T) {
	v := newVAD(nil, 5)
	quiet := sine(300, 0.05, 16000, 16000)
	loud := sine(300, 0.5, 16000, 16000)

	// Calibrate on the quiet passage; both it and louder speech must
	// clear the floor derived from it.
	for i := 0; i < 5; i++ {
		if !v.Voiced(quiet, 16000) {
			t.Fatalf("calibration window %d not voiced", i)
		}
	}
	if !v.Voiced(loud, 16000) {
		t.Error("loud window after quiet calibration not voiced")
	}
}

func TestVADResetClearsCalibration(t *testing.T) {
	v := newVAD(nil, 1)
	loud := sine(300, 0.5, 16000, 16000)
	quiet := sine(300, 0.01, 16000, 16000)

	v.Voiced(loud, 16000) // floor now 0.5*rms(loud)
	if v.Voiced(quiet, 16000) {
		t.Fatal("quiet window voiced against loud floor")
	}

	v.Reset()
	if !v.Voiced(quiet, 16000) {
		t.Error("quiet window not voiced after reset recalibration")
	}
}

type fakeVoiceModel struct {
	verdict bool
	err     error
}

func (m fakeVoiceModel) Voiced(_ []float32, _ int) (bool, error) {
	return m.verdict, m.err
}

func TestVADModelPrecedence(t *testing.T) {
	loud := sine(440, 0.1, 16000, 16000)

	v := newVAD(fakeVoiceModel{verdict: false}, 5)
	if v.Voiced(loud, 16000) {
		t.Error("model verdict (not voiced) ignored")
	}

	v = newVAD(fakeVoiceModel{verdict: true}, 5)
	if !v.Voiced(make([]float32, 16000), 16000) {
		t.Error("model verdict (voiced) ignored")
	}
}

func TestVADModelErrorFallsBack(t *testing.T) {
	loud := sine(440, 0.1, 16000, 16000)
	v := newVAD(fakeVoiceModel{err: errors.New("model load failed")}, 5)
	if !v.Voiced(loud, 16000) {
		t.Error("heuristic not applied when model errors")
	}
}
