package diarize

import (
	"log/slog"

	"github.com/lawrencel1ng/recordio-diarizer/pkg/audio/dsp"
)

// extractor turns a voice-active analysis window into a fixed-dimension
// L2-normalized feature vector: learned model when available, spectral
// MFCC fallback otherwise.
type extractor struct {
	model Model // optional
	mfcc  *dsp.MFCC
	log   *slog.Logger

	modelFailed bool // logged once per session
}

func newExtractor(model Model, sampleRate int, log *slog.Logger) *extractor {
	cfg := dsp.DefaultMFCCConfig()
	cfg.SampleRate = sampleRate
	return &extractor{
		model: model,
		mfcc:  dsp.NewMFCC(cfg),
		log:   log,
	}
}

// Vector computes the feature vector for one window. It never fails:
// inference errors degrade to the spectral path.
func (e *extractor) Vector(window []float32) []float32 {
	if e.model != nil {
		if v, err := e.infer(window); err == nil {
			return v
		} else if !e.modelFailed {
			e.modelFailed = true
			e.log.Warn("embedding model failed, using spectral fallback", "err", err)
		}
	}
	return e.spectral(window)
}

// infer prepares the model's fixed-size input and runs inference.
func (e *extractor) infer(window []float32) ([]float32, error) {
	need := e.model.SampleCount()
	wave := make([]float32, need)
	n := copy(wave, window)

	channels := [][]float32{wave}
	if e.model.Channels() > 1 {
		res := e.temporalResolution(need)
		hop := need / res
		channels = append(channels,
			fitLength(dsp.EnergyEnvelope(wave, hop, hop), res),
			centroidTrack(wave, res),
		)
	}

	var mask []float32
	if ml := e.model.MaskLength(); ml > 0 {
		mask = make([]float32, ml)
		valid := int(float64(ml) * float64(n) / float64(need))
		for i := 0; i < valid && i < ml; i++ {
			mask[i] = 1
		}
	}

	return e.model.Extract(channels, mask)
}

// temporalResolution is the per-channel frame count for auxiliary
// inputs: the mask resolution when the model declares one, otherwise
// one frame per 10ms hop.
func (e *extractor) temporalResolution(sampleCount int) int {
	if ml := e.model.MaskLength(); ml > 0 {
		return ml
	}
	res := sampleCount / 160
	if res < 1 {
		res = 1
	}
	return res
}

// spectral computes the 13-coefficient MFCC fallback: per-frame
// coefficients mean-pooled over the window, then L2-normalized.
func (e *extractor) spectral(window []float32) []float32 {
	frames := e.mfcc.Extract(window)
	mean := dsp.MeanVector(frames)
	if mean == nil {
		// Window shorter than one MFCC frame: zero vector of the
		// fallback dimension.
		return make([]float32, dsp.DefaultMFCCConfig().NumCoeffs)
	}
	v := make([]float32, len(mean))
	for i, x := range mean {
		v[i] = float32(x)
	}
	l2Norm(v)
	return v
}

// centroidTrack computes the spectral centroid per sub-block, giving a
// coarse pitch/brightness contour channel.
func centroidTrack(wave []float32, res int) []float32 {
	track := make([]float32, res)
	block := len(wave) / res
	if block < 1 {
		block = 1
	}
	for i := 0; i < res; i++ {
		start := i * block
		end := start + block
		if end > len(wave) {
			end = len(wave)
		}
		if start < end {
			track[i] = dsp.SpectralCentroid(wave[start:end])
		}
	}
	return track
}

// fitLength pads or truncates v to length n.
func fitLength(v []float32, n int) []float32 {
	if len(v) == n {
		return v
	}
	out := make([]float32, n)
	copy(out, v)
	return out
}
