// Package dsp provides the spectral front-end for speaker feature
// extraction: FFT, mel filterbanks, MFCC coefficients, and the
// auxiliary descriptors (energy envelope, spectral centroid) consumed
// by learned embedding models.
//
// Default parameters target 16 kHz mono audio:
//
//	SampleRate:  16000
//	WindowSize:  400 (25 ms)
//	HopSize:     160 (10 ms)
//	NumMels:     16
//	NumCoeffs:   13
package dsp

import "math"

// MFCCConfig controls MFCC extraction parameters.
type MFCCConfig struct {
	SampleRate int // audio sample rate in Hz (default 16000)
	WindowSize int // analysis window in samples (default 400 = 25ms)
	HopSize    int // hop in samples (default 160 = 10ms)
	NumMels    int // mel filterbank channels (default 16)
	NumCoeffs  int // cepstral coefficients kept after DCT-II (default 13)
}

// DefaultMFCCConfig returns the default configuration for 16 kHz audio.
func DefaultMFCCConfig() MFCCConfig {
	return MFCCConfig{
		SampleRate: 16000,
		WindowSize: 400,
		HopSize:    160,
		NumMels:    16,
		NumCoeffs:  13,
	}
}

// MFCC computes mel-frequency cepstral coefficients from float32 samples.
type MFCC struct {
	cfg     MFCCConfig
	window  []float64 // Hann window
	melBank [][]float64
	fftSize int
}

// NewMFCC creates an MFCC extractor with the given config.
func NewMFCC(cfg MFCCConfig) *MFCC {
	fftSize := nextPow2(cfg.WindowSize)
	return &MFCC{
		cfg:     cfg,
		window:  hannWindow(cfg.WindowSize),
		melBank: melFilterBank(cfg.NumMels, fftSize, cfg.SampleRate),
		fftSize: fftSize,
	}
}

// Extract computes per-frame MFCC vectors from normalized samples in [-1, 1].
// Output is [T][NumCoeffs] where T = (len(pcm) - WindowSize)/HopSize + 1.
// Returns nil if the input is shorter than one window.
func (m *MFCC) Extract(pcm []float32) [][]float64 {
	cfg := m.cfg
	n := len(pcm)
	if n < cfg.WindowSize {
		return nil
	}

	numFrames := (n-cfg.WindowSize)/cfg.HopSize + 1
	halfFFT := m.fftSize/2 + 1

	frames := make([][]float64, numFrames)
	re := make([]float64, m.fftSize)
	im := make([]float64, m.fftSize)

	for t := 0; t < numFrames; t++ {
		start := t * cfg.HopSize

		for i := 0; i < cfg.WindowSize; i++ {
			re[i] = float64(pcm[start+i]) * m.window[i]
		}
		for i := cfg.WindowSize; i < m.fftSize; i++ {
			re[i] = 0
		}
		for i := range im {
			im[i] = 0
		}
		fft(re, im)

		power := make([]float64, halfFFT)
		for i := 0; i < halfFFT; i++ {
			power[i] = re[i]*re[i] + im[i]*im[i]
		}

		// Log mel energies with a floor to avoid -inf.
		logMel := make([]float64, cfg.NumMels)
		for b := 0; b < cfg.NumMels; b++ {
			var sum float64
			for k, w := range m.melBank[b] {
				sum += w * power[k]
			}
			if sum < 1e-10 {
				sum = 1e-10
			}
			logMel[b] = math.Log(sum)
		}

		// Mean-normalize the log energies so the coefficients capture
		// spectral shape, not absolute level. Without this the energy
		// offset dominates every vector and unrelated voices end up
		// nearly parallel under cosine similarity.
		var melMean float64
		for _, e := range logMel {
			melMean += e
		}
		melMean /= float64(cfg.NumMels)
		for b := range logMel {
			logMel[b] -= melMean
		}

		frames[t] = dctII(logMel, cfg.NumCoeffs)
	}
	return frames
}

// MeanVector averages per-frame coefficient vectors into a single vector.
// Returns nil for empty input.
func MeanVector(frames [][]float64) []float64 {
	if len(frames) == 0 {
		return nil
	}
	dim := len(frames[0])
	mean := make([]float64, dim)
	for _, f := range frames {
		for i, v := range f {
			mean[i] += v
		}
	}
	inv := 1.0 / float64(len(frames))
	for i := range mean {
		mean[i] *= inv
	}
	return mean
}

// EnergyEnvelope computes a short-term energy envelope via sliding RMS.
// The output has length len(pcm)/hop (at least 1 for non-empty input).
func EnergyEnvelope(pcm []float32, window, hop int) []float32 {
	if len(pcm) == 0 || window <= 0 || hop <= 0 {
		return nil
	}
	n := len(pcm) / hop
	if n == 0 {
		n = 1
	}
	env := make([]float32, n)
	for i := 0; i < n; i++ {
		start := i * hop
		end := start + window
		if end > len(pcm) {
			end = len(pcm)
		}
		var sum float64
		for _, s := range pcm[start:end] {
			sum += float64(s) * float64(s)
		}
		cnt := end - start
		if cnt > 0 {
			env[i] = float32(math.Sqrt(sum / float64(cnt)))
		}
	}
	return env
}

// SpectralCentroid computes the magnitude-weighted mean frequency of the
// samples, normalized to [0, 1] relative to the Nyquist frequency.
func SpectralCentroid(pcm []float32) float32 {
	if len(pcm) < 2 {
		return 0
	}
	samples := make([]float64, len(pcm))
	for i, s := range pcm {
		samples[i] = float64(s)
	}
	power := PowerSpectrum(samples)

	var weighted, total float64
	for k, p := range power {
		mag := math.Sqrt(p)
		weighted += float64(k) * mag
		total += mag
	}
	if total == 0 {
		return 0
	}
	return float32(weighted / total / float64(len(power)-1))
}

// RMS computes the root-mean-square level of the samples.
func RMS(pcm []float32) float64 {
	if len(pcm) == 0 {
		return 0
	}
	var sum float64
	for _, s := range pcm {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(pcm)))
}

// ZeroCrossingRate computes the fraction of adjacent sample pairs whose
// signs differ.
func ZeroCrossingRate(pcm []float32) float64 {
	if len(pcm) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(pcm); i++ {
		if (pcm[i-1] >= 0) != (pcm[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(pcm)-1)
}
