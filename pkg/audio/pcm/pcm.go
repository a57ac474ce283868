// Package pcm handles the canonical audio format consumed by the
// diarization pipeline: PCM16 signed little-endian, 16 kHz, mono.
// It provides sample conversion helpers and a WAV container reader.
package pcm

import "time"

// SampleRate is the canonical sample rate for analysis.
const SampleRate = 16000

// BytesToFloat32 converts PCM16 little-endian bytes to normalized
// float32 samples in [-1, 1]. A trailing odd byte is ignored.
func BytesToFloat32(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(data[2*i]) | int16(data[2*i+1])<<8
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Float32ToBytes converts normalized float32 samples to PCM16
// little-endian bytes, clipping out-of-range values.
func Float32ToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, f := range samples {
		v := f * 32767.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		s := int16(v)
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}

// Duration returns the play time of sampleCount samples at the given rate.
func Duration(sampleCount, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(sampleCount) / float64(sampleRate) * float64(time.Second))
}
