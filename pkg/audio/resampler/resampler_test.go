package resampler

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/lawrencel1ng/recordio-diarizer/pkg/audio/pcm"
)

func sineBytes(freq float64, nSamples, rate int) []byte {
	samples := make([]float32, nSamples)
	for i := range samples {
		samples[i] = float32(0.4 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return pcm.Float32ToBytes(samples)
}

func TestPassthrough(t *testing.T) {
	src := sineBytes(440, 1600, pcm.SampleRate)
	r, err := New(bytes.NewReader(src), Format{SampleRate: pcm.SampleRate})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Error("canonical input should pass through unchanged")
	}
}

func TestStereoDownmix(t *testing.T) {
	// Interleave two identical mono channels; downmix must reproduce them.
	mono := sineBytes(440, 800, pcm.SampleRate)
	stereo := make([]byte, 0, len(mono)*2)
	for i := 0; i < len(mono); i += 2 {
		stereo = append(stereo, mono[i], mono[i+1], mono[i], mono[i+1])
	}

	r, err := New(bytes.NewReader(stereo), Format{SampleRate: pcm.SampleRate, Stereo: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(out, mono) {
		t.Error("identical L/R channels should downmix to the original mono signal")
	}
}

func TestRateConversion(t *testing.T) {
	const srcRate = 8000
	src := sineBytes(440, srcRate, srcRate) // 1 second
	r, err := New(bytes.NewReader(src), Format{SampleRate: srcRate})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	gotSamples := len(out) / 2
	// Expect roughly one second at 16 kHz; resamplers may trim edges.
	if gotSamples < pcm.SampleRate*9/10 || gotSamples > pcm.SampleRate*11/10 {
		t.Errorf("expected ~%d samples after 8k→16k conversion, got %d", pcm.SampleRate, gotSamples)
	}
}
