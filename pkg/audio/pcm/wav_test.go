package pcm

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"time"
)

func TestWAVRoundTrip(t *testing.T) {
	samples := make([]float32, SampleRate) // 1 second
	for i := range samples {
		samples[i] = float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}

	var buf bytes.Buffer
	if err := WriteWAV(&buf, samples, SampleRate); err != nil {
		t.Fatalf("write wav: %v", err)
	}

	r, err := NewWAVReader(&buf)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	if r.SampleRate() != SampleRate {
		t.Errorf("sample rate = %d, want %d", r.SampleRate(), SampleRate)
	}
	if r.Channels() != 1 {
		t.Errorf("channels = %d, want 1", r.Channels())
	}
	if d := r.Duration(); d != time.Second {
		t.Errorf("duration = %v, want 1s", d)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read data: %v", err)
	}
	got := BytesToFloat32(data)
	if len(got) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(got), len(samples))
	}
	for i := range got {
		if math.Abs(float64(got[i]-samples[i])) > 1.0/32768.0 {
			t.Fatalf("sample %d: got %f, want %f", i, got[i], samples[i])
		}
	}
}

func TestWAVSkipsUnknownChunks(t *testing.T) {
	samples := []float32{0.1, -0.1, 0.2}
	var body bytes.Buffer
	WriteWAV(&body, samples, SampleRate)
	raw := body.Bytes()

	// Splice a LIST chunk between fmt and data.
	var buf bytes.Buffer
	buf.Write(raw[:36])                                     // RIFF + fmt
	buf.Write([]byte{'L', 'I', 'S', 'T', 4, 0, 0, 0})       // LIST, size 4
	buf.Write([]byte{'I', 'N', 'F', 'O'})                   // payload
	buf.Write(raw[36:])                                     // data chunk

	r, err := NewWAVReader(&buf)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != len(samples)*2 {
		t.Errorf("got %d bytes, want %d", len(data), len(samples)*2)
	}
}

func TestWAVRejectsGarbage(t *testing.T) {
	if _, err := NewWAVReader(bytes.NewReader([]byte("OggS this is not a wav file!"))); !errors.Is(err, ErrNotWAV) {
		t.Errorf("expected ErrNotWAV, got %v", err)
	}
}

func TestWAVRejectsFloatEncoding(t *testing.T) {
	samples := []float32{0}
	var body bytes.Buffer
	WriteWAV(&body, samples, SampleRate)
	raw := body.Bytes()
	raw[20] = 3 // IEEE float format tag

	if _, err := NewWAVReader(bytes.NewReader(raw)); !errors.Is(err, ErrUnsupportedWAV) {
		t.Errorf("expected ErrUnsupportedWAV, got %v", err)
	}
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1.5, -1.5} // last two clip
	out := BytesToFloat32(Float32ToBytes(in))
	if out[3] < 0.99 || out[4] > -0.99 {
		t.Errorf("expected clipping to ±1, got %f, %f", out[3], out[4])
	}
}
