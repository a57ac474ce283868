// Package resampler normalizes PCM16 audio to the canonical analysis
// format (16 kHz mono). Stereo input is downmixed by averaging the two
// channels; sample-rate conversion uses a pure Go resampling library
// (no CGO dependencies).
package resampler

import (
	"fmt"
	"io"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/lawrencel1ng/recordio-diarizer/pkg/audio/pcm"
)

// Format describes PCM16 input audio.
type Format struct {
	// SampleRate is the sample rate in Hz (e.g. 44100, 48000).
	SampleRate int

	// Stereo indicates 2 interleaved channels if true, mono if false.
	Stereo bool
}

// Reader converts a PCM16 byte stream of the given source format into
// PCM16 16 kHz mono bytes.
type Reader struct {
	src    io.Reader
	srcFmt Format

	rs       resampling.Resampler
	readBuf  []byte
	leftover []byte
	srcEOF   bool
}

// New creates a Reader converting src from srcFmt to 16 kHz mono.
// When srcFmt is already canonical, reads pass through unchanged.
func New(src io.Reader, srcFmt Format) (*Reader, error) {
	r := &Reader{src: src, srcFmt: srcFmt}
	if srcFmt.SampleRate != pcm.SampleRate {
		cfg := &resampling.Config{
			InputRate:  float64(srcFmt.SampleRate),
			OutputRate: float64(pcm.SampleRate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		}
		rs, err := resampling.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("resampler: %w", err)
		}
		r.rs = rs
	}
	return r, nil
}

// Read fills p with converted PCM16 mono bytes.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	// Keep reads aligned to whole samples.
	p = p[:len(p)/2*2]
	if len(p) == 0 {
		return 0, io.ErrShortBuffer
	}

	for {
		if len(r.leftover) > 0 {
			n := copy(p, r.leftover)
			r.leftover = r.leftover[n:]
			return n, nil
		}
		if r.srcEOF {
			return 0, io.EOF
		}
		if err := r.fill(len(p)); err != nil {
			return 0, err
		}
	}
}

// fill reads one batch of source audio, downmixes, resamples, and
// appends the result to leftover.
func (r *Reader) fill(want int) error {
	srcBytes := want
	if r.rs != nil {
		ratio := float64(r.srcFmt.SampleRate) / float64(pcm.SampleRate)
		srcBytes = int(float64(want)*ratio) + 8
	}
	if r.srcFmt.Stereo {
		srcBytes *= 2
	}
	srcBytes = srcBytes / 2 * 2
	if cap(r.readBuf) < srcBytes {
		r.readBuf = make([]byte, srcBytes)
	}

	n, err := io.ReadFull(r.src, r.readBuf[:srcBytes])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		r.srcEOF = true
	} else if err != nil {
		return err
	}

	mono := r.readBuf[:n/2*2]
	if r.srcFmt.Stereo {
		mono = mono[:stereoToMono(mono)]
	}

	if r.rs == nil {
		r.leftover = append(r.leftover, mono...)
		return nil
	}

	nSamples := len(mono) / 2
	input := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		s := int16(mono[2*i]) | int16(mono[2*i+1])<<8
		input[i] = float64(s) / 32768.0
	}

	output, err := r.rs.Process(input)
	if err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	for _, s := range output {
		v := int16(s * 32767.0)
		if s > 1.0 {
			v = 32767
		} else if s < -1.0 {
			v = -32768
		}
		r.leftover = append(r.leftover, byte(v), byte(v>>8))
	}
	return nil
}

// stereoToMono averages L/R pairs in-place and returns the mono length.
func stereoToMono(b []byte) int {
	numFrames := len(b) / 4
	for i := 0; i < numFrames; i++ {
		j := i * 4
		k := i * 2
		l := int16(b[j]) | int16(b[j+1])<<8
		rr := int16(b[j+2]) | int16(b[j+3])<<8
		m := int16((int32(l) + int32(rr)) / 2)
		b[k] = byte(m)
		b[k+1] = byte(m >> 8)
	}
	return numFrames * 2
}
