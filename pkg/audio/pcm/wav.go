package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// WAV container errors.
var (
	ErrNotWAV        = errors.New("pcm: not a RIFF/WAVE file")
	ErrUnsupportedWAV = errors.New("pcm: unsupported WAV encoding (need PCM16)")
)

// WAVReader reads PCM16 sample data from a WAV container.
// The format and total duration are known after NewWAVReader returns,
// before any sample data has been consumed.
type WAVReader struct {
	r          io.Reader
	sampleRate int
	channels   int
	dataBytes  int
	remaining  int
}

// NewWAVReader parses the RIFF header of r and positions the reader at
// the start of the data chunk. Only 16-bit integer PCM is accepted.
func NewWAVReader(r io.Reader) (*WAVReader, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("pcm: read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	w := &WAVReader{r: r}
	var haveFmt bool
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("pcm: read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := int(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, ErrUnsupportedWAV
			}
			buf := make([]byte, size)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("pcm: read fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(buf[0:2])
			w.channels = int(binary.LittleEndian.Uint16(buf[2:4]))
			w.sampleRate = int(binary.LittleEndian.Uint32(buf[4:8]))
			bits := binary.LittleEndian.Uint16(buf[14:16])
			if format != 1 || bits != 16 || w.channels < 1 {
				return nil, ErrUnsupportedWAV
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, ErrUnsupportedWAV
			}
			w.dataBytes = size
			w.remaining = size
			return w, nil
		default:
			// Skip unrelated chunks (LIST, fact, ...). Chunks are
			// word-aligned; odd sizes carry a pad byte.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("pcm: skip %s chunk: %w", id, err)
			}
		}
	}
}

// SampleRate returns the sample rate declared in the fmt chunk.
func (w *WAVReader) SampleRate() int { return w.sampleRate }

// Channels returns the channel count declared in the fmt chunk.
func (w *WAVReader) Channels() int { return w.channels }

// Duration returns the total play time of the data chunk.
func (w *WAVReader) Duration() time.Duration {
	frames := w.dataBytes / (2 * w.channels)
	return Duration(frames, w.sampleRate)
}

// Read reads raw PCM16 bytes from the data chunk, returning io.EOF once
// the chunk is exhausted.
func (w *WAVReader) Read(p []byte) (int, error) {
	if w.remaining <= 0 {
		return 0, io.EOF
	}
	if len(p) > w.remaining {
		p = p[:w.remaining]
	}
	n, err := w.r.Read(p)
	w.remaining -= n
	if err == io.EOF && w.remaining > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// WriteWAV writes a PCM16 mono WAV file around the given samples.
// Used by tests and tooling to synthesize fixture recordings.
func WriteWAV(w io.Writer, samples []float32, sampleRate int) error {
	data := Float32ToBytes(samples)

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+len(data)))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], 1) // mono
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(hdr[32:34], 2)
	binary.LittleEndian.PutUint16(hdr[34:36], 16)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(len(data)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
