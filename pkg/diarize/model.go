package diarize

// Model is a pluggable learned speaker-embedding model.
//
// The extractor feeds it a fixed-length waveform (padded or truncated
// to SampleCount) plus any auxiliary channels and validity mask the
// model expects, and uses the returned vector as-is; learned models are
// expected to emit normalized embeddings. Absence of a model, or any
// inference error, is non-fatal: the pipeline falls back to spectral
// features.
//
// Implementations must be safe for concurrent use.
type Model interface {
	// Extract runs inference. channels[0] is the waveform; additional
	// channels (energy envelope, spectral centroid track) are present
	// only when Channels() > 1. mask is nil when MaskLength() is 0.
	Extract(channels [][]float32, mask []float32) ([]float32, error)

	// Dimension is the length of vectors returned by Extract.
	Dimension() int

	// SampleCount is the fixed waveform length the model requires.
	SampleCount() int

	// Channels is the number of input channels the model expects:
	// 1 for waveform-only, 3 for waveform + energy + centroid.
	Channels() int

	// MaskLength is the model's temporal resolution for the frame
	// validity mask, or 0 if the model takes no mask.
	MaskLength() int

	// Close releases model resources.
	Close() error
}
