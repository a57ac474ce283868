// Package diarize answers "who spoke when" for a recorded conversation.
//
// A Diarizer reads a PCM16 WAV recording through a storage.Blobs
// backend, normalizes it to 16 kHz mono, slides an adaptive analysis
// window over the voice-active parts, clusters the per-window feature
// vectors with an ensemble of strategies, smooths the frame labels with
// a sticky Viterbi pass, and maps the resulting clusters onto the
// persisted global speaker registry so that the same voice keeps the
// same id across recordings.
//
// The pipeline degrades rather than fails: a missing or broken
// embedding model falls back to spectral features, persistence problems
// fall back to an empty registry, and a recording with no detectable
// voice yields a single whole-file segment for the reserved speaker 0.
// Only unusable input (unreadable file, bad container, zero duration)
// surfaces an error, always an *InputError.
package diarize

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lawrencel1ng/recordio-diarizer/pkg/audio/pcm"
	"github.com/lawrencel1ng/recordio-diarizer/pkg/audio/resampler"
	"github.com/lawrencel1ng/recordio-diarizer/pkg/buffer"
	"github.com/lawrencel1ng/recordio-diarizer/pkg/diarize/identity"
	"github.com/lawrencel1ng/recordio-diarizer/pkg/kv"
	"github.com/lawrencel1ng/recordio-diarizer/pkg/storage"
)

// chunkSeconds is the streaming read granularity. One second keeps the
// ring small while giving frequent progress and cancellation points.
const chunkSeconds = 1

// Diarizer is the analysis pipeline. Safe for concurrent use; the
// feature cache and speaker registry serialize their own state.
type Diarizer struct {
	cfg      Config
	log      *slog.Logger
	blobs    storage.Blobs
	model    Model
	voice    VoiceModel
	registry *identity.Registry
	cache    *featureCache
}

// Option configures a Diarizer.
type Option func(*Diarizer)

// WithConfig replaces the default pipeline parameters. Zero fields keep
// their defaults.
func WithConfig(cfg Config) Option {
	return func(d *Diarizer) { d.cfg = cfg }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(d *Diarizer) { d.log = log }
}

// WithBlobs sets the storage backend recordings are read from.
// Defaults to the local filesystem.
func WithBlobs(b storage.Blobs) Option {
	return func(d *Diarizer) { d.blobs = b }
}

// WithModel sets an optional learned speaker-embedding model. Inference
// errors fall back to spectral features.
func WithModel(m Model) Option {
	return func(d *Diarizer) { d.model = m }
}

// WithVoiceModel sets an optional learned voice-activity classifier.
// Its errors fall back to the energy heuristic.
func WithVoiceModel(m VoiceModel) Option {
	return func(d *Diarizer) { d.voice = m }
}

// New creates a Diarizer persisting speaker identities in store.
func New(store kv.Store, opts ...Option) (*Diarizer, error) {
	d := &Diarizer{log: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	d.cfg.defaults()
	if d.blobs == nil {
		local, err := storage.NewLocal("/")
		if err != nil {
			return nil, err
		}
		d.blobs = local
	}
	d.registry = identity.New(store, d.cfg.MatchThreshold, d.log)
	d.cache = newFeatureCache(d.cfg.CacheSize)
	return d, nil
}

// Registry exposes the global speaker registry for inspection and
// maintenance (listing, export, reset).
func (d *Diarizer) Registry() *identity.Registry { return d.registry }

// Close releases the embedding model, if any.
func (d *Diarizer) Close() error {
	if d.model != nil {
		return d.model.Close()
	}
	return nil
}

// CachedRecordings returns the number of recordings with cached features.
func (d *Diarizer) CachedRecordings() int { return d.cache.len() }

// ClearCache drops all cached features.
func (d *Diarizer) ClearCache() { d.cache.clear() }

// Request describes one analysis run.
type Request struct {
	// RecordingID identifies the recording across runs; feature caching
	// and the per-recording speaker map key on it. Empty generates a
	// fresh UUID (no caching benefit across calls).
	RecordingID string

	// Path of the recording within the storage backend.
	Path string

	// ForceRefresh bypasses the feature cache and re-extracts from
	// audio. Identities still come from the shared registry, so the
	// resulting speaker ids are unchanged.
	ForceRefresh bool

	// OnProgress, if set, receives monotonically non-decreasing
	// completion fractions in [0, 1] during audio processing. Called
	// from the processing goroutine; keep it fast.
	OnProgress func(fraction float64)
}

// Process analyzes one recording and returns its speaker segments:
// time-ordered, non-overlapping, covering the whole recording.
//
// The returned error, when non-nil, wraps *InputError. Model and
// persistence problems never fail the call.
func (d *Diarizer) Process(ctx context.Context, req Request) ([]Segment, error) {
	id := req.RecordingID
	if id == "" {
		id = uuid.NewString()
	}

	var (
		feats cachedFeatures
		ok    bool
	)
	if !req.ForceRefresh {
		feats, ok = d.cache.get(id)
	}
	if ok {
		d.log.Debug("using cached features", "recording", id, "frames", len(feats.vectors))
		if req.OnProgress != nil {
			req.OnProgress(1)
		}
	} else {
		var err error
		feats, err = d.extract(ctx, req.Path, req.OnProgress)
		if err != nil {
			return nil, err
		}
		d.cache.put(id, feats)
	}

	return d.analyze(ctx, id, feats)
}

// extract streams the recording through VAD and feature extraction,
// producing one vector per voice-active analysis window.
func (d *Diarizer) extract(ctx context.Context, path string, onProgress func(float64)) (cachedFeatures, error) {
	rc, err := d.blobs.Open(ctx, path)
	if err != nil {
		return cachedFeatures{}, &InputError{Reason: "open recording", Err: err}
	}
	defer rc.Close()

	wav, err := pcm.NewWAVReader(bufio.NewReader(rc))
	if err != nil {
		return cachedFeatures{}, &InputError{Reason: "parse recording", Err: err}
	}
	if wav.Channels() > 2 {
		return cachedFeatures{}, &InputError{Reason: "unsupported channel count"}
	}
	duration := wav.Duration()
	if duration <= 0 {
		return cachedFeatures{}, &InputError{Reason: "recording has no audio data"}
	}

	src, err := resampler.New(wav, resampler.Format{
		SampleRate: wav.SampleRate(),
		Stereo:     wav.Channels() == 2,
	})
	if err != nil {
		return cachedFeatures{}, &InputError{Reason: "unsupported sample rate", Err: err}
	}

	win, hop := d.cfg.window(duration)
	chunk := chunkSeconds * d.cfg.SampleRate
	ring := buffer.NewRing[float32](win + chunk)

	vad := newVAD(d.voice, d.cfg.CalibrationWindows)
	ext := newExtractor(d.model, d.cfg.SampleRate, d.log)

	var (
		vectors  [][]float32
		times    []time.Duration
		window   = make([]float32, win)
		chunkBuf = make([]byte, chunk*2)
		offset   int // samples consumed, marks the next window start
		total    = int(duration.Seconds() * float64(d.cfg.SampleRate))
		read     int
		progress float64
	)

	for {
		if err := ctx.Err(); err != nil {
			return cachedFeatures{}, &InputError{Reason: "canceled", Err: err}
		}

		n, rerr := io.ReadFull(src, chunkBuf)
		if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
			return cachedFeatures{}, &InputError{Reason: "read recording", Err: rerr}
		}
		if n > 0 {
			samples := pcm.BytesToFloat32(chunkBuf[:n/2*2])
			read += len(samples)
			if werr := ring.Write(samples); werr != nil {
				return cachedFeatures{}, &InputError{Reason: "buffer audio", Err: werr}
			}
		}

		for ring.Len() >= win {
			if werr := ring.Window(window); werr != nil {
				break
			}
			if vad.Voiced(window, d.cfg.SampleRate) {
				vectors = append(vectors, ext.Vector(window))
				times = append(times, pcm.Duration(offset, d.cfg.SampleRate))
			}
			ring.Discard(hop)
			offset += hop
		}

		if onProgress != nil && total > 0 {
			if p := float64(read) / float64(total); p > progress && p <= 1 {
				progress = p
				onProgress(p)
			}
		}

		if rerr != nil {
			break
		}
	}

	if onProgress != nil && progress < 1 {
		onProgress(1)
	}

	d.log.Debug("features extracted",
		"frames", len(vectors), "duration", duration, "window_samples", win)
	return cachedFeatures{vectors: vectors, times: times, duration: duration}, nil
}

// analyze clusters the extracted features, smooths the frame labels,
// resolves global identities, and builds the segment list.
func (d *Diarizer) analyze(ctx context.Context, id string, feats cachedFeatures) ([]Segment, error) {
	vecs := feats.vectors
	if len(vecs) == 0 {
		d.log.Info("no voice activity detected", "recording", id)
		return buildSegments(frameSeq{}, feats.duration, &d.cfg), nil
	}

	k, score := estimateSpeakers(vecs, d.cfg.MaxSpeakers)
	d.log.Debug("speaker count estimated", "recording", id, "k", k, "silhouette", score)

	if k == 1 {
		all := make([]int, len(vecs))
		centroid := meanVector(vecs, all, 0)
		l2Norm(centroid)
		ids, err := d.registry.Assign(ctx, id, [][]float32{centroid})
		if err != nil {
			return nil, err
		}
		return []Segment{{
			SpeakerID:  ids[0],
			Start:      0,
			End:        feats.duration,
			Confidence: singleSpeakerConfidence,
		}}, nil
	}

	ens := ensembleCluster(vecs, k)
	labels := smoothLabels(vecs, ens.centroids, ens.labels, d.cfg.Stay, d.cfg.SmoothWidth)

	ids, err := d.registry.Assign(ctx, id, ens.centroids)
	if err != nil {
		return nil, err
	}

	fs := frameSeq{
		times:    feats.times,
		speakers: make([]uint64, len(labels)),
		sims:     make([]float64, len(labels)),
		overlap:  ens.overlap,
	}
	for i, l := range labels {
		fs.speakers[i] = ids[l]
		fs.sims[i] = cosineSim(vecs[i], ens.centroids[l])
	}

	segs := buildSegments(fs, feats.duration, &d.cfg)
	d.log.Info("recording analyzed",
		"recording", id, "speakers", k, "segments", len(segs))
	return segs, nil
}
