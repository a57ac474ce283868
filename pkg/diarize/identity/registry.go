// Package identity maintains the persisted registry of global speaker
// signatures and reconciles per-recording cluster centroids against it,
// so that the same voice keeps the same id across recordings.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/lawrencel1ng/recordio-diarizer/pkg/kv"
)

// Store keys. Signatures and the id counter are global; one entry per
// recording maps local cluster indices to global ids.
var (
	keySignatures = kv.Key{"speaker", "global", "signatures"}
	keyNextID     = kv.Key{"speaker", "global", "next_id"}
	keyRecordings = kv.Key{"speaker", "recording"}
)

// DefaultThreshold is the minimum cosine similarity for matching a
// centroid to an existing signature; candidates below it mint a new id.
const DefaultThreshold = 0.70

// Momentum for the signature update grows with match quality.
const (
	momentumHigh = 0.8 // similarity >= 0.90
	momentumMid  = 0.6 // similarity >= 0.80
	momentumLow  = 0.4
)

// Registry assigns stable global speaker ids to recording centroids.
//
// All state lives in a kv.Store under the speaker: prefix. Read
// failures degrade to an empty registry; write failures are best-effort
// and logged, never surfaced. A single mutex serializes matching
// passes: concurrent recordings cannot interleave their greedy
// assignment or momentum updates.
type Registry struct {
	mu        sync.Mutex
	store     kv.Store
	threshold float64
	log       *slog.Logger
}

// New creates a Registry backed by store. A zero threshold selects
// DefaultThreshold.
func New(store kv.Store, threshold float64, log *slog.Logger) *Registry {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Registry{store: store, threshold: threshold, log: log}
}

// Assign matches the recording's centroids against the persisted
// signatures and returns one global id per centroid index.
//
// Matching is greedy by descending similarity and injective within the
// call: no centroid and no global id is used twice. Matched signatures
// are blended toward the new centroid with quality-scaled momentum;
// unmatched centroids register verbatim under a freshly minted,
// strictly increasing id. The updated registry and the recording's
// local-to-global map are persisted before returning.
func (r *Registry) Assign(ctx context.Context, recordingID string, centroids [][]float32) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sigs := r.loadSignatures(ctx)
	nextID := r.loadNextID(ctx)

	type candidate struct {
		centroid int
		id       uint64
		sim      float64
	}
	var candidates []candidate
	for ci, cen := range centroids {
		for id, sig := range sigs {
			sim := 1 - cosineDist(cen, sig)
			if sim < 0 {
				sim = 0
			}
			candidates = append(candidates, candidate{centroid: ci, id: id, sim: sim})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		if candidates[i].centroid != candidates[j].centroid {
			return candidates[i].centroid < candidates[j].centroid
		}
		return candidates[i].id < candidates[j].id
	})

	assigned := make([]uint64, len(centroids))
	centroidDone := make([]bool, len(centroids))
	idDone := make(map[uint64]bool)

	for _, c := range candidates {
		if c.sim < r.threshold {
			break
		}
		if centroidDone[c.centroid] || idDone[c.id] {
			continue
		}
		centroidDone[c.centroid] = true
		idDone[c.id] = true
		assigned[c.centroid] = c.id

		m := momentumLow
		switch {
		case c.sim >= 0.90:
			m = momentumHigh
		case c.sim >= 0.80:
			m = momentumMid
		}
		sigs[c.id] = blend(sigs[c.id], centroids[c.centroid], m)
	}

	for ci := range centroids {
		if centroidDone[ci] {
			continue
		}
		id := nextID
		nextID++
		assigned[ci] = id
		sigs[id] = cloneVec(centroids[ci])
	}

	r.saveSignatures(ctx, sigs)
	r.saveNextID(ctx, nextID)
	r.saveRecordingMap(ctx, recordingID, assigned)

	return assigned, nil
}

// Speakers returns a copy of all persisted signatures.
func (r *Registry) Speakers(ctx context.Context) map[uint64][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadSignatures(ctx)
}

// RecordingMap returns the persisted local-to-global id map for a
// recording, or kv.ErrNotFound.
func (r *Registry) RecordingMap(ctx context.Context, recordingID string) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.store.Get(ctx, append(keyRecordings, recordingID))
	if err != nil {
		return nil, err
	}
	var ids []uint64
	if err := msgpack.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Recordings lists all recording ids with a persisted speaker map.
func (r *Registry) Recordings(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.store.List(ctx, keyRecordings)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Key[len(e.Key)-1])
	}
	return ids, nil
}

// Reset wipes all signatures, the id counter, and all recording maps.
// This is the only way ids are ever reclaimed.
func (r *Registry) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.store.List(ctx, keyRecordings)
	if err == nil {
		for _, e := range entries {
			if derr := r.store.Delete(ctx, e.Key); derr != nil {
				err = derr
			}
		}
	}
	if derr := r.store.Delete(ctx, keySignatures); derr != nil {
		err = derr
	}
	if derr := r.store.Delete(ctx, keyNextID); derr != nil {
		err = derr
	}
	return err
}

// Export writes a msgpack snapshot of the registry (signatures and
// counter) for external backup.
func (r *Registry) Export(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := snapshot{
		Signatures: r.loadSignatures(ctx),
		NextID:     r.loadNextID(ctx),
	}
	return msgpack.Marshal(&snap)
}

// Import replaces the registry with a previously exported snapshot.
func (r *Registry) Import(ctx context.Context, data []byte) error {
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveSignatures(ctx, snap.Signatures)
	r.saveNextID(ctx, snap.NextID)
	return nil
}

type snapshot struct {
	Signatures map[uint64][]float32 `msgpack:"signatures"`
	NextID     uint64               `msgpack:"next_id"`
}

// loadSignatures reads the signature map; any failure yields an empty
// registry (persistence errors never surface).
func (r *Registry) loadSignatures(ctx context.Context) map[uint64][]float32 {
	data, err := r.store.Get(ctx, keySignatures)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			r.log.Warn("signature read failed, starting empty", "err", err)
		}
		return make(map[uint64][]float32)
	}
	var sigs map[uint64][]float32
	if err := msgpack.Unmarshal(data, &sigs); err != nil {
		r.log.Warn("signature decode failed, starting empty", "err", err)
		return make(map[uint64][]float32)
	}
	if sigs == nil {
		sigs = make(map[uint64][]float32)
	}
	return sigs
}

// loadNextID reads the id counter; ids start at 1 (0 is the no-voice
// fallback speaker).
func (r *Registry) loadNextID(ctx context.Context) uint64 {
	data, err := r.store.Get(ctx, keyNextID)
	if err != nil {
		return 1
	}
	var id uint64
	if err := msgpack.Unmarshal(data, &id); err != nil || id == 0 {
		return 1
	}
	return id
}

func (r *Registry) saveSignatures(ctx context.Context, sigs map[uint64][]float32) {
	data, err := msgpack.Marshal(sigs)
	if err == nil {
		err = r.store.Set(ctx, keySignatures, data)
	}
	if err != nil {
		r.log.Warn("signature write failed", "err", err)
	}
}

func (r *Registry) saveNextID(ctx context.Context, id uint64) {
	data, err := msgpack.Marshal(id)
	if err == nil {
		err = r.store.Set(ctx, keyNextID, data)
	}
	if err != nil {
		r.log.Warn("next id write failed", "err", err)
	}
}

func (r *Registry) saveRecordingMap(ctx context.Context, recordingID string, ids []uint64) {
	data, err := msgpack.Marshal(ids)
	if err == nil {
		err = r.store.Set(ctx, append(keyRecordings, recordingID), data)
	}
	if err != nil {
		r.log.Warn("recording map write failed", "recording", recordingID, "err", err)
	}
}

// blend applies momentum blending: old*m + new*(1-m).
func blend(old, neu []float32, m float64) []float32 {
	out := make([]float32, len(old))
	for i := range old {
		n := float32(0)
		if i < len(neu) {
			n = neu[i]
		}
		out[i] = old[i]*float32(m) + n*float32(1-m)
	}
	return out
}

func cloneVec(v []float32) []float32 {
	cp := make([]float32, len(v))
	copy(cp, v)
	return cp
}

// cosineDist returns 1 - cosine similarity.
func cosineDist(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
