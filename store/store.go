// Package store implements the §6 handle store: a process-wide slab
// keyed by integer handles, each entry a refcounted MOC. add/copy/drop
// are atomic with respect to each other; a lookup-then-operate sequence
// takes the slab's shared lock for the whole sequence, and only the brief
// "insert the result" step takes the exclusive lock (§5).
//
// The shared/exclusive split is the same one
// encoding/pam/pamreader.go's sharded readers use for concurrent access
// to a slab of fields; blainsmith.com/go/seahash (imported as
// github.com/blainsmith/seahash, cmd/bio-pamtool/checksum.go's commutative
// per-record checksum) gives the store its content fingerprint, used by the
// CLI `checksum` command and reported in Info. Add does not deduplicate:
// equal MOCs get distinct handles.
package store

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/blainsmith/seahash"

	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/mocerr"
)

// maxRefcount is the u8 refcount ceiling §6 specifies.
const maxRefcount = 255

type entry[T idx.Idx] struct {
	refcount uint8
	m        moc.RangeMOC[T]
}

// Store is the handle slab for one carrier width T. A process embedding
// several carrier widths runs one Store per width.
type Store[T idx.Idx] struct {
	mu      sync.RWMutex
	entries map[int]*entry[T]
	next    int
}

// New returns an empty Store.
func New[T idx.Idx]() *Store[T] {
	return &Store[T]{entries: map[int]*entry[T]{}}
}

// Add inserts m under a fresh handle with refcount 1 and returns it.
func (s *Store[T]) Add(m moc.RangeMOC[T]) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.next
	s.next++
	s.entries[h] = &entry[T]{refcount: 1, m: m}
	return h
}

// Copy increments h's refcount, failing once it would exceed 255.
func (s *Store[T]) Copy(h int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok {
		return &mocerr.StoreError{Kind: "not_found", Handle: h}
	}
	if e.refcount == maxRefcount {
		return &mocerr.StoreError{Kind: "refcount_overflow", Handle: h}
	}
	e.refcount++
	return nil
}

// Drop decrements h's refcount, removing the entry once it reaches zero.
func (s *Store[T]) Drop(h int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok {
		return &mocerr.StoreError{Kind: "not_found", Handle: h}
	}
	e.refcount--
	if e.refcount == 0 {
		delete(s.entries, h)
	}
	return nil
}

// Get returns h's MOC under the slab's shared lock.
func (s *Store[T]) Get(h int) (moc.RangeMOC[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[h]
	if !ok {
		return moc.RangeMOC[T]{}, &mocerr.StoreError{Kind: "not_found", Handle: h}
	}
	return e.m, nil
}

// Apply looks h up and runs f against its MOC under the slab's shared
// lock, then inserts the result as a fresh handle (refcount 1) under the
// exclusive lock and returns it.
func (s *Store[T]) Apply(h int, f func(moc.RangeMOC[T]) moc.RangeMOC[T]) (int, error) {
	s.mu.RLock()
	e, ok := s.entries[h]
	if !ok {
		s.mu.RUnlock()
		return 0, &mocerr.StoreError{Kind: "not_found", Handle: h}
	}
	result := f(e.m)
	s.mu.RUnlock()
	return s.Add(result), nil
}

// Info describes one live handle, as returned by List and InfoOf.
type Info struct {
	Handle   int
	Refcount uint8
	Quantity string
	DepthMax int
	NRanges  int
	Checksum uint64
}

// List returns Info for every live handle, ordered by handle.
func (s *Store[T]) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Info, 0, len(s.entries))
	for h, e := range s.entries {
		out = append(out, Info{
			Handle:   h,
			Refcount: e.refcount,
			Quantity: e.m.Q.Name,
			DepthMax: e.m.DepthMax,
			NRanges:  len(e.m.Ranges),
			Checksum: Checksum(e.m),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// InfoOf describes a single handle.
func (s *Store[T]) InfoOf(h int) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[h]
	if !ok {
		return Info{}, &mocerr.StoreError{Kind: "not_found", Handle: h}
	}
	return Info{
		Handle:   h,
		Refcount: e.refcount,
		Quantity: e.m.Q.Name,
		DepthMax: e.m.DepthMax,
		NRanges:  len(e.m.Ranges),
		Checksum: Checksum(e.m),
	}, nil
}

// Checksum fingerprints m's range content with a commutative per-range
// seahash sum: hashField-then-sum, the same pattern
// cmd/bio-pamtool/checksum.go applies per-record. Hashing each range
// independently and summing the digests makes the fingerprint
// insensitive to the caller's internal bookkeeping, as long as the
// canonical (sorted, coalesced) range list itself is the same.
func Checksum[T idx.Idx](m moc.RangeMOC[T]) uint64 {
	h := seahash.New()
	var sum uint64
	var buf [16]byte
	for _, r := range m.Ranges {
		h.Reset()
		binary.BigEndian.PutUint64(buf[:8], idx.ToU64(r.Start))
		binary.BigEndian.PutUint64(buf[8:], idx.ToU64(r.End))
		h.Write(buf[:])
		sum += h.Sum64()
	}
	return sum
}
