// Package action implements the channel framework that binds producers
// (the indexer, the search runtime) to a single UI consumer: typed
// envelopes carrying FnOnce-style mutator closures rather than raw data, so
// producers that each touch overlapping parts of UI state stay
// self-describing and a central dispatcher is never needed (spec.md §9).
package action

import "sync/atomic"

// Kind distinguishes what an envelope's mutation is allowed to touch,
// without constraining its payload type — index-preview/update envelopes
// and search envelopes travel on separate Chan instances in practice, but
// Kind lets a single consumer loop branch on provenance when useful.
type Kind int

const (
	KindIndexUpdate Kind = iota
	KindSearch
)

// Envelope is one delivered unit of work: (id, kind, a mutation closure,
// complete). Mutate operates on a consumer of type C — for index updates C
// is typically an IndexView, for match batches a SearchView.
//
// complete=true is observable at most once per id and is the consumer's
// signal to settle in-flight state (progress indicators, revision
// bookkeeping). Exactly-once delivery is guaranteed by the channel
// framework; Mutate itself must never panic on the consumer's thread.
type Envelope[C any] struct {
	ID       uint64
	Kind     Kind
	Mutate   func(C)
	Complete bool
}

// Chan is a multi-producer, single-consumer channel of envelopes bound to a
// consumer type C.
type Chan[C any] struct {
	ch chan Envelope[C]
}

// NewChan creates a channel with the given buffer size. A size of 0 yields
// an unbuffered (synchronous-handoff) channel.
func NewChan[C any](buf int) *Chan[C] {
	return &Chan[C]{ch: make(chan Envelope[C], buf)}
}

// Stream returns a handle bound to (this channel, id, kind) that a producer
// uses to deliver work for a single logical operation (one indexing pass,
// one query).
func (c *Chan[C]) Stream(id uint64, kind Kind) Stream[C] {
	return Stream[C]{ch: c.ch, id: id, kind: kind}
}

// Recv exposes the receive side for the consumer's pump loop.
func (c *Chan[C]) Recv() <-chan Envelope[C] {
	return c.ch
}

// Close closes the channel. Only the owner that created it via NewChan
// should call this, and only after every producer holding a Stream has
// stopped sending.
func (c *Chan[C]) Close() {
	close(c.ch)
}

// Stream is a producer's typed handle for delivering envelopes tagged with
// one (id, kind) pair.
type Stream[C any] struct {
	ch   chan Envelope[C]
	id   uint64
	kind Kind
}

// ID returns the id this stream tags every envelope with.
func (s Stream[C]) ID() uint64 { return s.id }

// Send delivers one envelope. stop is a cooperative-cancellation channel —
// typically closed when the consumer disconnects or the process is
// shutting down; if it closes before the send completes, Send returns false
// and the caller (a walker worker, the search runtime) should terminate
// rather than retry, per spec.md §4.2 "channel send failure terminates the
// walk cooperatively".
func (s Stream[C]) Send(stop <-chan struct{}, mutate func(C), complete bool) bool {
	select {
	case s.ch <- Envelope[C]{ID: s.id, Kind: s.kind, Mutate: mutate, Complete: complete}:
		return true
	case <-stop:
		return false
	}
}

// CancellationRegister is the single shared monotonic counter naming the
// newest valid query id (spec.md §4.1, §9). Store happens-before any Load
// that observes it, matching the spec's Release/Acquire discipline; Go's
// atomic.Uint64 gives sequential consistency, a strictly stronger guarantee
// than the spec requires.
type CancellationRegister struct {
	latest atomic.Uint64
}

// Store names id as the newest valid query.
func (r *CancellationRegister) Store(id uint64) { r.latest.Store(id) }

// Load returns the newest valid query id.
func (r *CancellationRegister) Load() uint64 { return r.latest.Load() }

// Stale reports whether id is no longer the newest valid query — a scorer
// polls this at chunk boundaries and abandons work for id once Stale(id) is
// true, emitting no final batch (spec.md §4.1, §8 "Cancellation").
func (r *CancellationRegister) Stale(id uint64) bool { return r.latest.Load() != id }
