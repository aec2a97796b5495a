package main

import "time"

// SettleOutcome is the result of a deferred callback reaching a Debouncer.
type SettleOutcome int

const (
	// SettleStale means a newer request superseded the token. Drop it.
	SettleStale SettleOutcome = iota
	// SettleRetry means the state moved since the request. A fresh token
	// is returned and must be scheduled again.
	SettleRetry
	// SettleDone means the state held still for a full delay. Apply it.
	SettleDone
)

func (o SettleOutcome) String() string {
	switch o {
	case SettleStale:
		return "stale"
	case SettleRetry:
		return "retry"
	case SettleDone:
		return "done"
	}
	return "unknown"
}

// debounceToken travels through the timer callback. It carries the state
// observed at request time; the callback compares it with the current
// state rather than capturing anything else.
type debounceToken[T comparable] struct {
	seq      uint64
	snapshot T
}

// Debouncer coalesces bursts of requests into a single settled outcome.
// It does not own a timer: the caller delivers each token back after
// Delay, from the single UI goroutine.
type Debouncer[T comparable] struct {
	delay   time.Duration
	seq     uint64
	pending bool
}

func NewDebouncer[T comparable](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{delay: delay}
}

func (d *Debouncer[T]) Delay() time.Duration { return d.delay }

// Pending reports whether a token is outstanding.
func (d *Debouncer[T]) Pending() bool { return d.pending }

// Request supersedes any outstanding token and returns a new one.
func (d *Debouncer[T]) Request(snapshot T) debounceToken[T] {
	d.seq++
	d.pending = true
	return debounceToken[T]{seq: d.seq, snapshot: snapshot}
}

// Settle resolves a delivered token against the current state.
func (d *Debouncer[T]) Settle(tok debounceToken[T], current T) (SettleOutcome, debounceToken[T]) {
	if !d.pending || tok.seq != d.seq {
		return SettleStale, debounceToken[T]{}
	}
	if tok.snapshot != current {
		return SettleRetry, d.Request(current)
	}
	d.pending = false
	return SettleDone, tok
}

// Cancel invalidates any outstanding token.
func (d *Debouncer[T]) Cancel() {
	d.seq++
	d.pending = false
}
