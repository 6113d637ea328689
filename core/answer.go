package core

import "context"

// Answer is a mapping from named variables to concept handles, produced by
// one full walk of a Procedure. Anonymous variables never appear here; the
// executor elides them as it materialises a partial answer into a public
// one (§4.6).
type Answer map[string]Concept

// Clone returns a shallow copy safe to retain across iterator pulls; the
// executor reuses a single mutable scratch Answer internally and must not
// let callers alias it.
func (a Answer) Clone() Answer {
	out := make(Answer, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// AnswerIterator is the pull-based contract every traversal/reasoning
// stage streams through, mirroring a row-iterator: call Next until it
// returns (Answer{}, false, nil), or abandon and Close early. Close is
// always safe to call more than once.
type AnswerIterator interface {
	// Next returns the next answer. ok is false once the stream is
	// exhausted; err is non-nil only on failure, in which case ok is
	// false and the iterator must be treated as exhausted. Next checks
	// ctx at every yield (§5) and returns ErrQueryCancelled wrapping
	// ctx.Err() once it has been cancelled or has timed out, rather than
	// producing a partial or stale answer.
	Next(ctx context.Context) (ans Answer, ok bool, err error)
	// Close releases any resources (cursors, locks) the iterator holds.
	// Safe to call multiple times and on a not-fully-drained iterator.
	Close() error
}

// CheckCancelled is the single cooperative-cancellation check every
// AnswerIterator.Next implementer runs before doing any further work
// (§5, SPEC_FULL §4.6). The storage layer's cursors do not check ctx.
func CheckCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrQueryCancelled.New(ctx.Err())
	default:
		return nil
	}
}
