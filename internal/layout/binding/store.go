package binding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/masterfoodbrokers/crm-backend/internal/pubsub"
)

// ErrStaleUpdate is returned when a write loses the last-writer-wins race:
// a newer load began for the same binding after this one, so this result is
// discarded rather than clobbering fresher data.
var ErrStaleUpdate = errors.New("binding: stale update rejected")

// State is the lifecycle of one binding's data.
type State string

const (
	StateLoading  State = "loading"
	StateResolved State = "resolved"
	StateErrored  State = "errored"
)

// Ref identifies one binding's data: the query name plus the fingerprint of
// the params it was fetched with. Results depend on params (entity ID,
// filters, user), so the store never keys by name alone; a request for one
// entity cannot read or overwrite another's snapshot.
type Ref struct {
	Query  string
	Params string
}

func NewRef(query string, p Params) Ref {
	return Ref{Query: query, Params: p.Fingerprint()}
}

// Snapshot is the immutable view of one binding at a point in time. Seq
// increases with every new load of the same ref; writers must present the
// Seq their load started with.
type Snapshot struct {
	Name      string
	State     State
	Value     any
	Err       error
	Seq       uint64
	UpdatedAt time.Time
}

// Fresh reports whether a resolved snapshot is still inside ttl.
func (s Snapshot) Fresh(ttl time.Duration, now time.Time) bool {
	return s.State == StateResolved && now.Sub(s.UpdatedAt) < ttl
}

// Store holds the latest snapshot per ref and notifies subscribers on every
// accepted change. Concurrent loads of the same ref resolve
// deterministically: the load that began last wins, earlier completions are
// rejected with ErrStaleUpdate. Loads for different refs never interact.
type Store struct {
	mu     sync.RWMutex
	snaps  map[Ref]Snapshot
	broker *pubsub.Broker[Snapshot]
}

func NewStore() *Store {
	return &Store{
		snaps:  make(map[Ref]Snapshot),
		broker: pubsub.NewBroker[Snapshot](),
	}
}

// Begin marks a binding as loading and returns the snapshot carrying the new
// Seq. The caller passes that Seq to Resolve or Fail when the load finishes.
// Any value already present stays visible to Bind until the load completes,
// so readers never regress from data to a spinner.
func (s *Store) Begin(ref Ref) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snaps[ref]
	next := Snapshot{
		Name:      ref.Query,
		State:     StateLoading,
		Value:     prev.Value,
		Seq:       prev.Seq + 1,
		UpdatedAt: time.Now(),
	}
	s.snaps[ref] = next
	s.broker.Publish(pubsub.BindingUpdated, next)
	return next
}

// Resolve stores a successful load result. seq must be the Seq returned by
// the Begin that started this load.
func (s *Store) Resolve(ref Ref, seq uint64, value any) (Snapshot, error) {
	return s.complete(ref, seq, Snapshot{
		Name:  ref.Query,
		State: StateResolved,
		Value: value,
	})
}

// Fail stores a load failure. The binding is errored, not poisoned: a later
// Begin starts a fresh load as usual.
func (s *Store) Fail(ref Ref, seq uint64, err error) (Snapshot, error) {
	return s.complete(ref, seq, Snapshot{
		Name:  ref.Query,
		State: StateErrored,
		Err:   err,
	})
}

func (s *Store) complete(ref Ref, seq uint64, next Snapshot) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snaps[ref]
	if seq != cur.Seq {
		return cur, ErrStaleUpdate
	}
	next.Seq = seq
	next.UpdatedAt = time.Now()
	s.snaps[ref] = next
	s.broker.Publish(pubsub.BindingUpdated, next)
	return next, nil
}

// Set stores a resolved value outside the Begin/Resolve protocol, for data
// that arrives whole (cache hits, push updates). It participates in the same
// seq ordering.
func (s *Store) Set(ref Ref, value any) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Snapshot{
		Name:      ref.Query,
		State:     StateResolved,
		Value:     value,
		Seq:       s.snaps[ref].Seq + 1,
		UpdatedAt: time.Now(),
	}
	s.snaps[ref] = next
	s.broker.Publish(pubsub.BindingUpdated, next)
	return next
}

// Get returns the current snapshot for a ref, if any.
func (s *Store) Get(ref Ref) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[ref]
	return snap, ok
}

// All returns a copy of every current snapshot.
func (s *Store) All() map[Ref]Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Ref]Snapshot, len(s.snaps))
	for k, v := range s.snaps {
		out[k] = v
	}
	return out
}

// Invalidate drops every params variant of a query so the next prefetch
// reloads it. Seq keeps counting so in-flight loads for dropped entries
// still lose the race.
func (s *Store) Invalidate(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ref, cur := range s.snaps {
		if ref.Query != query {
			continue
		}
		s.snaps[ref] = Snapshot{Name: query, Seq: cur.Seq + 1, UpdatedAt: time.Now()}
	}
}

// Subscribe streams every accepted snapshot change until ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context) <-chan pubsub.Event[Snapshot] {
	return s.broker.Subscribe(ctx)
}

func (s *Store) Close() {
	s.broker.Close()
}
