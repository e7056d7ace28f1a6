package rdt

import (
	"github.com/google/uuid"
	multierror "github.com/hashicorp/go-multierror"

	"github.com/rdtlab/rdt/internal"
)

// ID identifies a connection within a Registry. Since this protocol has no
// handshake of its own to mint connection identifiers, the host is
// expected to generate one (via NewID) per session the datagram layer
// establishes.
type ID = uuid.UUID

// NewID generates a fresh, random connection identifier.
func NewID() ID { return uuid.New() }

// Registry is the connection table a host maintains: one Conn per active
// session, looked up by ID and driven once per external tick. It
// tolerates connections being destroyed (and thus removed) during the
// very iteration that is driving them.
//
// ids and byID are kept in lockstep: ids gives tick-pass iteration order,
// byID gives O(1) lookup by ID.
type Registry struct {
	ids  []ID
	byID map[ID]*Conn
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[ID]*Conn)}
}

// Add registers conn under id. It replaces any existing connection
// previously registered under the same id.
func (r *Registry) Add(id ID, conn *Conn) {
	if _, exists := r.byID[id]; !exists {
		r.ids = append(r.ids, id)
	}
	r.byID[id] = conn
}

// Get looks up the connection registered under id.
func (r *Registry) Get(id ID) (*Conn, error) {
	conn, ok := r.byID[id]
	if !ok {
		return nil, errNotRegistered
	}
	if conn.Destroyed() {
		return nil, errConnDestroyed
	}
	return conn, nil
}

// Len returns the number of registered connections, including any that
// have torn down but not yet been swept.
func (r *Registry) Len() int { return len(r.byID) }

// Tick drives OnTick on every registered connection, then sweeps any that
// destroyed themselves during this pass. A connection's slot in ids is
// zeroed out (set to uuid.Nil) rather than spliced out mid-iteration;
// internal.DeleteZeroed then compacts ids in a single in-place pass once
// the loop has finished. Per-connection panics are recovered and
// aggregated into a single error so one misbehaving connection cannot
// take the whole registry tick down.
func (r *Registry) Tick() error {
	var errs *multierror.Error
	for i, id := range r.ids {
		conn := r.byID[id]
		if conn == nil {
			continue
		}
		if err := r.runTick(conn); err != nil {
			errs = multierror.Append(errs, err)
		}
		if conn.Destroyed() {
			delete(r.byID, id)
			r.ids[i] = uuid.Nil
		}
	}
	r.ids = internal.DeleteZeroed(r.ids)
	return errs.ErrorOrNil()
}

func (r *Registry) runTick(conn *Conn) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &tickPanicError{recovered: rec}
		}
	}()
	conn.OnTick()
	return nil
}

type tickPanicError struct {
	recovered any
}

func (e *tickPanicError) Error() string {
	return "rdt: connection tick panicked and was isolated"
}
