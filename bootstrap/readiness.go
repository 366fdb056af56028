package bootstrap

import (
	"net"
	"sync"
)

// Readiness records the two startup milestones. It gates nothing: the listener
// accepts traffic whether or not the database has settled.
type Readiness struct {
	listenerBound   chan struct{}
	databaseSettled chan struct{}
	listenerOnce    sync.Once
	databaseOnce    sync.Once

	mu    sync.Mutex
	addr  net.Addr
	dbErr error
}

func newReadiness() *Readiness {
	return &Readiness{
		listenerBound:   make(chan struct{}),
		databaseSettled: make(chan struct{}),
	}
}

// ListenerBound is closed once the HTTP listener accepts connections
func (r *Readiness) ListenerBound() <-chan struct{} {
	return r.listenerBound
}

// DatabaseSettled is closed once the single connection attempt has finished, successfully or not
func (r *Readiness) DatabaseSettled() <-chan struct{} {
	return r.databaseSettled
}

// Addr returns the bound listener address, or nil before ListenerBound
func (r *Readiness) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addr
}

// DatabaseErr returns the connection outcome; meaningful after DatabaseSettled
func (r *Readiness) DatabaseErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dbErr
}

func (r *Readiness) markListenerBound(addr net.Addr) {
	r.listenerOnce.Do(func() {
		r.mu.Lock()
		r.addr = addr
		r.mu.Unlock()
		close(r.listenerBound)
	})
}

func (r *Readiness) markDatabaseSettled(err error) {
	r.databaseOnce.Do(func() {
		r.mu.Lock()
		r.dbErr = err
		r.mu.Unlock()
		close(r.databaseSettled)
	})
}
