package store

import (
	"context"
	"sync"

	"github.com/dukerupert/foyer/internal/model"
)

// MemoryGateway keeps the snapshot in process. It is used by tests and by
// the "memory" driver.
type MemoryGateway struct {
	mu      sync.Mutex
	state   *model.State
	saves   int
	saveErr error
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{}
}

func (g *MemoryGateway) Load(_ context.Context) (model.State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == nil {
		return model.DefaultState(), nil
	}
	return g.state.Clone(), nil
}

func (g *MemoryGateway) Save(_ context.Context, st model.State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return g.saveErr
	}
	cp := st.Clone()
	cp.Normalize()
	g.state = &cp
	g.saves++
	return nil
}

// Saves reports how many snapshots have been written.
func (g *MemoryGateway) Saves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}

// FailSaves makes every following Save return err. Pass nil to recover.
func (g *MemoryGateway) FailSaves(err error) {
	g.mu.Lock()
	g.saveErr = err
	g.mu.Unlock()
}

func (g *MemoryGateway) Close() error { return nil }
