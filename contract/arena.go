// Package contract implements the encrypted duel state machine: the game
// registry, the lifecycle transitions and the round engine that settles
// stakes entirely on ciphertext handles.
//
// The execution environment guarantees a total order over state-changing
// calls; every exported method here is one atomic transaction against the
// Store, holds no state across calls, and either completes or fails with
// no partial mutation.
package contract

import (
	"github.com/cockroachdb/errors"

	"github.com/viktorvanov0715/ZeroTrustArena/fhe"
)

// Arena is the contract instance. All collaborators are injected; the
// contract owns no ambient state.
type Arena struct {
	store Store
	cop   fhe.Coprocessor
	sink  EventSink
}

// New wires a contract instance to its state store, co-processor and
// event sink. Pass NopSink when events are not observed.
func New(store Store, cop fhe.Coprocessor, sink EventSink) *Arena {
	if sink == nil {
		sink = NopSink
	}
	return &Arena{store: store, cop: cop, sink: sink}
}

func (a *Arena) loadGame(id uint64) (*Game, error) {
	raw, ok := a.store.Get(gameKey(id))
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "game %d", id)
	}
	return decodeGame(raw)
}

func (a *Arena) saveGame(g *Game) {
	a.store.Set(gameKey(g.ID), encodeGame(g))
}

// computable grants the computation environment access to a freshly
// produced handle and passes it through. Every homomorphic result must
// flow through here before it is used as an operand or stored; grants do
// not carry forward from the inputs.
func (a *Arena) computable(h fhe.Handle) fhe.Handle {
	a.cop.GrantCompute(h)
	return h
}
