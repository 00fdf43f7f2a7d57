package contract

import (
	"encoding/binary"
	"strconv"
)

// Store is the contract state keyspace. The execution environment
// serializes all state-changing calls, so implementations need no
// internal locking beyond what their own callers require.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// MemStore is an in-memory Store for tests and the dev server.
type MemStore struct {
	m map[string][]byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string][]byte)}
}

// Get implements Store.
func (s *MemStore) Get(key string) ([]byte, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Set implements Store.
func (s *MemStore) Set(key string, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	s.m[key] = cp
}

// ---------- Keys ----------

const countKey = "g:count"

func gameKey(id uint64) string { return "g:" + strconv.FormatUint(id, 10) }

func playerKey(a Address) string { return "p:" + string(a) }

// ---------- Registry primitives ----------

func (a *Arena) gameCount() uint64 {
	raw, ok := a.store.Get(countKey)
	if !ok || len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

func (a *Arena) setGameCount(n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	a.store.Set(countKey, buf[:])
}

// appendPlayerGame records a game id in a player's append-only history.
// Duplicates are kept; insertion order is the order of participation.
func (a *Arena) appendPlayerGame(p Address, id uint64) {
	raw, _ := a.store.Get(playerKey(p))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	a.store.Set(playerKey(p), append(raw, buf[:]...))
}

func (a *Arena) playerGames(p Address) []uint64 {
	raw, ok := a.store.Get(playerKey(p))
	if !ok {
		return nil
	}
	out := make([]uint64, 0, len(raw)/8)
	for i := 0; i+8 <= len(raw); i += 8 {
		out = append(out, binary.BigEndian.Uint64(raw[i:i+8]))
	}
	return out
}
