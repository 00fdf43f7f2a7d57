package contract

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/viktorvanov0715/ZeroTrustArena/fhe"
)

// codecVersion increments when the storage encoding changes.
const codecVersion uint8 = 1

// ErrCorruptRecord means a stored game record failed to decode.
var ErrCorruptRecord = errors.New("corrupt game record")

// Flag bits packed into a single meta byte.
const (
	flagStarted = 1 << iota
	flagHasOpponent
	flagCreatorSubmitted
	flagOpponentSubmitted
)

// encodeGame serializes a game into a compact byte slice.
//
// Layout:
//
//	version | ID | meta | Round | Creator | Opponent? | 6 handles
//
// Strings are u16-length-prefixed; handles are raw 32 bytes each in the
// order balances, scores, stakes (creator side first).
func encodeGame(g *Game) []byte {
	out := make([]byte, 0, 16+len(g.Creator)+len(g.Opponent)+6*fhe.HandleSize)

	w8 := func(x byte) { out = append(out, x) }
	w32 := func(x uint32) {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], x)
		out = append(out, tmp[:]...)
	}
	w64 := func(x uint64) {
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], x)
		out = append(out, tmp[:]...)
	}
	writeStr := func(s string) {
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(len(s)))
		out = append(out, tmp[:]...)
		out = append(out, s...)
	}

	var meta byte
	if g.Started {
		meta |= flagStarted
	}
	if g.Opponent != NoAddress {
		meta |= flagHasOpponent
	}
	if g.CreatorSubmitted {
		meta |= flagCreatorSubmitted
	}
	if g.OpponentSubmitted {
		meta |= flagOpponentSubmitted
	}

	w8(codecVersion)
	w64(g.ID)
	w8(meta)
	w32(g.Round)
	writeStr(string(g.Creator))
	if g.Opponent != NoAddress {
		writeStr(string(g.Opponent))
	}
	for _, h := range []fhe.Handle{
		g.CreatorBalance, g.OpponentBalance,
		g.CreatorScore, g.OpponentScore,
		g.CreatorStake, g.OpponentStake,
	} {
		out = append(out, h[:]...)
	}
	return out
}

// decodeGame reconstructs a game, rejecting trailing or missing bytes.
func decodeGame(b []byte) (*Game, error) {
	r := &rd{b: b}
	if r.u8() != codecVersion {
		return nil, errors.Wrap(ErrCorruptRecord, "unsupported codec version")
	}
	g := &Game{}
	g.ID = r.u64()
	meta := r.u8()
	g.Started = meta&flagStarted != 0
	g.CreatorSubmitted = meta&flagCreatorSubmitted != 0
	g.OpponentSubmitted = meta&flagOpponentSubmitted != 0
	g.Round = r.u32()
	g.Creator = Address(r.str())
	if meta&flagHasOpponent != 0 {
		g.Opponent = Address(r.str())
	}
	for _, dst := range []*fhe.Handle{
		&g.CreatorBalance, &g.OpponentBalance,
		&g.CreatorScore, &g.OpponentScore,
		&g.CreatorStake, &g.OpponentStake,
	} {
		copy(dst[:], r.bytes(fhe.HandleSize))
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return g, nil
}

// rd is a binary reader over a byte slice with big-endian integer reads.
// The first short read latches an error; finish reports it and rejects
// trailing bytes.
type rd struct {
	b   []byte
	i   int
	err error
}

func (r *rd) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.i+n > len(r.b) {
		r.err = errors.Wrap(ErrCorruptRecord, "truncated record")
		return false
	}
	return true
}

func (r *rd) u8() byte {
	if !r.need(1) {
		return 0
	}
	v := r.b[r.i]
	r.i++
	return v
}

func (r *rd) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.b[r.i : r.i+2])
	r.i += 2
	return v
}

func (r *rd) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.b[r.i : r.i+4])
	r.i += 4
	return v
}

func (r *rd) u64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.b[r.i : r.i+8])
	r.i += 8
	return v
}

func (r *rd) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.b[r.i : r.i+n]
	r.i += n
	return v
}

func (r *rd) str() string {
	l := int(r.u16())
	return string(r.bytes(l))
}

func (r *rd) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.i != len(r.b) {
		return errors.Wrap(ErrCorruptRecord, "trailing bytes")
	}
	return nil
}
