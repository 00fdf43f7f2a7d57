package contract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viktorvanov0715/ZeroTrustArena/fhe"
)

func testHandle(b byte) fhe.Handle {
	var h fhe.Handle
	for i := range h {
		h[i] = b
	}
	return h
}

func TestCodecRoundTrip(t *testing.T) {
	g := &Game{
		ID:                9,
		Creator:           "hive:alice",
		Opponent:          "hive:bob",
		Started:           true,
		Round:             4,
		CreatorBalance:    testHandle(1),
		OpponentBalance:   testHandle(2),
		CreatorScore:      testHandle(3),
		OpponentScore:     testHandle(4),
		CreatorStake:      testHandle(5),
		OpponentStake:     testHandle(6),
		CreatorSubmitted:  true,
		OpponentSubmitted: false,
	}

	got, err := decodeGame(encodeGame(g))
	require.NoError(t, err)
	require.Equal(t, g, got)
}

func TestCodecRoundTripFreshGame(t *testing.T) {
	g := &Game{ID: 0, Creator: "hive:alice", Round: 1}

	got, err := decodeGame(encodeGame(g))
	require.NoError(t, err)
	require.Equal(t, g, got)
	require.Equal(t, NoAddress, got.Opponent)
	require.True(t, got.CreatorBalance.IsZero())
}

func TestCodecRejectsTruncation(t *testing.T) {
	raw := encodeGame(&Game{ID: 1, Creator: "hive:alice", Round: 1})

	for _, n := range []int{0, 1, len(raw) / 2, len(raw) - 1} {
		_, err := decodeGame(raw[:n])
		require.ErrorIs(t, err, ErrCorruptRecord, "prefix of %d bytes", n)
	}
}

func TestCodecRejectsTrailingBytes(t *testing.T) {
	raw := encodeGame(&Game{ID: 1, Creator: "hive:alice", Round: 1})
	_, err := decodeGame(append(raw, 0xee))
	require.ErrorIs(t, err, ErrCorruptRecord)
}

func TestCodecRejectsUnknownVersion(t *testing.T) {
	raw := encodeGame(&Game{ID: 1, Creator: "hive:alice", Round: 1})
	raw[0] = codecVersion + 1
	_, err := decodeGame(raw)
	require.ErrorIs(t, err, ErrCorruptRecord)
}
