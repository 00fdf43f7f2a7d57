package contract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viktorvanov0715/ZeroTrustArena/contract"
	"github.com/viktorvanov0715/ZeroTrustArena/fhe"
)

const (
	alice = contract.Address("hive:alice")
	bob   = contract.Address("hive:bob")
	carol = contract.Address("hive:carol")
)

type fixture struct {
	arena   *contract.Arena
	enclave *fhe.Enclave
	events  []contract.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{enclave: fhe.NewEnclave()}
	sink := contract.SinkFunc(func(e contract.Event) {
		f.events = append(f.events, e)
	})
	f.arena = contract.New(contract.NewMemStore(), f.enclave, sink)
	return f
}

// seal produces an encrypted stake the way the client library would.
func (f *fixture) seal(value uint32, by contract.Address) fhe.EncryptedInput {
	return f.enclave.SealInput(value, fhe.InputContext{
		Contract: contract.ContractID,
		Sender:   string(by),
	})
}

func (f *fixture) submit(t *testing.T, id uint64, by contract.Address, value uint32) {
	t.Helper()
	require.NoError(t, f.arena.SubmitStake(id, by, f.seal(value, by)))
}

// startedGame creates, joins and starts a fresh game.
func (f *fixture) startedGame(t *testing.T) uint64 {
	t.Helper()
	id := f.arena.CreateGame(alice)
	require.NoError(t, f.arena.JoinGame(id, bob))
	require.NoError(t, f.arena.StartGame(id, alice))
	return id
}

func (f *fixture) decrypt(t *testing.T, h fhe.Handle, viewer contract.Address) uint32 {
	t.Helper()
	v, err := f.enclave.Decrypt(h, string(viewer))
	require.NoError(t, err)
	return v
}

func (f *fixture) eventTypes() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

func TestCreateGameAssignsIncreasingIDs(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, uint64(0), f.arena.CreateGame(alice))
	require.Equal(t, uint64(1), f.arena.CreateGame(bob))
	require.Equal(t, uint64(2), f.arena.CreateGame(alice))

	require.Equal(t, []uint64{0, 2}, f.arena.ListForPlayer(alice))
	require.Equal(t, []uint64{1}, f.arena.ListForPlayer(bob))

	g, err := f.arena.GetState(0)
	require.NoError(t, err)
	require.Equal(t, alice, g.Creator)
	require.Equal(t, contract.NoAddress, g.Opponent)
	require.False(t, g.Started)
	require.Equal(t, uint32(1), g.Round)
}

func TestGetStateUnknownGame(t *testing.T) {
	f := newFixture(t)
	_, err := f.arena.GetState(7)
	require.ErrorIs(t, err, contract.ErrNotFound)
}

func TestJoinGame(t *testing.T) {
	f := newFixture(t)
	id := f.arena.CreateGame(alice)

	require.NoError(t, f.arena.JoinGame(id, bob))

	g, err := f.arena.GetState(id)
	require.NoError(t, err)
	require.Equal(t, bob, g.Opponent)
	require.Equal(t, []uint64{id}, f.arena.ListForPlayer(bob))
}

func TestJoinGameRejections(t *testing.T) {
	f := newFixture(t)
	id := f.arena.CreateGame(alice)

	require.ErrorIs(t, f.arena.JoinGame(99, bob), contract.ErrNotFound)
	require.ErrorIs(t, f.arena.JoinGame(id, alice), contract.ErrSelfJoin)

	require.NoError(t, f.arena.JoinGame(id, bob))
	require.ErrorIs(t, f.arena.JoinGame(id, carol), contract.ErrAlreadyFull)
	// The seat holder cannot re-join either.
	require.ErrorIs(t, f.arena.JoinGame(id, bob), contract.ErrAlreadyFull)
}

func TestStartGame(t *testing.T) {
	f := newFixture(t)
	id := f.arena.CreateGame(alice)
	require.NoError(t, f.arena.JoinGame(id, bob))
	require.NoError(t, f.arena.StartGame(id, bob))

	g, err := f.arena.GetState(id)
	require.NoError(t, err)
	require.True(t, g.Started)
	require.Equal(t, uint32(1), g.Round)

	// Balances start at 100, private to their owner.
	require.Equal(t, uint32(100), f.decrypt(t, g.CreatorBalance, alice))
	require.Equal(t, uint32(100), f.decrypt(t, g.OpponentBalance, bob))
	_, err = f.enclave.Decrypt(g.CreatorBalance, string(bob))
	require.ErrorIs(t, err, fhe.ErrNotAuthorized)
	_, err = f.enclave.Decrypt(g.OpponentBalance, string(alice))
	require.ErrorIs(t, err, fhe.ErrNotAuthorized)

	// Scores start at 0 and are visible to both sides.
	for _, viewer := range []contract.Address{alice, bob} {
		require.Equal(t, uint32(0), f.decrypt(t, g.CreatorScore, viewer))
		require.Equal(t, uint32(0), f.decrypt(t, g.OpponentScore, viewer))
	}
}

func TestStartGameRejections(t *testing.T) {
	f := newFixture(t)
	id := f.arena.CreateGame(alice)

	require.ErrorIs(t, f.arena.StartGame(99, alice), contract.ErrNotFound)
	require.ErrorIs(t, f.arena.StartGame(id, alice), contract.ErrNoOpponent)

	require.NoError(t, f.arena.JoinGame(id, bob))
	require.ErrorIs(t, f.arena.StartGame(id, carol), contract.ErrNotParticipant)

	require.NoError(t, f.arena.StartGame(id, alice))
	require.ErrorIs(t, f.arena.StartGame(id, bob), contract.ErrAlreadyStarted)
}

func TestListOpen(t *testing.T) {
	f := newFixture(t)
	require.Empty(t, f.arena.ListOpen())

	id := f.arena.CreateGame(alice)
	require.Equal(t, []uint64{id}, f.arena.ListOpen())

	require.NoError(t, f.arena.JoinGame(id, bob))
	require.Empty(t, f.arena.ListOpen())

	a := f.arena.CreateGame(alice)
	b := f.arena.CreateGame(bob)
	require.Equal(t, []uint64{a, b}, f.arena.ListOpen())
}

func TestSubmitStakeRejections(t *testing.T) {
	f := newFixture(t)
	id := f.arena.CreateGame(alice)
	require.NoError(t, f.arena.JoinGame(id, bob))

	err := f.arena.SubmitStake(99, alice, f.seal(10, alice))
	require.ErrorIs(t, err, contract.ErrNotFound)

	err = f.arena.SubmitStake(id, carol, f.seal(10, carol))
	require.ErrorIs(t, err, contract.ErrNotParticipant)

	// Before start: rejected, no state change.
	err = f.arena.SubmitStake(id, alice, f.seal(10, alice))
	require.ErrorIs(t, err, contract.ErrNotStarted)
	g, _ := f.arena.GetState(id)
	require.False(t, g.CreatorSubmitted)

	require.NoError(t, f.arena.StartGame(id, alice))

	f.submit(t, id, alice, 10)
	err = f.arena.SubmitStake(id, alice, f.seal(20, alice))
	require.ErrorIs(t, err, contract.ErrDuplicateSubmission)
}

func TestSubmitStakeInvalidProofIsAtomic(t *testing.T) {
	f := newFixture(t)
	id := f.startedGame(t)

	in := f.seal(10, alice)
	in.Proof = append([]byte(nil), in.Proof...)
	in.Proof[0] ^= 0xff

	before, _ := f.arena.GetState(id)
	err := f.arena.SubmitStake(id, alice, in)
	require.ErrorIs(t, err, fhe.ErrInvalidProof)

	after, _ := f.arena.GetState(id)
	require.Equal(t, before, after)
}

func TestStakeSealedForOtherSenderRejected(t *testing.T) {
	f := newFixture(t)
	id := f.startedGame(t)

	// Bob replays a ciphertext alice produced for herself.
	err := f.arena.SubmitStake(id, bob, f.seal(10, alice))
	require.ErrorIs(t, err, fhe.ErrInvalidProof)
}

func TestLifecycleEvents(t *testing.T) {
	f := newFixture(t)
	id := f.startedGame(t)
	f.submit(t, id, alice, 25)
	f.submit(t, id, bob, 10)

	require.Equal(t, []string{
		"gameCreated", "gameJoined", "gameStarted",
		"stakeSubmitted", "stakeSubmitted", "roundResolved",
	}, f.eventTypes())

	// Events carry handles and ids, never plaintext stake values.
	resolved := f.events[len(f.events)-1]
	require.Equal(t, "1", resolved.Attributes["round"])
	for _, k := range []string{"creatorBalance", "opponentBalance", "creatorScore", "opponentScore"} {
		require.Len(t, resolved.Attributes[k], 2*fhe.HandleSize)
	}
}
