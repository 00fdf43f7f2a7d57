package contract

import "github.com/viktorvanov0715/ZeroTrustArena/fhe"

// Address identifies a player. Wallet signature verification happens
// outside this package; by the time an entry point runs, the sender
// address is authenticated.
type Address string

// NoAddress is the distinguished empty identity. A game whose Opponent
// is NoAddress has not been joined yet.
const NoAddress Address = ""

// ContractID is the context every encrypted input must be bound to.
const ContractID = "ztarena/duel/v1"

// StartingBalance is the encrypted point balance each player begins with.
const StartingBalance uint32 = 100

// Game is the full record for one duel. Balances, scores and stakes are
// opaque ciphertext handles; this package never observes their plaintext.
type Game struct {
	ID       uint64
	Creator  Address
	Opponent Address
	Started  bool
	Round    uint32

	CreatorBalance  fhe.Handle
	OpponentBalance fhe.Handle
	CreatorScore    fhe.Handle
	OpponentScore   fhe.Handle
	CreatorStake    fhe.Handle
	OpponentStake   fhe.Handle

	CreatorSubmitted  bool
	OpponentSubmitted bool
}

func (g *Game) isParticipant(a Address) bool {
	return a == g.Creator || (g.Opponent != NoAddress && a == g.Opponent)
}
