package contract

import "github.com/cockroachdb/errors"

// StartGame flips a joined game to started and mints the initial
// encrypted state: both balances at StartingBalance, both scores and
// stakes at zero. Either participant may start, exactly once.
//
// Grant policy set here and preserved by every later settlement: each
// player can decrypt their own balance and their own stake, and both
// players can decrypt both scores. Balances stay private to their owner;
// the running score is mutually visible.
func (a *Arena) StartGame(id uint64, by Address) error {
	g, err := a.loadGame(id)
	if err != nil {
		return err
	}
	if !g.isParticipant(by) {
		return errors.Wrapf(ErrNotParticipant, "game %d, caller %s", id, by)
	}
	if g.Started {
		return errors.Wrapf(ErrAlreadyStarted, "game %d", id)
	}
	if g.Opponent == NoAddress {
		return errors.Wrapf(ErrNoOpponent, "game %d", id)
	}

	g.Started = true

	g.CreatorBalance = a.computable(a.cop.TrivialEncrypt(StartingBalance))
	g.OpponentBalance = a.computable(a.cop.TrivialEncrypt(StartingBalance))
	a.cop.GrantView(g.CreatorBalance, string(g.Creator))
	a.cop.GrantView(g.OpponentBalance, string(g.Opponent))

	g.CreatorScore = a.computable(a.cop.TrivialEncrypt(0))
	g.OpponentScore = a.computable(a.cop.TrivialEncrypt(0))
	a.grantScoreViews(g)

	g.CreatorStake = a.computable(a.cop.TrivialEncrypt(0))
	g.OpponentStake = a.computable(a.cop.TrivialEncrypt(0))
	a.cop.GrantView(g.CreatorStake, string(g.Creator))
	a.cop.GrantView(g.OpponentStake, string(g.Opponent))

	a.saveGame(g)
	a.emitGameStarted(id)
	return nil
}

// grantScoreViews makes both current score handles decryptable by both
// participants.
func (a *Arena) grantScoreViews(g *Game) {
	for _, viewer := range []Address{g.Creator, g.Opponent} {
		a.cop.GrantView(g.CreatorScore, string(viewer))
		a.cop.GrantView(g.OpponentScore, string(viewer))
	}
}
