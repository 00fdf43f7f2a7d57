package contract

import (
	"github.com/cockroachdb/errors"

	"github.com/viktorvanov0715/ZeroTrustArena/fhe"
)

// SubmitStake accepts one side's encrypted stake for the current round.
// The input proof is validated before any state changes, so a failed
// import leaves no trace. Each side submits at most once per round; the
// second accepted submission settles the round synchronously before this
// call returns.
func (a *Arena) SubmitStake(id uint64, by Address, input fhe.EncryptedInput) error {
	g, err := a.loadGame(id)
	if err != nil {
		return err
	}
	if !g.isParticipant(by) {
		return errors.Wrapf(ErrNotParticipant, "game %d, caller %s", id, by)
	}
	if !g.Started {
		return errors.Wrapf(ErrNotStarted, "game %d", id)
	}
	creatorSide := by == g.Creator
	if (creatorSide && g.CreatorSubmitted) || (!creatorSide && g.OpponentSubmitted) {
		return errors.Wrapf(ErrDuplicateSubmission, "game %d, round %d, caller %s", id, g.Round, by)
	}

	stake, err := a.cop.VerifyInput(input, fhe.InputContext{
		Contract: ContractID,
		Sender:   string(by),
	})
	if err != nil {
		return errors.Wrapf(err, "game %d", id)
	}
	a.computable(stake)
	a.cop.GrantView(stake, string(by))

	if creatorSide {
		g.CreatorStake = stake
		g.CreatorSubmitted = true
	} else {
		g.OpponentStake = stake
		g.OpponentSubmitted = true
	}
	a.emitStakeSubmitted(id, by, stake)

	if g.CreatorSubmitted && g.OpponentSubmitted {
		a.resolveRound(g)
	}
	a.saveGame(g)
	return nil
}
