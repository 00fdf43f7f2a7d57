package contract

import "github.com/cockroachdb/errors"

// JoinGame fills the opponent seat. The opponent is set at most once and
// can never equal the creator.
func (a *Arena) JoinGame(id uint64, by Address) error {
	g, err := a.loadGame(id)
	if err != nil {
		return err
	}
	if g.Opponent != NoAddress {
		return errors.Wrapf(ErrAlreadyFull, "game %d", id)
	}
	if by == g.Creator {
		return errors.Wrapf(ErrSelfJoin, "game %d", id)
	}

	g.Opponent = by
	a.saveGame(g)
	a.appendPlayerGame(by, id)
	a.emitGameJoined(id, by)
	return nil
}
