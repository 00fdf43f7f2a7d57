package contract

// GetState returns a read-only copy of the game record. The ciphertext
// handles in it are opaque; decryption goes through the oracle, subject
// to the grants in force.
func (a *Arena) GetState(id uint64) (Game, error) {
	g, err := a.loadGame(id)
	if err != nil {
		return Game{}, err
	}
	return *g, nil
}

// ListOpen returns, in ascending id order, every game still waiting for
// an opponent.
func (a *Arena) ListOpen() []uint64 {
	count := a.gameCount()
	var out []uint64
	for id := uint64(0); id < count; id++ {
		g, err := a.loadGame(id)
		if err != nil {
			continue
		}
		if g.Opponent == NoAddress {
			out = append(out, id)
		}
	}
	return out
}

// ListForPlayer returns the append-only game history for an identity,
// insertion order preserved. A player appearing as creator of one game
// and joiner of another sees both; duplicates are not collapsed.
func (a *Arena) ListForPlayer(p Address) []uint64 {
	return a.playerGames(p)
}
