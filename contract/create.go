package contract

// CreateGame allocates a fresh game id, registers the caller as creator
// and appends the game to the caller's history. It succeeds for any
// caller. Ids are strictly increasing from zero and never reused.
func (a *Arena) CreateGame(by Address) uint64 {
	id := a.gameCount()
	g := &Game{
		ID:      id,
		Creator: by,
		Round:   1,
	}
	a.saveGame(g)
	a.setGameCount(id + 1)
	a.appendPlayerGame(by, id)
	a.emitGameCreated(id, by)
	return id
}
