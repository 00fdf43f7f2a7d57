package contract

// resolveRound settles the round once both stakes are present. The whole
// computation runs on ciphertext handles through the co-processor; no
// branch here depends on a secret value.
//
// Rules:
//
//	effective stake = min(stake, own balance), so nobody can overdraw
//	higher effective stake wins; equal effective stakes change nothing
//	winner gains the loser's effective stake, the loser loses exactly it
//	winner's score increments by one
//
// Every fresh handle gets its compute grant inside the select chain and
// its viewer grants before the handles are stored; grants on the previous
// round's handles do not carry forward.
func (a *Arena) resolveRound(g *Game) {
	cop := a.cop

	effCreator := a.computable(cop.Min(g.CreatorStake, g.CreatorBalance))
	effOpponent := a.computable(cop.Min(g.OpponentStake, g.OpponentBalance))

	creatorWins := a.computable(cop.Gt(effCreator, effOpponent))
	opponentWins := a.computable(cop.Gt(effOpponent, effCreator))

	// Balance transfer. Ties fall through both selects unchanged.
	creatorWon := a.computable(cop.Add(g.CreatorBalance, effOpponent))
	creatorLost := a.computable(cop.Sub(g.CreatorBalance, effCreator))
	newCreatorBalance := a.computable(cop.Select(creatorWins, creatorWon,
		a.computable(cop.Select(opponentWins, creatorLost, g.CreatorBalance))))

	opponentWon := a.computable(cop.Add(g.OpponentBalance, effCreator))
	opponentLost := a.computable(cop.Sub(g.OpponentBalance, effOpponent))
	newOpponentBalance := a.computable(cop.Select(opponentWins, opponentWon,
		a.computable(cop.Select(creatorWins, opponentLost, g.OpponentBalance))))

	one := a.computable(cop.TrivialEncrypt(1))
	newCreatorScore := a.computable(cop.Select(creatorWins,
		a.computable(cop.Add(g.CreatorScore, one)), g.CreatorScore))
	newOpponentScore := a.computable(cop.Select(opponentWins,
		a.computable(cop.Add(g.OpponentScore, one)), g.OpponentScore))

	cop.GrantView(newCreatorBalance, string(g.Creator))
	cop.GrantView(newOpponentBalance, string(g.Opponent))

	resolved := g.Round
	g.CreatorBalance = newCreatorBalance
	g.OpponentBalance = newOpponentBalance
	g.CreatorScore = newCreatorScore
	g.OpponentScore = newOpponentScore
	a.grantScoreViews(g)

	g.CreatorStake = a.computable(cop.TrivialEncrypt(0))
	g.OpponentStake = a.computable(cop.TrivialEncrypt(0))
	cop.GrantView(g.CreatorStake, string(g.Creator))
	cop.GrantView(g.OpponentStake, string(g.Opponent))

	g.CreatorSubmitted = false
	g.OpponentSubmitted = false
	g.Round = resolved + 1

	a.emitRoundResolved(g, resolved)
}
