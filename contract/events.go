package contract

import (
	"strconv"

	"github.com/viktorvanov0715/ZeroTrustArena/fhe"
)

// Event is the common structure for everything the contract announces.
// Attributes carry ids, addresses and hex-encoded ciphertext handles,
// never plaintext values.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// EventSink receives contract events in emission order.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

// Emit implements EventSink.
func (f SinkFunc) Emit(e Event) { f(e) }

// NopSink discards all events.
var NopSink = SinkFunc(func(Event) {})

func (a *Arena) emit(eventType string, attrs map[string]string) {
	a.sink.Emit(Event{Type: eventType, Attributes: attrs})
}

func (a *Arena) emitGameCreated(id uint64, by Address) {
	a.emit("gameCreated", map[string]string{
		"id": strconv.FormatUint(id, 10),
		"by": string(by),
	})
}

func (a *Arena) emitGameJoined(id uint64, opponent Address) {
	a.emit("gameJoined", map[string]string{
		"id":     strconv.FormatUint(id, 10),
		"joined": string(opponent),
	})
}

func (a *Arena) emitGameStarted(id uint64) {
	a.emit("gameStarted", map[string]string{
		"id": strconv.FormatUint(id, 10),
	})
}

func (a *Arena) emitStakeSubmitted(id uint64, by Address, stake fhe.Handle) {
	a.emit("stakeSubmitted", map[string]string{
		"id":    strconv.FormatUint(id, 10),
		"by":    string(by),
		"stake": stake.Hex(),
	})
}

func (a *Arena) emitRoundResolved(g *Game, resolved uint32) {
	a.emit("roundResolved", map[string]string{
		"id":              strconv.FormatUint(g.ID, 10),
		"round":           strconv.FormatUint(uint64(resolved), 10),
		"creatorBalance":  g.CreatorBalance.Hex(),
		"opponentBalance": g.OpponentBalance.Hex(),
		"creatorScore":    g.CreatorScore.Hex(),
		"opponentScore":   g.OpponentScore.Hex(),
	})
}
