// Command arenad runs the duel contract in-process behind a thin HTTP
// facade: JSON entry points, a websocket event feed and a decryption
// endpoint backed by the enclave oracle. It contains no game logic and
// exists so UIs have something to talk to during development.
//
// Caller identity is taken from the X-Arena-Player header; signature
// verification belongs to the surrounding wallet layer and is not
// re-checked here.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/net/websocket"

	"github.com/viktorvanov0715/ZeroTrustArena/contract"
	"github.com/viktorvanov0715/ZeroTrustArena/fhe"
)

const playerHeader = "X-Arena-Player"

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	flag.Parse()

	hub := newHub()
	enclave := fhe.NewEnclave()
	srv := &server{
		arena:   contract.New(contract.NewMemStore(), enclave, hub),
		enclave: enclave,
		hub:     hub,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/games", srv.createGame)
	e.POST("/games/:id/join", srv.joinGame)
	e.POST("/games/:id/start", srv.startGame)
	e.POST("/games/:id/stake", srv.submitStake)
	e.GET("/games/open", srv.listOpen)
	e.GET("/games/:id", srv.getState)
	e.GET("/players/:address/games", srv.listForPlayer)
	e.POST("/seal", srv.seal)
	e.POST("/decrypt", srv.decrypt)
	e.GET("/ws", srv.events)

	go func() {
		s := make(chan os.Signal, 1)
		signal.Notify(s, os.Interrupt, syscall.SIGTERM)
		<-s
		slog.Info("shutting down")
		os.Exit(0)
	}()

	e.Logger.Fatal(e.Start(*addr))
}

// server serializes all state-changing calls with one mutex, standing in
// for the total order a chain imposes on transactions.
type server struct {
	mu      sync.Mutex
	arena   *contract.Arena
	enclave *fhe.Enclave
	hub     *hub
}

func callerAddress(c echo.Context) (contract.Address, error) {
	p := c.Request().Header.Get(playerHeader)
	if p == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing "+playerHeader+" header")
	}
	return contract.Address(p), nil
}

func gameID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "bad game id")
	}
	return id, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, contract.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fhe.ErrInvalidProof):
		return http.StatusBadRequest
	case errors.Is(err, fhe.ErrNotAuthorized):
		return http.StatusForbidden
	default:
		return http.StatusConflict
	}
}

func fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
}

func (s *server) createGame(c echo.Context) error {
	by, err := callerAddress(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	id := s.arena.CreateGame(by)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, map[string]uint64{"id": id})
}

func (s *server) joinGame(c echo.Context) error {
	by, err := callerAddress(c)
	if err != nil {
		return err
	}
	id, err := gameID(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	err = s.arena.JoinGame(id, by)
	s.mu.Unlock()
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *server) startGame(c echo.Context) error {
	by, err := callerAddress(c)
	if err != nil {
		return err
	}
	id, err := gameID(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	err = s.arena.StartGame(id, by)
	s.mu.Unlock()
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type stakeRequest struct {
	Ciphertext string `json:"ciphertext"`
	Proof      string `json:"proof"`
}

func (s *server) submitStake(c echo.Context) error {
	by, err := callerAddress(c)
	if err != nil {
		return err
	}
	id, err := gameID(c)
	if err != nil {
		return err
	}
	var req stakeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad body")
	}
	ct, err := base64.StdEncoding.DecodeString(req.Ciphertext)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad ciphertext encoding")
	}
	proof, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad proof encoding")
	}

	s.mu.Lock()
	err = s.arena.SubmitStake(id, by, fhe.EncryptedInput{Ciphertext: ct, Proof: proof})
	s.mu.Unlock()
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// gameView is the JSON projection of a game record; handles go out as
// hex strings.
type gameView struct {
	ID                uint64 `json:"id"`
	Creator           string `json:"creator"`
	Opponent          string `json:"opponent,omitempty"`
	Started           bool   `json:"started"`
	Round             uint32 `json:"round"`
	CreatorBalance    string `json:"creatorBalance,omitempty"`
	OpponentBalance   string `json:"opponentBalance,omitempty"`
	CreatorScore      string `json:"creatorScore,omitempty"`
	OpponentScore     string `json:"opponentScore,omitempty"`
	CreatorStake      string `json:"creatorStake,omitempty"`
	OpponentStake     string `json:"opponentStake,omitempty"`
	CreatorSubmitted  bool   `json:"creatorSubmitted"`
	OpponentSubmitted bool   `json:"opponentSubmitted"`
}

func handleHex(h fhe.Handle) string {
	if h.IsZero() {
		return ""
	}
	return h.Hex()
}

func viewOf(g contract.Game) gameView {
	return gameView{
		ID:                g.ID,
		Creator:           string(g.Creator),
		Opponent:          string(g.Opponent),
		Started:           g.Started,
		Round:             g.Round,
		CreatorBalance:    handleHex(g.CreatorBalance),
		OpponentBalance:   handleHex(g.OpponentBalance),
		CreatorScore:      handleHex(g.CreatorScore),
		OpponentScore:     handleHex(g.OpponentScore),
		CreatorStake:      handleHex(g.CreatorStake),
		OpponentStake:     handleHex(g.OpponentStake),
		CreatorSubmitted:  g.CreatorSubmitted,
		OpponentSubmitted: g.OpponentSubmitted,
	}
}

func (s *server) getState(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	g, err := s.arena.GetState(id)
	s.mu.Unlock()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(g))
}

func (s *server) listOpen(c echo.Context) error {
	s.mu.Lock()
	ids := s.arena.ListOpen()
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string][]uint64{"games": ids})
}

func (s *server) listForPlayer(c echo.Context) error {
	p := contract.Address(c.Param("address"))
	s.mu.Lock()
	ids := s.arena.ListForPlayer(p)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string][]uint64{"games": ids})
}

type sealRequest struct {
	Value uint32 `json:"value"`
}

// seal stands in for the client-side encryption library: it produces a
// ciphertext+proof pair bound to the caller and the contract.
func (s *server) seal(c echo.Context) error {
	by, err := callerAddress(c)
	if err != nil {
		return err
	}
	var req sealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad body")
	}
	in := s.enclave.SealInput(req.Value, fhe.InputContext{
		Contract: contract.ContractID,
		Sender:   string(by),
	})
	return c.JSON(http.StatusOK, stakeRequest{
		Ciphertext: base64.StdEncoding.EncodeToString(in.Ciphertext),
		Proof:      base64.StdEncoding.EncodeToString(in.Proof),
	})
}

type decryptRequest struct {
	Handle string `json:"handle"`
}

func (s *server) decrypt(c echo.Context) error {
	by, err := callerAddress(c)
	if err != nil {
		return err
	}
	var req decryptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad body")
	}
	raw, err := hex.DecodeString(req.Handle)
	if err != nil || len(raw) != fhe.HandleSize {
		return echo.NewHTTPError(http.StatusBadRequest, "bad handle")
	}
	var h fhe.Handle
	copy(h[:], raw)

	v, err := s.enclave.Decrypt(h, string(by))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]uint32{"value": v})
}

func (s *server) events(c echo.Context) error {
	websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()
		ch := s.hub.subscribe()
		defer s.hub.unsubscribe(ch)
		for msg := range ch {
			if err := websocket.Message.Send(ws, string(msg)); err != nil {
				return
			}
		}
	}).ServeHTTP(c.Response(), c.Request())
	return nil
}

// hub fans contract events out to websocket subscribers. It implements
// contract.EventSink; a slow subscriber drops events rather than block
// the contract call that emitted them.
type hub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan []byte]struct{})}
}

func (h *hub) Emit(e contract.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		slog.Error("marshal event", "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *hub) subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}
