// impostorbox game sessions
//
// A game is one pass-the-device session, addressed by an 8-char ID. The
// browser on the device is only a renderer: it sends every button press and
// text edit over a websocket and redraws whatever state comes back.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - One hub goroutine per game owns the impostor.Session and applies
//   intents strictly in arrival order
// - Every socket on a game gets the rendered view after each intent
// - Start-game validation errors go only to the socket that pressed start
// - Games auto-reaped after configurable idle timeout
// - QR code of the game URL, backed by go-qrcode

package main

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/impostorbox/games/impostor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// ClientMessage is an intent coming from the browser.
type ClientMessage struct {
	Type  string `json:"type"`            // intent kind, see impostor.DecodeIntent
	Text  string `json:"text,omitempty"`  // edit_* intents
	Index int    `json:"index,omitempty"` // edit_name / select
}

// StateMessage carries everything the current screen needs.
type StateMessage struct {
	Type           string          `json:"type"` // "state"
	Game           string          `json:"game"`
	Screen         impostor.Screen `json:"screen"`
	View           impostor.View   `json:"view"`
	RemainingWords int             `json:"remaining_words"`
}

// ErrorMessage is sent to a single client when its intent was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

type intentRequest struct {
	client *Client
	intent impostor.Intent
}

type Hub struct {
	id      string
	clients map[*Client]bool
	session impostor.Session
	src     impostor.Source

	register chan *Client
	unreg    chan *Client
	intents  chan intentRequest
	done     chan struct{}
	stop     sync.Once

	mu         sync.RWMutex
	lastActive time.Time
}

func newHub(gameID string, setup impostor.Setup, src impostor.Source) *Hub {
	return &Hub{
		id:         gameID,
		clients:    make(map[*Client]bool),
		session:    impostor.NewSession(setup),
		src:        src,
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		intents:    make(chan intentRequest),
		done:       make(chan struct{}),
		lastActive: time.Now(),
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// run is the only goroutine that reads or replaces h.session and h.clients.
func (h *Hub) run(cfg *Config) {
	defer h.disconnectAll()

	for {
		select {
		case c := <-h.register:
			h.touch()
			h.clients[c] = true
			h.sendTo(c, h.stateMessage())

		case c := <-h.unreg:
			h.touch()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case req := <-h.intents:
			h.handleIntent(cfg, req)

		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleIntent(cfg *Config, req intentRequest) {
	h.touch()

	before := h.session.Screen

	next, err := impostor.Apply(h.session, req.intent, h.src)
	if err != nil {
		logf(cfg, "GAMES: Rejected %s in %s: %v", req.intent.Kind(), h.id, err)

		h.sendTo(req.client, ErrorMessage{
			Type:    "error",
			Message: userMessage(err),
		})

		return
	}
	h.session = next

	if before != next.Screen {
		logf(cfg, "GAMES: %s moved from %s to %s on %s", h.id, before, next.Screen, req.intent.Kind())
	}

	h.broadcast(h.stateMessage())
}

func (h *Hub) stateMessage() StateMessage {
	return StateMessage{
		Type:           "state",
		Game:           h.id,
		Screen:         h.session.Screen,
		View:           impostor.Render(h.session),
		RemainingWords: h.session.AvailableWords(),
	}
}

// sendTo drops the client when its buffer is full rather than block the hub.
func (h *Hub) sendTo(c *Client, msg any) {
	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(msg any) {
	for client := range h.clients {
		h.sendTo(client, msg)
	}
}

func (h *Hub) disconnectAll() {
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

// Close ends the hub; run disconnects its clients on the way out.
func (h *Hub) Close() {
	h.stop.Do(func() {
		close(h.done)
	})
}

// submit hands a message to the hub, giving up once the hub is closed.
func submit[T any](h *Hub, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, impostor.ErrInvalidPlayers):
		return "Invalid number of players. Choose between 3 and 20."
	case errors.Is(err, impostor.ErrInvalidImpostors):
		return "Invalid number of impostors. There must be at least one, and fewer than the players."
	case errors.Is(err, impostor.ErrEmptyWordPool):
		return "Enter at least one keyword."
	}

	return "That action is not available right now."
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	setup       impostor.Setup
	src         impostor.Source
	done        chan struct{}
	stop        sync.Once
}

func newGameManager(idleTimeout time.Duration, setup impostor.Setup, src impostor.Source) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		setup:       setup,
		src:         src,
		done:        make(chan struct{}),
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(gameID, gm.setup, gm.src)
	gm.hubs[gameID] = hub
	go hub.run(cfg)
	return hub
}

// newGameID returns an unused 8-char ID cut from a random UUID.
func (gm *GameManager) newGameID() string {
	for {
		id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.reap(time.Now().Add(-gm.idleTimeout))
		case <-gm.done:
			return
		}
	}
}

func (gm *GameManager) reap(cutoff time.Time) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		if hub.idleSince().Before(cutoff) {
			delete(gm.hubs, id)
			hub.Close()
		}
	}
}

// Close stops the reaper and ends every game.
func (gm *GameManager) Close() {
	gm.stop.Do(func() {
		close(gm.done)
	})

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.Close()
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		hub := gm.getHub(cfg, gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
		}

		if !submit(hub, hub.register, client) {
			_ = conn.Close()
			return
		}

		logf(cfg, "GAMES: Client %s connected to %s", realIP(r), gameID)

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		submit(h, h.unreg, c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		in, err := impostor.DecodeIntent(msg.Type, msg.Text, msg.Index)
		if err != nil {
			// ignore unknown types
			continue
		}

		if !submit(h, h.intents, intentRequest{client: c, intent: in}) {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func serveGamePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/impostor/index.html")
		if err != nil {
			errs <- err
			http.Error(w, "game page missing", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		if _, err := w.Write(data); err != nil {
			errs <- err
		}
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerImpostorGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerImpostorGame(cfg *Config, path string, mux *httprouter.Router, errs chan<- error) *GameManager {
	gm := newGameManager(cfg.sessionTimeout, cfg.setup, impostor.DefaultSource)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", serveGamePage(cfg, errs))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)

	return gm
}
