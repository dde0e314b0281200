package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dunelords/dune-server-go/internal/auth"
	"github.com/dunelords/dune-server-go/internal/battle"
	"github.com/dunelords/dune-server-go/internal/config"
	"github.com/dunelords/dune-server-go/internal/game"
)

// responseTimeout bounds how long the gateway waits for one agent answer
// before the engine's non-response path takes over.
const responseTimeout = 60 * time.Second

// Gateway accepts websocket connections from faction agents and relays
// battle phase requests and responses between them and the engine.
type Gateway struct {
	cfg      *config.Config
	logger   *zap.Logger
	verifier *auth.Verifier
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	agents map[game.Faction]*agentConn

	runner     *PhaseRunner
	httpServer *http.Server
}

type agentConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// envelope is the wire frame exchanged with agents.
type envelope struct {
	Type     string                `json:"type"`
	Request  *battle.AgentRequest  `json:"request,omitempty"`
	Response *battle.AgentResponse `json:"response,omitempty"`
	Events   []battle.Event        `json:"events,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// New creates the gateway.
func New(cfg *config.Config, logger *zap.Logger) *Gateway {
	return &Gateway{
		cfg:      cfg,
		logger:   logger,
		verifier: auth.NewVerifier(cfg.Auth.TokenHashes),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		agents: make(map[game.Faction]*agentConn),
	}
}

// SetRunner installs the phase runner served by the /battle-phase endpoint.
func (g *Gateway) SetRunner(r *PhaseRunner) {
	g.runner = r
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (g *Gateway) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/agent", g.handleAgent)
	mux.HandleFunc("/battle-phase", g.handleBattlePhase)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	g.httpServer = &http.Server{Addr: g.cfg.Server.Addr(), Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- g.httpServer.ListenAndServe()
	}()
	g.logger.Info("agent gateway listening", zap.String("addr", g.cfg.Server.Addr()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return g.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (g *Gateway) handleAgent(w http.ResponseWriter, r *http.Request) {
	faction, err := game.ParseFaction(r.URL.Query().Get("faction"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("X-Agent-Token")
	}
	if err := g.verifier.Verify(faction, token); err != nil {
		g.logger.Warn("agent authentication failed",
			zap.String("faction", string(faction)),
			zap.Error(err),
		)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	g.mu.Lock()
	if old, ok := g.agents[faction]; ok {
		old.conn.Close()
	}
	g.agents[faction] = &agentConn{conn: conn}
	g.mu.Unlock()

	g.logger.Info("agent connected", zap.String("faction", string(faction)))
}

// handleBattlePhase runs one full battle phase for the posted game state,
// relaying decisions through the connected agents, and returns the stepped
// state with the event stream.
func (g *Gateway) handleBattlePhase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if g.runner == nil {
		http.Error(w, "battle phase runner not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		GameID string      `json:"gameId"`
		State  *game.State `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.State == nil {
		http.Error(w, "missing game state", http.StatusBadRequest)
		return
	}
	// The server's configured rule set is authoritative for every game it
	// hosts; whatever the posted state carries is overwritten.
	req.State.Config.AdvancedCombat = g.cfg.Game.AdvancedCombat

	finalState, events, err := g.runner.Run(r.Context(), req.GameID, req.State)
	if err != nil {
		g.logger.Error("battle phase failed",
			zap.String("game_id", req.GameID),
			zap.Error(err),
		)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		State  *game.State    `json:"state"`
		Events []battle.Event `json:"events"`
	}{State: finalState, Events: events})
}

func (g *Gateway) agent(f game.Faction) (*agentConn, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.agents[f]
	return c, ok
}

func (g *Gateway) dropAgent(f game.Faction, c *agentConn) {
	g.mu.Lock()
	if g.agents[f] == c {
		delete(g.agents, f)
	}
	g.mu.Unlock()
	c.conn.Close()
}

// ask sends one request to the faction's agent and waits for the answer.
// A missing agent, timeout or transport error yields (nil, false): the
// engine treats the absence as a pass.
func (g *Gateway) ask(f game.Faction, req battle.AgentRequest) (*battle.AgentResponse, bool) {
	c, ok := g.agent(f)
	if !ok {
		g.logger.Debug("no agent connected, defaulting",
			zap.String("faction", string(f)),
			zap.String("request_type", string(req.Type)),
		)
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(responseTimeout))
	if err := c.conn.WriteJSON(envelope{Type: "request", Request: &req}); err != nil {
		g.logger.Warn("agent write failed", zap.String("faction", string(f)), zap.Error(err))
		g.dropAgent(f, c)
		return nil, false
	}

	c.conn.SetReadDeadline(time.Now().Add(responseTimeout))
	var env envelope
	if err := c.conn.ReadJSON(&env); err != nil {
		g.logger.Warn("agent read failed", zap.String("faction", string(f)), zap.Error(err))
		g.dropAgent(f, c)
		return nil, false
	}
	if env.Response == nil {
		return nil, false
	}
	env.Response.Faction = f
	return env.Response, true
}

// broadcastEvents pushes the step's event stream to every connected agent.
func (g *Gateway) broadcastEvents(events []battle.Event) {
	if len(events) == 0 {
		return
	}
	g.mu.RLock()
	conns := make(map[game.Faction]*agentConn, len(g.agents))
	for f, c := range g.agents {
		conns[f] = c
	}
	g.mu.RUnlock()

	for f, c := range conns {
		c.mu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteJSON(envelope{Type: "events", Events: events}); err != nil {
			g.logger.Warn("event broadcast failed", zap.String("faction", string(f)), zap.Error(err))
		}
		c.mu.Unlock()
	}
}

// Collect gathers responses for one step's pending requests. Sequential
// requests are asked one at a time; simultaneous requests are all written
// before any answer content is examined, so neither combatant's plan leaks.
func (g *Gateway) Collect(requests []battle.AgentRequest, simultaneous bool) []battle.AgentResponse {
	var responses []battle.AgentResponse
	if simultaneous {
		type answer struct {
			resp *battle.AgentResponse
			ok   bool
		}
		answers := make([]answer, len(requests))
		var wg sync.WaitGroup
		for i, req := range requests {
			wg.Add(1)
			go func(i int, req battle.AgentRequest) {
				defer wg.Done()
				resp, ok := g.ask(req.Faction, req)
				answers[i] = answer{resp: resp, ok: ok}
			}(i, req)
		}
		wg.Wait()
		for _, a := range answers {
			if a.ok {
				responses = append(responses, *a.resp)
			}
		}
		return responses
	}
	for _, req := range requests {
		if resp, ok := g.ask(req.Faction, req); ok {
			responses = append(responses, *resp)
		}
	}
	return responses
}

// ConnectedFactions lists the factions with a live agent, for diagnostics.
func (g *Gateway) ConnectedFactions() []game.Faction {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]game.Faction, 0, len(g.agents))
	for f := range g.agents {
		out = append(out, f)
	}
	return out
}
