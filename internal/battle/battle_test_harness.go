package battle

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/dunelords/dune-server-go/internal/game"
)

// BattleTestHarness provides utilities for setting up and running battle
// phase tests against the step-driven engine.
type BattleTestHarness struct {
	t      *testing.T
	engine *Engine
	res    *StepResult
	events []Event
}

// NewBattleTestHarness creates a harness and runs the first step, so the
// harness is already suspended on the phase's first requests (or complete
// when the board holds no battles).
func NewBattleTestHarness(t *testing.T, st *game.State) *BattleTestHarness {
	h := &BattleTestHarness{
		t:      t,
		engine: NewEngine(zaptest.NewLogger(t)),
	}
	h.stepWith(st, nil)
	return h
}

// NewDuelState builds a minimal two-faction state with one contested
// territory. The aggressor is seated to precede the defender in storm order.
func NewDuelState(aggressor, defender game.Faction, territory string, sector int, aRegular, aElite, dRegular, dElite int) *game.State {
	st := game.NewState(map[game.Faction]int{
		aggressor: 1,
		defender:  5,
	})
	st.StormSector = 17
	ts := game.TerritorySector{Territory: territory, Sector: sector}
	st.AddForces(aggressor, ts, aRegular, aElite)
	st.AddForces(defender, ts, dRegular, dElite)
	st.Factions[aggressor].Spice = 10
	st.Factions[defender].Spice = 10
	return st
}

func (h *BattleTestHarness) stepWith(st *game.State, responses []AgentResponse) {
	res, err := h.engine.ProcessStep(st, responses)
	if err != nil {
		h.t.Fatalf("ProcessStep failed: %v", err)
	}
	h.res = res
	h.events = append(h.events, res.Events...)
}

// Step feeds responses to the engine and advances it.
func (h *BattleTestHarness) Step(responses ...AgentResponse) {
	h.stepWith(h.res.State, responses)
}

// State returns the latest stepped game state.
func (h *BattleTestHarness) State() *game.State {
	return h.res.State
}

// Requests returns the requests the engine is currently suspended on.
func (h *BattleTestHarness) Requests() []AgentRequest {
	return h.res.Requests
}

// Complete reports whether the phase has finished.
func (h *BattleTestHarness) Complete() bool {
	return h.res.Complete
}

// Events returns the accumulated event stream across all steps so far.
func (h *BattleTestHarness) Events() []Event {
	return h.events
}

// CurrentBattle returns the battle in progress, or nil between battles.
func (h *BattleTestHarness) CurrentBattle() *Battle {
	return h.engine.Context().Current
}

// RequestFor finds the pending request addressed to f.
func (h *BattleTestHarness) RequestFor(f game.Faction) (AgentRequest, bool) {
	for _, req := range h.res.Requests {
		if req.Faction == f {
			return req, true
		}
	}
	return AgentRequest{}, false
}

// AdvanceTo steps the engine, settling every intermediate request as a pass,
// until a request of the given type is pending. Fails the test if the phase
// completes first.
func (h *BattleTestHarness) AdvanceTo(rt RequestType) []AgentRequest {
	for i := 0; i < 100; i++ {
		var match []AgentRequest
		for _, req := range h.res.Requests {
			if req.Type == rt {
				match = append(match, req)
			}
		}
		if len(match) > 0 {
			return match
		}
		if h.res.Complete {
			h.t.Fatalf("phase completed before reaching a %s request", rt)
		}
		h.Step()
	}
	h.t.Fatalf("never reached a %s request", rt)
	return nil
}

// RunToCompletion steps with no responses until the phase completes, so
// every remaining decision settles as a pass or default.
func (h *BattleTestHarness) RunToCompletion() {
	for i := 0; i < 200; i++ {
		if h.res.Complete {
			return
		}
		h.Step()
	}
	h.t.Fatal("phase did not complete")
}

// PlanResponse builds a CREATE_BATTLE_PLAN response for f.
func (h *BattleTestHarness) PlanResponse(f game.Faction, data map[string]any) AgentResponse {
	return AgentResponse{Faction: f, Action: ActionCreateBattlePlan, Data: data}
}

// PassResponse builds an explicit pass for f.
func (h *BattleTestHarness) PassResponse(f game.Faction) AgentResponse {
	return AgentResponse{Faction: f, Action: ActionPass, Passed: true}
}

// SubmitPlans advances to the plan sub-phase and submits both sides' plans.
func (h *BattleTestHarness) SubmitPlans(aggressorPlan, defenderPlan map[string]any) {
	h.AdvanceTo(RequestCreateBattlePlan)
	b := h.CurrentBattle()
	h.Step(
		h.PlanResponse(b.Aggressor, aggressorPlan),
		h.PlanResponse(b.Defender, defenderPlan),
	)
}

// FindEvent returns the first accumulated event of the given type.
func (h *BattleTestHarness) FindEvent(t EventType) (Event, bool) {
	for _, ev := range h.events {
		if ev.Type == t {
			return ev, true
		}
	}
	return Event{}, false
}

// AssertEvent asserts that an event of the given type was emitted.
func (h *BattleTestHarness) AssertEvent(t EventType) Event {
	ev, ok := h.FindEvent(t)
	if !ok {
		h.t.Errorf("expected a %s event, got none", t)
	}
	return ev
}

// AssertNoEvent asserts that no event of the given type was emitted.
func (h *BattleTestHarness) AssertNoEvent(t EventType) {
	if ev, ok := h.FindEvent(t); ok {
		h.t.Errorf("expected no %s event, got %q", t, ev.Message)
	}
}

// AssertComplete asserts the phase has finished.
func (h *BattleTestHarness) AssertComplete() {
	if !h.res.Complete {
		h.t.Errorf("expected the battle phase to be complete")
	}
}

// AssertForces asserts a faction's exact stack at a location.
func (h *BattleTestHarness) AssertForces(f game.Faction, ts game.TerritorySector, regular, elite int) {
	stack := h.State().ForcesAt(f, ts)
	if stack.Regular != regular || stack.Elite != elite {
		h.t.Errorf("expected %s forces at %s sector %d to be %d/%d, got %d/%d",
			f, ts.Territory, ts.Sector, regular, elite, stack.Regular, stack.Elite)
	}
}

// AssertSpice asserts a faction's spice total.
func (h *BattleTestHarness) AssertSpice(f game.Faction, expected int) {
	actual := h.State().Factions[f].Spice
	if actual != expected {
		h.t.Errorf("expected %s to hold %d spice, got %d", f, expected, actual)
	}
}

// AssertLeaderLocation asserts where a leader disc sits.
func (h *BattleTestHarness) AssertLeaderLocation(f game.Faction, leaderID string, loc game.LeaderLocation) {
	ls := h.State().Leader(f, leaderID)
	if ls == nil {
		h.t.Fatalf("%s has no leader %s", f, leaderID)
	}
	if ls.Location != loc {
		h.t.Errorf("expected %s to be %s, got %s", leaderID, loc, ls.Location)
	}
}

// AssertHandContains asserts a card is in the faction's hand.
func (h *BattleTestHarness) AssertHandContains(f game.Faction, cardID string) {
	if !h.State().HasCard(f, cardID) {
		h.t.Errorf("expected %s to hold %s, hand is %v", f, cardID, h.State().Factions[f].Hand)
	}
}

// AssertHandMissing asserts a card has left the faction's hand.
func (h *BattleTestHarness) AssertHandMissing(f game.Faction, cardID string) {
	if h.State().HasCard(f, cardID) {
		h.t.Errorf("expected %s to no longer hold %s", f, cardID)
	}
}

// AssertWinner asserts the current (or last resolved) battle's winner.
func (h *BattleTestHarness) AssertWinner(b *Battle, expected game.Faction) {
	if b.Result == nil {
		h.t.Fatal("battle has no result")
	}
	if b.Result.Winner != expected {
		h.t.Errorf("expected %s to win, got %q", expected, b.Result.Winner)
	}
}
