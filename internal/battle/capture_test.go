package battle

import (
	"testing"

	"github.com/dunelords/dune-server-go/internal/game"
)

func captureDuel(t *testing.T) *BattleTestHarness {
	t.Helper()
	st := NewDuelState(game.Harkonnen, game.Atreides, "Carthag", 10, 8, 0, 3, 0)
	st.Factions[game.Harkonnen].Hand = []string{"chaumas"}
	h := NewBattleTestHarness(t, st)

	h.SubmitPlans(
		map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 4, "weaponCard": "chaumas"},
		map[string]any{"leaderId": "duncan-idaho", "forcesDialed": 1},
	)
	return h
}

func TestCapture_HarkonnenMayCaptureInsteadOfKilling(t *testing.T) {
	h := captureDuel(t)

	reqs := h.AdvanceTo(RequestCaptureLeaderChoice)
	if reqs[0].Faction != game.Harkonnen {
		t.Fatalf("expected the capture choice for Harkonnen, got %s", reqs[0].Faction)
	}
	if reqs[0].Context["leaderId"] != "duncan-idaho" {
		t.Errorf("expected duncan-idaho offered, got %v", reqs[0].Context["leaderId"])
	}

	h.Step(AgentResponse{Faction: game.Harkonnen, Action: ActionCaptureLeader})
	h.RunToCompletion()

	h.AssertEvent(EventLeaderCaptured)
	h.AssertLeaderLocation(game.Atreides, "duncan-idaho", game.LeaderCaptured)
	ls := h.State().Leader(game.Atreides, "duncan-idaho")
	if ls.CapturedBy != game.Harkonnen || ls.Bounty != 2 {
		t.Errorf("expected capture by Harkonnen with bounty 2, got %s / %d", ls.CapturedBy, ls.Bounty)
	}

	// Capturing forfeits the kill payout.
	h.AssertSpice(game.Harkonnen, 10)
}

func TestCapture_KillingCollectsThePayout(t *testing.T) {
	h := captureDuel(t)

	h.AdvanceTo(RequestCaptureLeaderChoice)
	h.Step(AgentResponse{Faction: game.Harkonnen, Action: ActionKillLeader})
	h.RunToCompletion()

	h.AssertEvent(EventLeaderKilled)
	h.AssertLeaderLocation(game.Atreides, "duncan-idaho", game.LeaderInTanks)
	h.AssertSpice(game.Harkonnen, 12)
}

func TestCapture_PassDefaultsToKilling(t *testing.T) {
	h := captureDuel(t)

	h.AdvanceTo(RequestCaptureLeaderChoice)
	h.RunToCompletion()

	h.AssertLeaderLocation(game.Atreides, "duncan-idaho", game.LeaderInTanks)
	h.AssertSpice(game.Harkonnen, 12)
}

func TestCapture_BountyPaidWhenCaptiveDies(t *testing.T) {
	h := captureDuel(t)

	h.AdvanceTo(RequestCaptureLeaderChoice)
	h.Step(AgentResponse{Faction: game.Harkonnen, Action: ActionCaptureLeader})
	h.RunToCompletion()

	st := h.State()
	r := &BattleResult{Winner: game.Atreides}
	log := &eventLog{}
	killLeader(st, r, game.Atreides, "duncan-idaho", "treachery", log)

	if st.Factions[game.Harkonnen].Spice != 12 {
		t.Errorf("expected the captor paid the 2 spice bounty, got %d", st.Factions[game.Harkonnen].Spice)
	}
	if len(EventsOfType(log.events, EventSpiceCollected)) == 0 {
		t.Error("expected a bounty collection event")
	}
}

func TestCapture_NotOfferedForHarkonnenLeaders(t *testing.T) {
	st := NewDuelState(game.Atreides, game.Harkonnen, "Carthag", 10, 8, 0, 3, 0)
	st.Factions[game.Atreides].Hand = []string{"chaumas"}
	h := NewBattleTestHarness(t, st)

	h.SubmitPlans(
		map[string]any{"leaderId": "lady-jessica", "forcesDialed": 4, "weaponCard": "chaumas"},
		map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 1},
	)
	h.RunToCompletion()

	// A non-Harkonnen winner just kills.
	h.AssertNoEvent(EventLeaderCaptured)
	h.AssertLeaderLocation(game.Harkonnen, "feyd-rautha", game.LeaderInTanks)
	h.AssertComplete()
}
