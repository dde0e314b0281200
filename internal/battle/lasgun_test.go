package battle

import (
	"testing"

	"github.com/dunelords/dune-server-go/internal/game"
)

func TestLasgunShield_DestroysEverythingInTheTerritory(t *testing.T) {
	st := NewDuelState(game.Atreides, game.Harkonnen, "Imperial Basin", 9, 6, 0, 6, 0)
	st.Factions[game.Atreides].Hand = []string{"lasgun"}
	st.Factions[game.Harkonnen].Hand = []string{"shield"}
	// Forces in another sector of the same territory burn too.
	otherSector := game.TerritorySector{Territory: "Imperial Basin", Sector: 10}
	st.AddForces(game.Harkonnen, otherSector, 3, 0)
	h := NewBattleTestHarness(t, st)
	loc := game.TerritorySector{Territory: "Imperial Basin", Sector: 9}

	h.SubmitPlans(
		map[string]any{"leaderId": "lady-jessica", "forcesDialed": 2, "weaponCard": "lasgun"},
		map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 2, "defenseCard": "shield"},
	)
	b := h.CurrentBattle()
	h.RunToCompletion()

	h.AssertEvent(EventLasgunShieldExplosion)
	if !b.Result.LasgunShield {
		t.Fatal("expected a lasgun-shield result")
	}
	if b.Result.Winner != "" || b.Result.Loser != "" {
		t.Errorf("expected no winner, got %q / %q", b.Result.Winner, b.Result.Loser)
	}

	h.AssertForces(game.Atreides, loc, 0, 0)
	h.AssertForces(game.Harkonnen, loc, 0, 0)
	h.AssertForces(game.Harkonnen, otherSector, 0, 0)

	h.AssertLeaderLocation(game.Atreides, "lady-jessica", game.LeaderInTanks)
	h.AssertLeaderLocation(game.Harkonnen, "feyd-rautha", game.LeaderInTanks)

	// Both sides' played cards are discarded; nobody collects spice.
	h.AssertHandMissing(game.Atreides, "lasgun")
	h.AssertHandMissing(game.Harkonnen, "shield")
	h.AssertNoEvent(EventSpiceCollected)
	h.AssertComplete()
}

func TestLasgunShield_SameSideCombinationStillExplodes(t *testing.T) {
	st := NewDuelState(game.Atreides, game.Harkonnen, "Imperial Basin", 9, 6, 0, 6, 0)
	st.Factions[game.Atreides].Hand = []string{"lasgun", "shield"}
	h := NewBattleTestHarness(t, st)

	h.SubmitPlans(
		map[string]any{"leaderId": "lady-jessica", "forcesDialed": 2, "weaponCard": "lasgun", "defenseCard": "shield"},
		map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 2},
	)
	h.RunToCompletion()

	h.AssertEvent(EventLasgunShieldExplosion)
}

func TestLasgunShield_SnooperDoesNotTrigger(t *testing.T) {
	st := NewDuelState(game.Atreides, game.Harkonnen, "Imperial Basin", 9, 6, 0, 6, 0)
	st.Factions[game.Atreides].Hand = []string{"lasgun"}
	st.Factions[game.Harkonnen].Hand = []string{"snooper"}
	h := NewBattleTestHarness(t, st)

	h.SubmitPlans(
		map[string]any{"leaderId": "lady-jessica", "forcesDialed": 2, "weaponCard": "lasgun"},
		map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 2, "defenseCard": "snooper"},
	)
	h.RunToCompletion()

	h.AssertNoEvent(EventLasgunShieldExplosion)
	// Nothing counters a lasgun; the snooper is the wrong category anyway.
	h.AssertLeaderLocation(game.Harkonnen, "feyd-rautha", game.LeaderInTanks)
}
