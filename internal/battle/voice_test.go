package battle

import (
	"testing"

	"github.com/dunelords/dune-server-go/internal/game"
)

func voiceDuel(t *testing.T) *BattleTestHarness {
	t.Helper()
	st := NewDuelState(game.BeneGesserit, game.Harkonnen, "Wind Pass", 13, 6, 0, 6, 0)
	st.Factions[game.Harkonnen].Hand = []string{"crysknife", "chaumas"}
	return NewBattleTestHarness(t, st)
}

func TestVoice_ForbidCommandCompliance(t *testing.T) {
	h := voiceDuel(t)

	reqs := h.AdvanceTo(RequestUseVoice)
	if reqs[0].Faction != game.BeneGesserit {
		t.Fatalf("expected the Voice prompt for the Bene Gesserit, got %s", reqs[0].Faction)
	}
	h.Step(AgentResponse{
		Faction: game.BeneGesserit,
		Action:  ActionUseVoice,
		Data:    map[string]any{"mustPlay": false, "kind": "weapon", "category": "PROJECTILE"},
	})
	h.AssertEvent(EventVoiceUsed)

	// The commanded side's plan prompt names the command.
	planReqs := h.AdvanceTo(RequestCreateBattlePlan)
	for _, req := range planReqs {
		if req.Faction == game.Harkonnen && req.Context["voiceCommand"] == nil {
			t.Error("expected the plan request to carry the voice command")
		}
	}

	// Harkonnen comply by playing the poison weapon instead.
	h.Step(
		h.PlanResponse(game.BeneGesserit, map[string]any{"leaderId": "alia", "forcesDialed": 2}),
		h.PlanResponse(game.Harkonnen, map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 0, "weaponCard": "chaumas"}),
	)
	h.RunToCompletion()

	h.AssertEvent(EventVoiceComplied)
	h.AssertNoEvent(EventVoiceViolation)
}

func TestVoice_ViolationIsInformationalOnly(t *testing.T) {
	h := voiceDuel(t)

	h.AdvanceTo(RequestUseVoice)
	h.Step(AgentResponse{
		Faction: game.BeneGesserit,
		Action:  ActionUseVoice,
		Data:    map[string]any{"mustPlay": false, "kind": "weapon", "category": "PROJECTILE"},
	})

	h.AdvanceTo(RequestCreateBattlePlan)
	h.Step(
		h.PlanResponse(game.BeneGesserit, map[string]any{"leaderId": "alia", "forcesDialed": 2}),
		h.PlanResponse(game.Harkonnen, map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 0, "weaponCard": "crysknife"}),
	)
	h.RunToCompletion()

	h.AssertEvent(EventVoiceViolation)
	// The defiant plan still resolves: the forbidden weapon kills.
	h.AssertLeaderLocation(game.BeneGesserit, "alia", game.LeaderInTanks)
}

func TestVoice_MustPlayCommand(t *testing.T) {
	h := voiceDuel(t)

	h.AdvanceTo(RequestUseVoice)
	h.Step(AgentResponse{
		Faction: game.BeneGesserit,
		Action:  ActionUseVoice,
		Data:    map[string]any{"mustPlay": true, "kind": "weapon", "category": "POISON"},
	})

	h.AdvanceTo(RequestCreateBattlePlan)
	h.Step(
		h.PlanResponse(game.BeneGesserit, map[string]any{"leaderId": "alia", "forcesDialed": 2}),
		h.PlanResponse(game.Harkonnen, map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 0}),
	)
	h.RunToCompletion()

	// Playing nothing violates a must-play command.
	h.AssertEvent(EventVoiceViolation)
}

func TestVoice_PassLeavesNoCommand(t *testing.T) {
	h := voiceDuel(t)

	h.AdvanceTo(RequestUseVoice)
	h.Step(h.PassResponse(game.BeneGesserit))
	h.RunToCompletion()

	h.AssertNoEvent(EventVoiceUsed)
	h.AssertNoEvent(EventVoiceComplied)
	h.AssertNoEvent(EventVoiceViolation)
	h.AssertComplete()
}

func TestVoice_AllyDelegation(t *testing.T) {
	st := game.NewState(map[game.Faction]int{
		game.BeneGesserit: 1,
		game.Fremen:       5,
		game.Harkonnen:    9,
	})
	st.StormSector = 17
	loc := game.TerritorySector{Territory: "Wind Pass", Sector: 13}
	st.AddForces(game.Fremen, loc, 5, 0)
	st.AddForces(game.Harkonnen, loc, 5, 0)
	st.Factions[game.Fremen].Spice = 5
	st.Factions[game.Harkonnen].Spice = 5
	st.Factions[game.BeneGesserit].Ally = game.Fremen
	st.Factions[game.Fremen].Ally = game.BeneGesserit

	h := NewBattleTestHarness(t, st)
	reqs := h.AdvanceTo(RequestUseVoice)
	if reqs[0].Faction != game.BeneGesserit {
		t.Fatalf("expected the off-board Bene Gesserit to receive the prompt, got %s", reqs[0].Faction)
	}
	if target := reqs[0].Context["target"]; target != string(game.Harkonnen) {
		t.Errorf("expected the command aimed at Harkonnen, got %v", target)
	}
}
