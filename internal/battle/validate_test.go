package battle

import (
	"testing"

	"github.com/dunelords/dune-server-go/internal/game"
)

func validationState(t *testing.T) (*game.State, *Battle) {
	t.Helper()
	st := NewDuelState(game.Atreides, game.Harkonnen, "Arrakeen", 9, 6, 0, 4, 0)
	st.Factions[game.Atreides].Hand = []string{"crysknife", "cheap-hero"}
	return st, newBattle("Arrakeen", 9, game.Atreides, game.Harkonnen)
}

func hasCode(errs []ValidationError, code string) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestValidateBattlePlan_ForcesOutOfRange(t *testing.T) {
	st, b := validationState(t)
	plan := &BattlePlan{Leader: WithLeader("lady-jessica"), ForcesDialed: 99}

	errs := validateBattlePlan(st, b, game.Atreides, plan)
	if !hasCode(errs, CodeForcesOutOfRange) {
		t.Errorf("expected FORCES_OUT_OF_RANGE, got %v", errs)
	}
}

func TestValidateBattlePlan_SpiceOutOfRange(t *testing.T) {
	st, b := validationState(t)
	plan := &BattlePlan{Leader: WithLeader("lady-jessica"), SpiceDialed: 999}

	errs := validateBattlePlan(st, b, game.Atreides, plan)
	if !hasCode(errs, CodeSpiceOutOfRange) {
		t.Errorf("expected SPICE_OUT_OF_RANGE, got %v", errs)
	}
}

func TestValidateBattlePlan_LeaderOwnership(t *testing.T) {
	st, b := validationState(t)

	// Another faction's leader.
	errs := validateBattlePlan(st, b, game.Atreides, &BattlePlan{Leader: WithLeader("feyd-rautha")})
	if !hasCode(errs, CodeLeaderUnavailable) {
		t.Errorf("expected LEADER_UNAVAILABLE for a foreign leader, got %v", errs)
	}

	// A leader in the tanks.
	st.KillLeader(game.Atreides, "lady-jessica")
	errs = validateBattlePlan(st, b, game.Atreides, &BattlePlan{Leader: WithLeader("lady-jessica")})
	if !hasCode(errs, CodeLeaderUnavailable) {
		t.Errorf("expected LEADER_UNAVAILABLE for a dead leader, got %v", errs)
	}
}

func TestValidateBattlePlan_DedicatedLeaderRule(t *testing.T) {
	st, b := validationState(t)
	st.Leader(game.Atreides, "lady-jessica").FoughtTerritory = "Carthag"

	errs := validateBattlePlan(st, b, game.Atreides, &BattlePlan{Leader: WithLeader("lady-jessica")})
	if !hasCode(errs, CodeLeaderCommitted) {
		t.Errorf("expected LEADER_COMMITTED_ELSEWHERE, got %v", errs)
	}

	// The same disc may fight again in the territory it already fought in.
	st.Leader(game.Atreides, "lady-jessica").FoughtTerritory = "Arrakeen"
	errs = validateBattlePlan(st, b, game.Atreides, &BattlePlan{Leader: WithLeader("lady-jessica")})
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateBattlePlan_LeaderRequiredWhileAvailable(t *testing.T) {
	st, b := validationState(t)

	errs := validateBattlePlan(st, b, game.Atreides, &BattlePlan{AnnouncedNoLeader: true})
	if !hasCode(errs, CodeLeaderRequired) {
		t.Errorf("expected LEADER_REQUIRED, got %v", errs)
	}
}

func TestValidateBattlePlan_NoLeaderMustBeAnnounced(t *testing.T) {
	st, b := validationState(t)
	for _, id := range game.LeadersOf(game.Atreides) {
		st.KillLeader(game.Atreides, id)
	}

	errs := validateBattlePlan(st, b, game.Atreides, &BattlePlan{})
	if !hasCode(errs, CodeNoLeaderUnannounced) {
		t.Errorf("expected NO_LEADER_UNANNOUNCED, got %v", errs)
	}

	errs = validateBattlePlan(st, b, game.Atreides, &BattlePlan{AnnouncedNoLeader: true})
	if len(errs) != 0 {
		t.Errorf("expected an announced leaderless plan to pass, got %v", errs)
	}
}

func TestValidateBattlePlan_CardChecks(t *testing.T) {
	st, b := validationState(t)
	jessica := WithLeader("lady-jessica")

	// A weapon the faction does not hold.
	errs := validateBattlePlan(st, b, game.Atreides, &BattlePlan{Leader: jessica, WeaponCard: "lasgun"})
	if !hasCode(errs, CodeCardNotHeld) {
		t.Errorf("expected CARD_NOT_HELD, got %v", errs)
	}

	// A defense slot holding a weapon card.
	errs = validateBattlePlan(st, b, game.Atreides, &BattlePlan{Leader: jessica, DefenseCard: "crysknife"})
	if !hasCode(errs, CodeNotADefense) {
		t.Errorf("expected NOT_A_DEFENSE, got %v", errs)
	}

	// Treachery without a leader slot.
	for _, id := range game.LeadersOf(game.Atreides) {
		st.KillLeader(game.Atreides, id)
	}
	errs = validateBattlePlan(st, b, game.Atreides, &BattlePlan{
		AnnouncedNoLeader: true,
		WeaponCard:        "crysknife",
	})
	if !hasCode(errs, CodeTreacheryNeedsLeader) {
		t.Errorf("expected TREACHERY_WITHOUT_LEADER, got %v", errs)
	}
}

func TestValidateBattlePlan_CheapHero(t *testing.T) {
	st, b := validationState(t)

	// A held Cheap Hero card satisfies the leader requirement and carries
	// treachery cards.
	plan := &BattlePlan{Leader: WithCheapHero("cheap-hero"), WeaponCard: "crysknife"}
	if errs := validateBattlePlan(st, b, game.Atreides, plan); len(errs) != 0 {
		t.Errorf("expected a cheap hero plan to pass, got %v", errs)
	}

	// The card must actually be in hand.
	if errs := validateBattlePlan(st, b, game.Harkonnen, &BattlePlan{Leader: WithCheapHero("cheap-hero")}); !hasCode(errs, CodeCardNotHeld) {
		t.Errorf("expected CARD_NOT_HELD for an unheld cheap hero, got %v", errs)
	}
}

func TestValidateBattlePlan_KwisatzHaderach(t *testing.T) {
	st, b := validationState(t)
	jessica := WithLeader("lady-jessica")

	// Not activated yet.
	errs := validateBattlePlan(st, b, game.Atreides, &BattlePlan{Leader: jessica, KwisatzHaderach: true})
	if !hasCode(errs, CodeKwisatzUnavailable) {
		t.Errorf("expected KWISATZ_HADERACH_UNAVAILABLE before activation, got %v", errs)
	}

	// Activated and accompanied by a leader.
	st.Factions[game.Atreides].KwisatzHaderach = true
	errs = validateBattlePlan(st, b, game.Atreides, &BattlePlan{Leader: jessica, KwisatzHaderach: true})
	if len(errs) != 0 {
		t.Errorf("expected an activated token to pass, got %v", errs)
	}

	// Never available to another faction.
	errs = validateBattlePlan(st, b, game.Harkonnen, &BattlePlan{Leader: WithLeader("feyd-rautha"), KwisatzHaderach: true})
	if !hasCode(errs, CodeKwisatzUnavailable) {
		t.Errorf("expected KWISATZ_HADERACH_UNAVAILABLE for Harkonnen, got %v", errs)
	}
}

func TestDefaultPlan_AlwaysValidates(t *testing.T) {
	st, b := validationState(t)

	for _, f := range []game.Faction{game.Atreides, game.Harkonnen} {
		plan := defaultPlan(st, b, f)
		if errs := validateBattlePlan(st, b, f, plan); len(errs) != 0 {
			t.Errorf("default plan for %s failed validation: %v", f, errs)
		}
	}

	// Still valid with every leader dead.
	for _, id := range game.LeadersOf(game.Atreides) {
		st.KillLeader(game.Atreides, id)
	}
	plan := defaultPlan(st, b, game.Atreides)
	if !plan.AnnouncedNoLeader || !plan.Leader.None() {
		t.Errorf("expected an announced leaderless default, got %+v", plan)
	}
	if errs := validateBattlePlan(st, b, game.Atreides, plan); len(errs) != 0 {
		t.Errorf("leaderless default plan failed validation: %v", errs)
	}
}

func TestDefaultPlan_PicksWeakestLeaderAndHalfDial(t *testing.T) {
	st, b := validationState(t)

	plan := defaultPlan(st, b, game.Atreides)
	if id, _ := plan.Leader.LeaderID(); id != "dr-yueh" {
		t.Errorf("expected the weakest leader dr-yueh, got %s", id)
	}
	if plan.ForcesDialed != 3 {
		t.Errorf("expected half of 6 forces dialed, got %d", plan.ForcesDialed)
	}
	if plan.SpiceDialed != 0 || plan.WeaponCard != "" || plan.DefenseCard != "" {
		t.Errorf("expected a bare default plan, got %+v", plan)
	}
}

func TestEngine_InvalidPlanFallsBackToDefault(t *testing.T) {
	st := NewDuelState(game.Atreides, game.Harkonnen, "Arrakeen", 9, 6, 0, 4, 0)
	h := NewBattleTestHarness(t, st)
	loc := game.TerritorySector{Territory: "Arrakeen", Sector: 9}

	h.SubmitPlans(
		map[string]any{"leaderId": "lady-jessica", "forcesDialed": 99},
		map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 0},
	)
	h.RunToCompletion()

	h.AssertEvent(EventBattlePlanInvalid)
	// Atreides fall back to dr-yueh (1) dialing 3 against feyd-rautha (6):
	// Harkonnen win and Atreides lose their whole stack.
	h.AssertForces(game.Atreides, loc, 0, 0)
	h.AssertForces(game.Harkonnen, loc, 4, 0)
}

func TestEngine_LeaderAndCheapHeroConflictRejected(t *testing.T) {
	st := NewDuelState(game.Atreides, game.Harkonnen, "Arrakeen", 9, 6, 0, 4, 0)
	st.Factions[game.Atreides].Hand = []string{"cheap-hero"}
	h := NewBattleTestHarness(t, st)

	h.SubmitPlans(
		map[string]any{"leaderId": "lady-jessica", "cheapHero": "cheap-hero", "forcesDialed": 2},
		map[string]any{"leaderId": "feyd-rautha", "forcesDialed": 0},
	)
	h.RunToCompletion()

	h.AssertEvent(EventBattlePlanInvalid)
}
