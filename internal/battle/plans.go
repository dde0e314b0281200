package battle

import (
	"fmt"

	"github.com/dunelords/dune-server-go/internal/game"
)

// Response payloads arrive in two shapes: a structured {"plan": {...}} object
// or the same fields flat on the data map. normalizePlan is the single
// adapter boundary; everything past it sees only the canonical BattlePlan.
func normalizePlan(data map[string]any) (*BattlePlan, error) {
	if data == nil {
		return nil, fmt.Errorf("empty battle plan payload")
	}
	if nested, ok := asMap(data["plan"]); ok {
		data = nested
	}

	plan := &BattlePlan{
		ForcesDialed:      asInt(data["forcesDialed"]),
		SpiceDialed:       asInt(data["spiceDialed"]),
		WeaponCard:        asString(data["weaponCard"]),
		DefenseCard:       asString(data["defenseCard"]),
		KwisatzHaderach:   asBool(data["kwisatzHaderach"]),
		AnnouncedNoLeader: asBool(data["announcedNoLeader"]),
	}

	leaderID := asString(data["leaderId"])
	cheapHero := asString(data["cheapHero"])
	if cheapHero == "" && asBool(data["cheapHeroUsed"]) {
		cheapHero = "cheap-hero"
	}
	switch {
	case leaderID != "" && cheapHero != "":
		// Surfaced as a validation error, not a parse failure; keep the
		// leader disc so validation reports the conflict coherently.
		plan.Leader = WithLeader(leaderID)
		return plan, fmt.Errorf("leader and cheap hero are mutually exclusive")
	case leaderID != "":
		plan.Leader = WithLeader(leaderID)
	case cheapHero != "":
		plan.Leader = WithCheapHero(cheapHero)
	default:
		plan.Leader = NoLeader()
	}
	return plan, nil
}

// defaultPlan computes the conservative fallback plan: the weakest usable
// leader when one must be fielded, half the available dial, no cards, no
// spice. Validating its output against the same state never fails, so any
// error path still yields a playable battle.
func defaultPlan(st *game.State, b *Battle, f game.Faction) *BattlePlan {
	plan := &BattlePlan{}
	usable := availableLeaders(st, f, b.Territory)
	if len(usable) > 0 {
		plan.Leader = WithLeader(weakestLeader(usable))
	} else {
		plan.Leader = NoLeader()
		plan.AnnouncedNoLeader = true
	}
	plan.ForcesDialed = maxDial(st, f, b.Opponent(f), b.Location()) / 2
	return plan
}

// checkPrescienceCommitment verifies a submitted plan against the element f
// pre-committed under prescience. A non-nil error names the mismatch.
func checkPrescienceCommitment(b *Battle, f game.Faction, plan *BattlePlan) error {
	p := b.Prescience
	if !p.Used || p.Opponent != f || p.Result == nil {
		return nil
	}
	r := p.Result
	switch r.Type {
	case PrescienceLeader:
		leaderID, _ := plan.Leader.LeaderID()
		if leaderID != r.LeaderID {
			return fmt.Errorf("committed to leader %q, fielded %q", r.LeaderID, leaderID)
		}
	case PrescienceWeapon:
		if r.NotPlaying {
			if plan.WeaponCard != "" {
				return fmt.Errorf("committed to playing no weapon, played %s", plan.WeaponCard)
			}
		} else if plan.WeaponCard != r.CardID {
			return fmt.Errorf("committed to weapon %s, played %q", r.CardID, plan.WeaponCard)
		}
	case PrescienceDefense:
		if r.NotPlaying {
			if plan.DefenseCard != "" {
				return fmt.Errorf("committed to playing no defense, played %s", plan.DefenseCard)
			}
		} else if plan.DefenseCard != r.CardID {
			return fmt.Errorf("committed to defense %s, played %q", r.CardID, plan.DefenseCard)
		}
	case PrescienceNumber:
		if plan.ForcesDialed != r.Forces || plan.SpiceDialed != r.Spice {
			return fmt.Errorf("committed to dialing %d forces and %d spice, dialed %d and %d",
				r.Forces, r.Spice, plan.ForcesDialed, plan.SpiceDialed)
		}
	}
	return nil
}

// --- loose payload coercion helpers ---

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asInt accepts the numeric types JSON decoding and test fixtures produce.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
