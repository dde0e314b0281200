package battle

import (
	"fmt"

	"github.com/dunelords/dune-server-go/internal/game"
)

// abilityHolder resolves who may use a faction ability in this battle and
// whose plan it applies to. A non-combatant holder may use the ability on
// behalf of an allied combatant, against the partner's opponent.
func abilityHolder(st *game.State, b *Battle, holder game.Faction) (target game.Faction, ok bool) {
	if _, in := st.Factions[holder]; !in {
		return "", false
	}
	switch {
	case holder == b.Aggressor:
		return b.Defender, true
	case holder == b.Defender:
		return b.Aggressor, true
	case st.Allied(holder, b.Aggressor):
		return b.Defender, true
	case st.Allied(holder, b.Defender):
		return b.Aggressor, true
	}
	return "", false
}

// parseVoiceCommand reads the Voice payload. Accepted shapes:
//
//	{"mustPlay": true, "kind": "weapon", "category": "POISON"}
//	{"mustPlay": false, "kind": "defense"}
func parseVoiceCommand(data map[string]any) (VoiceCommand, error) {
	cmd := VoiceCommand{MustPlay: asBool(data["mustPlay"])}
	switch asString(data["kind"]) {
	case "weapon":
		cmd.Kind = game.KindWeapon
	case "defense":
		cmd.Kind = game.KindDefense
	default:
		return cmd, fmt.Errorf("voice command needs kind weapon or defense, got %q", asString(data["kind"]))
	}
	switch asString(data["category"]) {
	case "":
		cmd.Category = game.CategoryNone
	case "PROJECTILE":
		cmd.Category = game.CategoryProjectile
	case "POISON":
		cmd.Category = game.CategoryPoison
	default:
		return cmd, fmt.Errorf("unknown voice category %q", asString(data["category"]))
	}
	return cmd, nil
}

func (c VoiceCommand) describe() string {
	verb := "must not play"
	if c.MustPlay {
		verb = "must play"
	}
	kind := "a weapon"
	if c.Kind == game.KindDefense {
		kind = "a defense"
	}
	if c.Category != game.CategoryNone {
		return fmt.Sprintf("%s %s of class %s", verb, kind, c.Category)
	}
	return fmt.Sprintf("%s %s", verb, kind)
}

// voiceComplies diffs the voiced side's plan against the command.
func voiceComplies(cmd VoiceCommand, plan *BattlePlan) bool {
	var cardID string
	if cmd.Kind == game.KindWeapon {
		cardID = plan.WeaponCard
	} else {
		cardID = plan.DefenseCard
	}
	played := false
	if c, ok := game.LookupCard(cardID); ok {
		played = cmd.Category == game.CategoryNone || c.Category == cmd.Category
	}
	return played == cmd.MustPlay
}

// parsePrescienceTarget reads the element the seeing faction probes.
func parsePrescienceTarget(data map[string]any) (PrescienceTarget, error) {
	t := PrescienceTarget(asString(data["target"]))
	switch t {
	case PrescienceLeader, PrescienceWeapon, PrescienceDefense, PrescienceNumber:
		return t, nil
	}
	return "", fmt.Errorf("unknown prescience target %q", asString(data["target"]))
}

// parsePrescienceReveal reads the opponent's committed element. A missing or
// passed answer commits to the conservative default for the probed element:
// "not playing" for cards, no leader disc, a zero number.
func parsePrescienceReveal(target PrescienceTarget, data map[string]any) *PrescienceResult {
	r := &PrescienceResult{Type: target}
	switch target {
	case PrescienceLeader:
		r.LeaderID = asString(data["leaderId"])
	case PrescienceWeapon, PrescienceDefense:
		if asBool(data["notPlaying"]) || asString(data["cardId"]) == "" {
			r.NotPlaying = true
		} else {
			r.CardID = asString(data["cardId"])
		}
	case PrescienceNumber:
		r.Forces = asInt(data["forces"])
		r.Spice = asInt(data["spice"])
	}
	return r
}

// eligibleTraitorCaller reports whether f can call traitor on the opponent's
// revealed leader.
func eligibleTraitorCaller(st *game.State, b *Battle, f game.Faction) bool {
	opp := b.Opponent(f)
	plan := b.PlanOf(opp)
	if plan == nil {
		return false
	}
	leaderID, fielded := plan.Leader.LeaderID()
	if !fielded {
		return false
	}
	return st.HoldsTraitor(f, leaderID)
}
