package battle

import (
	"fmt"
	"strings"

	"github.com/dunelords/dune-server-go/internal/game"
)

// ValidationError describes a single rule violation inside a submitted plan
// or choice. Validation never aborts the game: the offending input is
// replaced by a deterministic default and the errors are surfaced as an
// event.
type ValidationError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validation error codes.
const (
	CodeForcesOutOfRange      = "FORCES_OUT_OF_RANGE"
	CodeSpiceOutOfRange       = "SPICE_OUT_OF_RANGE"
	CodeLeaderUnavailable     = "LEADER_UNAVAILABLE"
	CodeLeaderCommitted       = "LEADER_COMMITTED_ELSEWHERE"
	CodeLeaderAndCheapHero    = "LEADER_AND_CHEAP_HERO"
	CodeLeaderRequired        = "LEADER_REQUIRED"
	CodeNoLeaderUnannounced   = "NO_LEADER_UNANNOUNCED"
	CodeAnnouncedWithLeader   = "ANNOUNCED_WITH_LEADER"
	CodeCardNotHeld           = "CARD_NOT_HELD"
	CodeNotAWeapon            = "NOT_A_WEAPON"
	CodeNotADefense           = "NOT_A_DEFENSE"
	CodeTreacheryNeedsLeader  = "TREACHERY_WITHOUT_LEADER"
	CodeKwisatzUnavailable    = "KWISATZ_HADERACH_UNAVAILABLE"
)

func errorSummary(errs []ValidationError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// eliteMultiplier is the dial/loss value of one elite token. Sardaukar lose
// their edge against the Fremen.
func eliteMultiplier(f, opponent game.Faction) int {
	if f == game.Emperor && opponent == game.Fremen {
		return 1
	}
	return 2
}

// maxDial is the highest dial number f can commit at the battle location.
func maxDial(st *game.State, f, opponent game.Faction, ts game.TerritorySector) int {
	stack := st.ForcesAt(f, ts)
	return stack.Regular + stack.Elite*eliteMultiplier(f, opponent)
}

// availableLeaders returns f's leader discs that may fight in territory this
// turn: available discs, or on-board discs already fighting there. A disc
// that fought in a different territory this turn is excluded (dedicated
// leader rule).
func availableLeaders(st *game.State, f game.Faction, territory string) []string {
	fs, ok := st.Factions[f]
	if !ok {
		return nil
	}
	var out []string
	for id, ls := range fs.Leaders {
		if leaderUsable(ls, territory) {
			out = append(out, id)
		}
	}
	return out
}

func leaderUsable(ls *game.LeaderState, territory string) bool {
	switch ls.Location {
	case game.LeaderAvailable:
		return ls.FoughtTerritory == "" || ls.FoughtTerritory == territory
	case game.LeaderOnBoard:
		return ls.Territory == territory
	}
	return false
}

// validateBattlePlan runs the full plan rulebook for f's plan in battle b.
// An empty slice means the plan is playable as submitted.
func validateBattlePlan(st *game.State, b *Battle, f game.Faction, plan *BattlePlan) []ValidationError {
	var errs []ValidationError
	fs, ok := st.Factions[f]
	if !ok {
		return []ValidationError{{
			Code:    CodeLeaderRequired,
			Message: fmt.Sprintf("faction %s is not in the game", f),
			Field:   "faction",
		}}
	}

	opponent := b.Opponent(f)
	dialCap := maxDial(st, f, opponent, b.Location())
	if plan.ForcesDialed < 0 || plan.ForcesDialed > dialCap {
		errs = append(errs, ValidationError{
			Code:       CodeForcesOutOfRange,
			Message:    fmt.Sprintf("forces dialed %d outside [0, %d]", plan.ForcesDialed, dialCap),
			Field:      "forcesDialed",
			Suggestion: fmt.Sprintf("dial between 0 and %d", dialCap),
		})
	}
	if plan.SpiceDialed < 0 || plan.SpiceDialed > fs.Spice {
		errs = append(errs, ValidationError{
			Code:       CodeSpiceOutOfRange,
			Message:    fmt.Sprintf("spice dialed %d outside [0, %d]", plan.SpiceDialed, fs.Spice),
			Field:      "spiceDialed",
			Suggestion: fmt.Sprintf("pay between 0 and %d spice", fs.Spice),
		})
	}

	usable := availableLeaders(st, f, b.Territory)

	if leaderID, fielded := plan.Leader.LeaderID(); fielded {
		if plan.AnnouncedNoLeader {
			errs = append(errs, ValidationError{
				Code:    CodeAnnouncedWithLeader,
				Message: "announced no leader but fielded " + leaderID,
				Field:   "announcedNoLeader",
			})
		}
		_, known := game.LookupLeader(leaderID)
		switch {
		case !known || st.Leader(f, leaderID) == nil:
			errs = append(errs, ValidationError{
				Code:    CodeLeaderUnavailable,
				Message: fmt.Sprintf("%s does not command leader %s", f, leaderID),
				Field:   "leaderId",
			})
		default:
			ls := st.Leader(f, leaderID)
			if ls == nil || !leaderUsable(ls, b.Territory) {
				code := CodeLeaderUnavailable
				msg := fmt.Sprintf("leader %s is not available", leaderID)
				if ls != nil && ls.FoughtTerritory != "" && ls.FoughtTerritory != b.Territory {
					code = CodeLeaderCommitted
					msg = fmt.Sprintf("leader %s already fought in %s this turn", leaderID, ls.FoughtTerritory)
				}
				errs = append(errs, ValidationError{
					Code:       code,
					Message:    msg,
					Field:      "leaderId",
					Suggestion: suggestLeader(usable),
				})
			}
		}
	} else if cardID, fielded := plan.Leader.CheapHero(); fielded {
		if !game.IsCheapHero(cardID) {
			errs = append(errs, ValidationError{
				Code:    CodeCardNotHeld,
				Message: cardID + " is not a Cheap Hero card",
				Field:   "cheapHero",
			})
		} else if !st.HasCard(f, cardID) {
			errs = append(errs, ValidationError{
				Code:    CodeCardNotHeld,
				Message: fmt.Sprintf("%s does not hold %s", f, cardID),
				Field:   "cheapHero",
			})
		}
	} else {
		// No leader disc and no Cheap Hero.
		if len(usable) > 0 {
			errs = append(errs, ValidationError{
				Code:       CodeLeaderRequired,
				Message:    "a leader must be fielded while one is available",
				Field:      "leaderId",
				Suggestion: suggestLeader(usable),
			})
		} else if !plan.AnnouncedNoLeader {
			errs = append(errs, ValidationError{
				Code:       CodeNoLeaderUnannounced,
				Message:    "fighting without a leader must be announced",
				Field:      "announcedNoLeader",
				Suggestion: "set announcedNoLeader",
			})
		}
	}

	hasLeaderSlot := !plan.Leader.None()
	if plan.WeaponCard != "" {
		if !game.IsWeapon(plan.WeaponCard) {
			errs = append(errs, ValidationError{
				Code:    CodeNotAWeapon,
				Message: plan.WeaponCard + " is not a weapon card",
				Field:   "weaponCard",
			})
		} else if !st.HasCard(f, plan.WeaponCard) {
			errs = append(errs, ValidationError{
				Code:    CodeCardNotHeld,
				Message: fmt.Sprintf("%s does not hold %s", f, plan.WeaponCard),
				Field:   "weaponCard",
			})
		}
		if !hasLeaderSlot {
			errs = append(errs, ValidationError{
				Code:    CodeTreacheryNeedsLeader,
				Message: "treachery cards require a leader or Cheap Hero",
				Field:   "weaponCard",
			})
		}
	}
	if plan.DefenseCard != "" {
		if !game.IsDefense(plan.DefenseCard) {
			errs = append(errs, ValidationError{
				Code:    CodeNotADefense,
				Message: plan.DefenseCard + " is not a defense card",
				Field:   "defenseCard",
			})
		} else if !st.HasCard(f, plan.DefenseCard) {
			errs = append(errs, ValidationError{
				Code:    CodeCardNotHeld,
				Message: fmt.Sprintf("%s does not hold %s", f, plan.DefenseCard),
				Field:   "defenseCard",
			})
		}
		if !hasLeaderSlot {
			errs = append(errs, ValidationError{
				Code:    CodeTreacheryNeedsLeader,
				Message: "treachery cards require a leader or Cheap Hero",
				Field:   "defenseCard",
			})
		}
	}

	if plan.KwisatzHaderach {
		switch {
		case f != game.Atreides:
			errs = append(errs, ValidationError{
				Code:    CodeKwisatzUnavailable,
				Message: "only the Atreides command the Kwisatz Haderach",
				Field:   "kwisatzHaderach",
			})
		case !fs.KwisatzHaderach:
			errs = append(errs, ValidationError{
				Code:       CodeKwisatzUnavailable,
				Message:    "the Kwisatz Haderach has not been activated",
				Field:      "kwisatzHaderach",
				Suggestion: "activate by losing 7 forces in battle first",
			})
		case !hasLeaderSlot:
			errs = append(errs, ValidationError{
				Code:    CodeKwisatzUnavailable,
				Message: "the Kwisatz Haderach accompanies a leader or Cheap Hero",
				Field:   "kwisatzHaderach",
			})
		}
	}

	return errs
}

func suggestLeader(usable []string) string {
	if len(usable) == 0 {
		return ""
	}
	return "field " + weakestLeader(usable)
}

// weakestLeader is deterministic: lowest strength, then lexicographic ID.
func weakestLeader(ids []string) string {
	weakest := ids[0]
	for _, id := range ids[1:] {
		s, w := game.LeaderStrength(id), game.LeaderStrength(weakest)
		if s < w || (s == w && id < weakest) {
			weakest = id
		}
	}
	return weakest
}
