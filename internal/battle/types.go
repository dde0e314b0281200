package battle

import (
	"github.com/google/uuid"

	"github.com/dunelords/dune-server-go/internal/game"
)

// PrescienceTarget is the plan element an opponent can be forced to
// pre-commit.
type PrescienceTarget string

const (
	PrescienceLeader  PrescienceTarget = "leader"
	PrescienceWeapon  PrescienceTarget = "weapon"
	PrescienceDefense PrescienceTarget = "defense"
	PrescienceNumber  PrescienceTarget = "number"
)

// PrescienceResult is the opponent's committed value for the probed element.
type PrescienceResult struct {
	Type PrescienceTarget
	// NotPlaying is the "not playing a weapon/defense" declaration.
	NotPlaying bool
	// LeaderID answers a leader probe; "" commits to fielding no leader
	// disc (a Cheap Hero still satisfies that commitment).
	LeaderID string
	// CardID answers a weapon or defense probe.
	CardID string
	// Forces and Spice answer a number probe as an exact pair.
	Forces int
	Spice  int
}

// PrescienceState tracks the ability across a battle.
type PrescienceState struct {
	Used   bool
	Holder game.Faction
	// Opponent is the faction bound by the committed element.
	Opponent game.Faction
	Target   PrescienceTarget
	Result   *PrescienceResult
	// Blocked is set once the opponent declares "not playing X"; the
	// ability cannot be re-aimed at a different element this battle.
	Blocked bool
}

// VoiceCommand is the content command issued by the Voice.
type VoiceCommand struct {
	// MustPlay commands playing the named card class; false forbids it.
	MustPlay bool
	Kind     game.CardKind
	Category game.WeaponCategory
}

// VoiceState tracks the ability across a battle.
type VoiceState struct {
	Used   bool
	Holder game.Faction
	// Target is the faction commanded by the Voice.
	Target  game.Faction
	Command VoiceCommand
}

// TraitorState tracks traitor calls for a battle.
type TraitorState struct {
	Called    bool
	CalledBy  game.Faction
	BothSides bool
}

// pendingCapture defers the kill-or-capture choice for a leader the
// Harkonnen winner struck down.
type pendingCapture struct {
	Owner    game.Faction
	LeaderID string
	Strength int
}

// Battle is the unit of combat: two factions contesting one territory
// sector. It is owned by the phase context and discarded once resolution and
// card discarding complete.
type Battle struct {
	ID        string
	Territory string
	Sector    int
	Aggressor game.Faction
	Defender  game.Faction

	AggressorPlan *BattlePlan
	DefenderPlan  *BattlePlan

	Prescience PrescienceState
	Voice      VoiceState
	Traitor    TraitorState

	Result *BattleResult

	// pendingWinnerCards are the winner's played cards awaiting the
	// keep-or-discard choice.
	pendingWinnerCards []string
	capture            *pendingCapture
	// traitorAsked tracks which sides have already answered the traitor
	// call prompt; the prompts go out one side at a time.
	traitorAsked map[game.Faction]bool
}

func newBattle(territory string, sector int, aggressor, defender game.Faction) *Battle {
	return &Battle{
		ID:        uuid.NewString(),
		Territory: territory,
		Sector:    sector,
		Aggressor: aggressor,
		Defender:  defender,
	}
}

// Location returns the contested territory sector.
func (b *Battle) Location() game.TerritorySector {
	return game.TerritorySector{Territory: b.Territory, Sector: b.Sector}
}

// Opponent returns the other combatant, or "" if f is not in the battle.
func (b *Battle) Opponent(f game.Faction) game.Faction {
	switch f {
	case b.Aggressor:
		return b.Defender
	case b.Defender:
		return b.Aggressor
	}
	return ""
}

// PlanOf returns the submitted plan for a combatant.
func (b *Battle) PlanOf(f game.Faction) *BattlePlan {
	switch f {
	case b.Aggressor:
		return b.AggressorPlan
	case b.Defender:
		return b.DefenderPlan
	}
	return nil
}

func (b *Battle) setPlan(f game.Faction, plan *BattlePlan) {
	switch f {
	case b.Aggressor:
		b.AggressorPlan = plan
	case b.Defender:
		b.DefenderPlan = plan
	}
}

// CombatantResult is one side's share of a battle result.
type CombatantResult struct {
	Faction game.Faction
	// Strength is the side's total in the comparison; half points arise
	// from unsupported forces under the advanced combat rule.
	Strength float64
	// RegularLost and EliteLost are the tokens sent to the tanks.
	RegularLost int
	EliteLost   int
	// LeaderKilled is set when the side's fielded leader died this battle.
	LeaderKilled bool
	LeaderID     string
	// SpicePaid is the dialed spice handed to the bank.
	SpicePaid int
}

// SpicePayout is a payment the winner collects for a killed leader.
type SpicePayout struct {
	To       game.Faction
	LeaderID string
	Amount   int
}

// BattleResult is computed by resolution; Winner and Loser are both "" only
// in the two-traitor and lasgun-shield outcomes.
type BattleResult struct {
	Winner          game.Faction
	Loser           game.Faction
	TraitorRevealed bool
	TwoTraitors     bool
	LasgunShield    bool
	Aggressor       CombatantResult
	Defender        CombatantResult
	SpicePayouts    []SpicePayout
}

// resultOf returns the combatant slice of the result for f.
func (r *BattleResult) resultOf(f game.Faction) *CombatantResult {
	if r.Aggressor.Faction == f {
		return &r.Aggressor
	}
	if r.Defender.Faction == f {
		return &r.Defender
	}
	return nil
}
