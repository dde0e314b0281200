package battle

import "github.com/dunelords/dune-server-go/internal/game"

// leaderChoiceKind tags the LeaderChoice variant.
type leaderChoiceKind int

const (
	leaderNone leaderChoiceKind = iota
	leaderDisc
	leaderCheapHero
)

// LeaderChoice is the leader slot of a battle plan. It distinguishes "no
// leader fielded" from a leader disc or a Cheap Hero card, which are mutually
// exclusive by construction.
type LeaderChoice struct {
	kind leaderChoiceKind
	id   string // leader ID or cheap hero card ID
}

// NoLeader returns the empty leader slot.
func NoLeader() LeaderChoice { return LeaderChoice{} }

// WithLeader fields the given leader disc.
func WithLeader(leaderID string) LeaderChoice {
	return LeaderChoice{kind: leaderDisc, id: leaderID}
}

// WithCheapHero fields a Cheap Hero card in place of a leader.
func WithCheapHero(cardID string) LeaderChoice {
	return LeaderChoice{kind: leaderCheapHero, id: cardID}
}

// None reports whether no leader or substitute was fielded.
func (c LeaderChoice) None() bool { return c.kind == leaderNone }

// LeaderID returns the fielded leader disc, if any.
func (c LeaderChoice) LeaderID() (string, bool) {
	if c.kind == leaderDisc {
		return c.id, true
	}
	return "", false
}

// CheapHero returns the fielded Cheap Hero card, if any.
func (c LeaderChoice) CheapHero() (string, bool) {
	if c.kind == leaderCheapHero {
		return c.id, true
	}
	return "", false
}

// Strength returns the table strength the slot contributes: the leader's
// printed strength, or 0 for a Cheap Hero or an empty slot.
func (c LeaderChoice) Strength() int {
	if c.kind == leaderDisc {
		return game.LeaderStrength(c.id)
	}
	return 0
}

func (c LeaderChoice) String() string {
	switch c.kind {
	case leaderDisc:
		return c.id
	case leaderCheapHero:
		return "cheap-hero:" + c.id
	default:
		return "none"
	}
}

// BattlePlan is one faction's sealed commitment for a battle. Plans start nil
// on the Battle and become non-nil exactly once, from a valid response or the
// deterministic default.
type BattlePlan struct {
	Leader LeaderChoice
	// ForcesDialed is the dial number: the strength committed from the
	// faction's stack. Elite tokens cover 2 points of the dial.
	ForcesDialed int
	// SpiceDialed backs dialed tokens under the advanced combat rule.
	SpiceDialed int
	// WeaponCard and DefenseCard are treachery card IDs, "" when not played.
	WeaponCard  string
	DefenseCard string
	// KwisatzHaderach adds +2 strength once the token has been activated.
	KwisatzHaderach bool
	// AnnouncedNoLeader must be set when the faction fields neither a
	// leader nor a Cheap Hero.
	AnnouncedNoLeader bool
}

// PlayedCards lists every treachery card the plan commits, Cheap Hero
// included.
func (p *BattlePlan) PlayedCards() []string {
	var cards []string
	if id, ok := p.Leader.CheapHero(); ok {
		cards = append(cards, id)
	}
	if p.WeaponCard != "" {
		cards = append(cards, p.WeaponCard)
	}
	if p.DefenseCard != "" {
		cards = append(cards, p.DefenseCard)
	}
	return cards
}

// describe flattens the plan for event payloads and reveal prompts.
func (p *BattlePlan) describe() map[string]any {
	leaderID, _ := p.Leader.LeaderID()
	cheapHero, _ := p.Leader.CheapHero()
	return map[string]any{
		"leaderId":          leaderID,
		"cheapHero":         cheapHero,
		"forcesDialed":      p.ForcesDialed,
		"spiceDialed":       p.SpiceDialed,
		"weaponCard":        p.WeaponCard,
		"defenseCard":       p.DefenseCard,
		"kwisatzHaderach":   p.KwisatzHaderach,
		"announcedNoLeader": p.AnnouncedNoLeader,
	}
}
