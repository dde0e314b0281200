package battle

import (
	"sort"

	"github.com/dunelords/dune-server-go/internal/game"
)

// PhaseContext is the engine-wide state of the battle phase: the ordered
// pending battle queue, the battle currently in progress, and its sub-phase.
type PhaseContext struct {
	PendingBattles     []*Battle
	CurrentBattleIndex int
	Current            *Battle
	SubPhase           SubPhase

	AggressorOrder        []game.Faction
	CurrentAggressorIndex int

	// awaiting holds the requests emitted by the previous step; they are
	// settled (response or default) at the start of the next step.
	awaiting        []AgentRequest
	simultaneous    bool
	completeEmitted bool
}

// await suspends the context on the given requests.
func (c *PhaseContext) await(simultaneous bool, reqs ...AgentRequest) {
	c.awaiting = append(c.awaiting, reqs...)
	c.simultaneous = simultaneous
}

// Done reports the phase terminal condition.
func (c *PhaseContext) Done() bool {
	return c.CurrentBattleIndex >= len(c.PendingBattles)
}

// identifyBattles scans the board for every territory sector where two
// non-allied factions both have forces, outside the storm and the Polar
// Sink. Battles are ordered by the aggressor's storm-order precedence.
func identifyBattles(st *game.State) []*Battle {
	order := st.StormOrder()
	rank := make(map[game.Faction]int, len(order))
	for i, f := range order {
		rank[f] = i
	}

	present := make(map[game.TerritorySector][]game.Faction)
	for f, fs := range st.Factions {
		for ts, stack := range fs.Forces {
			if stack.Empty() {
				continue
			}
			present[ts] = append(present[ts], f)
		}
	}

	var battles []*Battle
	for ts, factions := range present {
		if len(factions) < 2 || ts.Territory == game.PolarSink || st.UnderStorm(ts) {
			continue
		}
		sort.Slice(factions, func(i, j int) bool {
			return rank[factions[i]] < rank[factions[j]]
		})
		for i := 0; i < len(factions); i++ {
			for j := i + 1; j < len(factions); j++ {
				if st.Allied(factions[i], factions[j]) {
					continue
				}
				battles = append(battles, newBattle(ts.Territory, ts.Sector, factions[i], factions[j]))
			}
		}
	}

	// Deterministic queue order: aggressor precedence first, then board
	// position for a stable tie-break.
	sort.Slice(battles, func(i, j int) bool {
		a, b := battles[i], battles[j]
		if rank[a.Aggressor] != rank[b.Aggressor] {
			return rank[a.Aggressor] < rank[b.Aggressor]
		}
		if a.Territory != b.Territory {
			return a.Territory < b.Territory
		}
		return a.Sector < b.Sector
	})
	return battles
}

// newPhaseContext builds the context for a fresh battle phase.
func newPhaseContext(st *game.State) *PhaseContext {
	return &PhaseContext{
		PendingBattles: identifyBattles(st),
		AggressorOrder: st.StormOrder(),
	}
}

// candidateBattles returns the still-live pending battles whose aggressor is
// f, from the current index on.
func (c *PhaseContext) candidateBattles(st *game.State, f game.Faction) []*Battle {
	var out []*Battle
	for _, b := range c.PendingBattles[c.CurrentBattleIndex:] {
		if b.Aggressor == f && battleLive(st, b) {
			out = append(out, b)
		}
	}
	return out
}

// battleLive reports whether both sides still have forces at the contested
// location; earlier battles may have emptied a stack.
func battleLive(st *game.State, b *Battle) bool {
	return !st.ForcesAt(b.Aggressor, b.Location()).Empty() &&
		!st.ForcesAt(b.Defender, b.Location()).Empty()
}

// selectBattle moves b to the current queue position and makes it the
// current battle.
func (c *PhaseContext) selectBattle(b *Battle) {
	for i := c.CurrentBattleIndex; i < len(c.PendingBattles); i++ {
		if c.PendingBattles[i] == b {
			c.PendingBattles[c.CurrentBattleIndex], c.PendingBattles[i] =
				c.PendingBattles[i], c.PendingBattles[c.CurrentBattleIndex]
			break
		}
	}
	c.Current = b
}

// advanceBattle discards the finished current battle and moves the cursor.
func (c *PhaseContext) advanceBattle() {
	c.Current = nil
	c.CurrentBattleIndex++
}
