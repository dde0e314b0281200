package battle

import "github.com/dunelords/dune-server-go/internal/game"

// dialedForces walks f's stack in consumption order (elites first) until the
// dial is covered, returning the total strength contributed and the token
// split consumed. Under advanced combat, each consumed token must be backed
// by one dialed spice to count at full value; unsupported tokens count half.
// The Fremen are exempt and always count full.
func dialedForces(st *game.State, f, opponent game.Faction, ts game.TerritorySector, dial, spice int) (strength float64, regular, elite int) {
	stack := st.ForcesAt(f, ts)
	mult := eliteMultiplier(f, opponent)
	supportFree := !st.Config.AdvancedCombat || f == game.Fremen

	remaining := dial
	spiceLeft := spice
	consume := func(value int) {
		covered := value
		if covered > remaining {
			covered = remaining
		}
		contribution := float64(covered)
		if !supportFree {
			if spiceLeft > 0 {
				spiceLeft--
			} else {
				contribution /= 2
			}
		}
		strength += contribution
		remaining -= value
	}

	for elite < stack.Elite && remaining >= mult {
		elite++
		consume(mult)
	}
	for regular < stack.Regular && remaining > 0 {
		regular++
		consume(1)
	}
	// A final elite absorbs any leftover points when no regulars remain.
	if remaining > 0 && elite < stack.Elite {
		elite++
		consume(mult)
	}
	return strength, regular, elite
}

// planStrength is the side's battle total: dialed force strength plus leader
// strength, plus the Kwisatz Haderach bonus when fielded.
func planStrength(st *game.State, b *Battle, f game.Faction, plan *BattlePlan) float64 {
	forces, _, _ := dialedForces(st, f, b.Opponent(f), b.Location(), plan.ForcesDialed, plan.SpiceDialed)
	total := forces + float64(plan.Leader.Strength())
	if plan.KwisatzHaderach {
		total += 2
	}
	return total
}
