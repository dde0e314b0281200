package battle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dunelords/dune-server-go/internal/game"
)

// eventLog collects the ordered phase event stream for one step.
type eventLog struct {
	events []Event
	logger *zap.Logger
}

func (l *eventLog) emit(t EventType, msg string, data map[string]any) {
	l.events = append(l.events, Event{Type: t, Data: data, Message: msg})
}

// invariant records a state mutation that upstream validation should have
// made impossible. The phase continues; the caller has a bug to find.
func (l *eventLog) invariant(msg string, err error) {
	if l.logger != nil {
		l.logger.Error(msg, zap.Error(err))
	}
}

// resolveBattle runs the full resolution algorithm for the current battle:
// two-traitor check, lasgun-shield catastrophe, strength comparison, force
// losses, spice handling, leader handling, card discarding. It mutates st
// and returns the computed result, leaving the winner's optional card
// choices and the Harkonnen capture choice pending on the battle.
func resolveBattle(st *game.State, b *Battle, log *eventLog) *BattleResult {
	r := &BattleResult{
		Aggressor: CombatantResult{Faction: b.Aggressor},
		Defender:  CombatantResult{Faction: b.Defender},
	}
	b.Result = r

	switch {
	case b.Traitor.BothSides:
		resolveTwoTraitors(st, b, r, log)
	case b.Traitor.Called:
		resolveTraitorWin(st, b, r, log)
	case lasgunShieldPresent(b):
		resolveLasgunShield(st, b, r, log)
	default:
		resolveCombat(st, b, r, log)
	}

	checkKwisatzActivation(st, log)

	log.emit(EventBattleResolved,
		fmt.Sprintf("battle in %s sector %d resolved", b.Territory, b.Sector),
		map[string]any{
			"battleId":  b.ID,
			"territory": b.Territory,
			"sector":    b.Sector,
			"winner":    string(r.Winner),
			"loser":     string(r.Loser),
			"traitor":   r.TraitorRevealed,
			"lasgun":    r.LasgunShield,
		})
	return r
}

// lasgunShieldPresent reports the catastrophic combination: a lasgun and a
// shield played in the same battle, on either side.
func lasgunShieldPresent(b *Battle) bool {
	plans := []*BattlePlan{b.AggressorPlan, b.DefenderPlan}
	for _, wp := range plans {
		if wp == nil {
			continue
		}
		for _, dp := range plans {
			if dp == nil {
				continue
			}
			if game.IsLasgunShield(wp.WeaponCard, dp.DefenseCard) {
				return true
			}
		}
	}
	return false
}

// resolveCombat is the standard strength-comparison path.
func resolveCombat(st *game.State, b *Battle, r *BattleResult, log *eventLog) {
	ts := b.Location()
	r.Aggressor.Strength = planStrength(st, b, b.Aggressor, b.AggressorPlan)
	r.Defender.Strength = planStrength(st, b, b.Defender, b.DefenderPlan)

	// Ties favor the aggressor.
	if r.Aggressor.Strength >= r.Defender.Strength {
		r.Winner, r.Loser = b.Aggressor, b.Defender
	} else {
		r.Winner, r.Loser = b.Defender, b.Aggressor
	}

	// Weapons resolve on both sides before losses are applied.
	applyWeapon(st, b, r, b.Aggressor, log)
	applyWeapon(st, b, r, b.Defender, log)

	// Loser loses every force present in the territory, not just the
	// dialed amount.
	loseAllForces(st, r.Loser, b.Territory, r.resultOf(r.Loser), log)

	// Winner loses exactly the dialed number, elites absorbing 2 each.
	winPlan := b.PlanOf(r.Winner)
	_, reg, elite := dialedForces(st, r.Winner, b.Opponent(r.Winner), ts, winPlan.ForcesDialed, winPlan.SpiceDialed)
	wr := r.resultOf(r.Winner)
	wr.RegularLost, wr.EliteLost = reg, elite
	if err := st.SendForcesToTanks(r.Winner, ts, reg, elite); err != nil {
		log.invariant("winner force loss failed", err)
	}

	paySpiceDials(st, b, r, log)
	settleLeaders(st, b, r, log)
	discardLoserCards(st, b, r.Loser, log)
	collectWinnerCards(st, b, r.Winner, log)
}

// resolveTraitorWin is the single-traitor instant win: no combat math, the
// opponent's leader dies by treachery and the calling side is unharmed.
func resolveTraitorWin(st *game.State, b *Battle, r *BattleResult, log *eventLog) {
	r.TraitorRevealed = true
	r.Winner = b.Traitor.CalledBy
	r.Loser = b.Opponent(r.Winner)

	loserPlan := b.PlanOf(r.Loser)
	if leaderID, ok := loserPlan.Leader.LeaderID(); ok {
		killOrDefer(st, b, r, r.Loser, leaderID, "treachery", log)
	}

	loseAllForces(st, r.Loser, b.Territory, r.resultOf(r.Loser), log)

	// Winner keeps its dialed spice; only the loser pays.
	lr := r.resultOf(r.Loser)
	lr.SpicePaid = b.PlanOf(r.Loser).SpiceDialed
	if err := st.RemoveSpice(r.Loser, lr.SpicePaid); err != nil {
		log.invariant("loser spice payment failed", err)
	}

	payPayouts(st, r, log)
	settleSurvivors(st, b, r.Winner, log)
	discardLoserCards(st, b, r.Loser, log)
	collectWinnerCards(st, b, r.Winner, log)
}

// resolveTwoTraitors handles both sides calling traitor: no winner, no
// loser, everything both sides committed is destroyed.
func resolveTwoTraitors(st *game.State, b *Battle, r *BattleResult, log *eventLog) {
	r.TraitorRevealed = true
	r.TwoTraitors = true

	for _, f := range []game.Faction{b.Aggressor, b.Defender} {
		plan := b.PlanOf(f)
		if leaderID, ok := plan.Leader.LeaderID(); ok {
			killLeader(st, r, f, leaderID, "treachery", log)
		}
		loseAllForces(st, f, b.Territory, r.resultOf(f), log)
		cr := r.resultOf(f)
		cr.SpicePaid = plan.SpiceDialed
		if err := st.RemoveSpice(f, cr.SpicePaid); err != nil {
			log.invariant("traitor spice payment failed", err)
		}
		discardLoserCards(st, b, f, log)
	}
}

// resolveLasgunShield applies the catastrophe: all forces and fielded
// leaders of both sides in the territory are destroyed, before any normal
// loss application; there is no winner.
func resolveLasgunShield(st *game.State, b *Battle, r *BattleResult, log *eventLog) {
	r.LasgunShield = true
	log.emit(EventLasgunShieldExplosion,
		fmt.Sprintf("lasgun-shield explosion in %s", b.Territory),
		map[string]any{"territory": b.Territory, "sector": b.Sector})

	for _, f := range []game.Faction{b.Aggressor, b.Defender} {
		plan := b.PlanOf(f)
		if leaderID, ok := plan.Leader.LeaderID(); ok {
			killLeader(st, r, f, leaderID, "explosion", log)
		}
		// Every sector of the territory burns for both combatants.
		fs := st.Factions[f]
		cr := r.resultOf(f)
		for loc, stack := range fs.Forces {
			if loc.Territory != b.Territory || stack.Empty() {
				continue
			}
			cr.RegularLost += stack.Regular
			cr.EliteLost += stack.Elite
			st.SendForcesToTanks(f, loc, stack.Regular, stack.Elite)
		}
		cr.SpicePaid = plan.SpiceDialed
		if err := st.RemoveSpice(f, cr.SpicePaid); err != nil {
			log.invariant("spice payment failed", err)
		}
		discardLoserCards(st, b, f, log)
	}
	// No winner: leader payouts go unclaimed.
	r.SpicePayouts = nil
}

// applyWeapon resolves f's weapon card against the opponent's defense.
func applyWeapon(st *game.State, b *Battle, r *BattleResult, f game.Faction, log *eventLog) {
	plan := b.PlanOf(f)
	if plan.WeaponCard == "" {
		return
	}
	opponent := b.Opponent(f)
	oppPlan := b.PlanOf(opponent)
	leaderID, fielded := oppPlan.Leader.LeaderID()
	if !fielded {
		return
	}
	if oppPlan.DefenseCard != "" && game.Counters(oppPlan.DefenseCard, plan.WeaponCard) {
		return
	}
	killOrDefer(st, b, r, opponent, leaderID, plan.WeaponCard, log)
}

// killOrDefer kills a leader, unless the Harkonnen winner may instead
// capture it, in which case the kill and its payout wait for the choice.
func killOrDefer(st *game.State, b *Battle, r *BattleResult, owner game.Faction, leaderID, cause string, log *eventLog) {
	if r.Winner == game.Harkonnen && owner != game.Harkonnen && b.capture == nil {
		b.capture = &pendingCapture{
			Owner:    owner,
			LeaderID: leaderID,
			Strength: game.LeaderStrength(leaderID),
		}
		cr := r.resultOf(owner)
		cr.LeaderKilled = true
		cr.LeaderID = leaderID
		return
	}
	killLeader(st, r, owner, leaderID, cause, log)
}

func killLeader(st *game.State, r *BattleResult, owner game.Faction, leaderID, cause string, log *eventLog) {
	st.KillLeader(owner, leaderID)
	cr := r.resultOf(owner)
	if cr != nil {
		cr.LeaderKilled = true
		cr.LeaderID = leaderID
	}
	if r.Winner != "" {
		r.SpicePayouts = append(r.SpicePayouts, SpicePayout{
			To:       r.Winner,
			LeaderID: leaderID,
			Amount:   game.LeaderStrength(leaderID),
		})
	}
	log.emit(EventLeaderKilled,
		fmt.Sprintf("%s killed by %s", leaderID, cause),
		map[string]any{"faction": string(owner), "leaderId": leaderID, "cause": cause})

	// A captured leader's death pays its bounty to the captor.
	if ls := st.Leader(owner, leaderID); ls != nil && ls.Bounty > 0 && ls.CapturedBy != "" {
		st.AddSpice(ls.CapturedBy, ls.Bounty)
		log.emit(EventSpiceCollected,
			fmt.Sprintf("%s collects %d spice bounty for %s", ls.CapturedBy, ls.Bounty, leaderID),
			map[string]any{"faction": string(ls.CapturedBy), "amount": ls.Bounty, "leaderId": leaderID})
	}
}

// loseAllForces destroys every force f holds anywhere in the territory,
// every sector included, not just the contested one.
func loseAllForces(st *game.State, f game.Faction, territory string, cr *CombatantResult, log *eventLog) {
	fs, ok := st.Factions[f]
	if !ok {
		return
	}
	for loc, stack := range fs.Forces {
		if loc.Territory != territory || stack.Empty() {
			continue
		}
		cr.RegularLost += stack.Regular
		cr.EliteLost += stack.Elite
		if err := st.SendForcesToTanks(f, loc, stack.Regular, stack.Elite); err != nil {
			log.invariant("force loss failed", err)
		}
	}
}

// paySpiceDials sends both sides' dialed spice to the bank and pays the
// winner for every leader killed this battle.
func paySpiceDials(st *game.State, b *Battle, r *BattleResult, log *eventLog) {
	for _, f := range []game.Faction{b.Aggressor, b.Defender} {
		cr := r.resultOf(f)
		cr.SpicePaid = b.PlanOf(f).SpiceDialed
		if err := st.RemoveSpice(f, cr.SpicePaid); err != nil {
			log.invariant("spice dial payment failed", err)
		}
	}
	payPayouts(st, r, log)
}

func payPayouts(st *game.State, r *BattleResult, log *eventLog) {
	for _, p := range r.SpicePayouts {
		st.AddSpice(p.To, p.Amount)
		log.emit(EventSpiceCollected,
			fmt.Sprintf("%s collects %d spice for the death of %s", p.To, p.Amount, p.LeaderID),
			map[string]any{"faction": string(p.To), "amount": p.Amount, "leaderId": p.LeaderID})
	}
}

// settleLeaders finalizes leader discs after a normal resolution.
func settleLeaders(st *game.State, b *Battle, r *BattleResult, log *eventLog) {
	settleSurvivors(st, b, r.Winner, log)
	// The loser's leader is never killed by losing; it fought, so the
	// dedicated leader rule pins it to this territory for the turn.
	lr := r.resultOf(r.Loser)
	if leaderID, ok := b.PlanOf(r.Loser).Leader.LeaderID(); ok && !lr.LeaderKilled {
		if ls := st.Leader(r.Loser, leaderID); ls != nil {
			ls.FoughtTerritory = b.Territory
		}
	}
}

// settleSurvivors leaves the winner's surviving leader on the board in the
// battle territory until the leader-return step.
func settleSurvivors(st *game.State, b *Battle, winner game.Faction, log *eventLog) {
	wr := b.Result.resultOf(winner)
	if leaderID, ok := b.PlanOf(winner).Leader.LeaderID(); ok && !wr.LeaderKilled {
		st.MarkLeaderFought(winner, leaderID, b.Territory)
	}
}

// discardLoserCards discards every treachery card the losing side played.
func discardLoserCards(st *game.State, b *Battle, f game.Faction, log *eventLog) {
	for _, cardID := range b.PlanOf(f).PlayedCards() {
		discardCard(st, f, cardID, log)
	}
}

// collectWinnerCards auto-discards the winner's discard-after-use cards and
// queues the rest for the keep-or-discard choice.
func collectWinnerCards(st *game.State, b *Battle, f game.Faction, log *eventLog) {
	for _, cardID := range b.PlanOf(f).PlayedCards() {
		if game.DiscardAfterUse(cardID) {
			discardCard(st, f, cardID, log)
			continue
		}
		b.pendingWinnerCards = append(b.pendingWinnerCards, cardID)
	}
}

func discardCard(st *game.State, f game.Faction, cardID string, log *eventLog) {
	if err := st.DiscardCard(f, cardID); err != nil {
		return
	}
	log.emit(EventCardDiscarded,
		fmt.Sprintf("%s discards %s", f, cardID),
		map[string]any{"faction": string(f), "cardId": cardID})
}

// checkKwisatzActivation activates the Kwisatz Haderach once the Atreides
// have lost seven forces in battle across the game.
func checkKwisatzActivation(st *game.State, log *eventLog) {
	fs, ok := st.Factions[game.Atreides]
	if !ok || fs.KwisatzHaderach || fs.ForcesLost < 7 {
		return
	}
	fs.KwisatzHaderach = true
	log.emit(EventKwisatzHaderachActivated,
		"the Kwisatz Haderach has awakened",
		map[string]any{"faction": string(game.Atreides), "forcesLost": fs.ForcesLost})
}
