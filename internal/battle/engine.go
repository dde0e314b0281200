package battle

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dunelords/dune-server-go/internal/game"
)

// Engine drives the battle phase as a cooperative, step-driven state
// machine. It never blocks: ProcessStep consumes whatever responses the
// caller collected, advances as far as it can, and suspends by returning
// pending requests.
type Engine struct {
	logger *zap.Logger
	ctx    *PhaseContext
}

// NewEngine creates an engine for one battle phase.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Context exposes the phase context, mostly for inspection and tests.
func (e *Engine) Context() *PhaseContext { return e.ctx }

// StepResult is the outcome of one ProcessStep call.
type StepResult struct {
	// State is the stepped copy of the input state; the input is never
	// mutated.
	State *game.State
	// Requests are the decisions the engine is suspended on.
	Requests []AgentRequest
	// Simultaneous marks requests that must be collected together before
	// any response content is revealed (battle plans).
	Simultaneous bool
	Events       []Event
	// Complete is set once every pending battle has been resolved.
	Complete bool
}

// ProcessStep advances the battle phase. Responses answer the requests
// returned by the previous call; any outstanding request without a matching
// response is settled as a pass (non-response is never an error). The input
// state is cloned, mutated and returned; the caller owns both copies.
func (e *Engine) ProcessStep(state *game.State, responses []AgentResponse) (*StepResult, error) {
	if state == nil {
		return nil, errors.New("battle: nil game state")
	}
	st := state.Clone()
	log := &eventLog{logger: e.logger}

	if e.ctx == nil {
		e.ctx = newPhaseContext(st)
		e.logger.Info("battle phase started",
			zap.Int("pending_battles", len(e.ctx.PendingBattles)),
			zap.Any("aggressor_order", e.ctx.AggressorOrder),
		)
	}
	ctx := e.ctx

	if len(ctx.awaiting) > 0 {
		pending := append([]AgentResponse(nil), responses...)
		e.settle(st, ctx, &pending, log)
		ctx.awaiting = nil
		ctx.simultaneous = false
	}

	for !ctx.Done() && len(ctx.awaiting) == 0 {
		e.advance(st, ctx, log)
	}

	res := &StepResult{State: st, Events: log.events}
	if ctx.Done() {
		res.Complete = true
		if !ctx.completeEmitted {
			ctx.completeEmitted = true
			log.emit(EventBattlePhaseComplete, "battle phase complete",
				map[string]any{"battles": ctx.CurrentBattleIndex})
			res.Events = log.events
		}
		return res, nil
	}
	res.Requests = append([]AgentRequest(nil), ctx.awaiting...)
	res.Simultaneous = ctx.simultaneous
	return res, nil
}

// advance performs the next unit of work: either automatic processing or
// emitting the requests the current sub-phase is waiting on.
func (e *Engine) advance(st *game.State, ctx *PhaseContext, log *eventLog) {
	if ctx.Current == nil {
		e.loadNextBattle(st, ctx, log)
		return
	}
	b := ctx.Current
	switch ctx.SubPhase {
	case SubPhaseVoiceOpportunity:
		target, ok := abilityHolder(st, b, game.BeneGesserit)
		if !ok {
			ctx.SubPhase = SubPhasePrescienceOpportunity
			return
		}
		ctx.await(false, newRequest(game.BeneGesserit, RequestUseVoice,
			fmt.Sprintf("Use the Voice against %s in %s?", target, b.Territory),
			map[string]any{"battleId": b.ID, "target": string(target)},
			ActionUseVoice, ActionPass))
	case SubPhasePrescienceOpportunity:
		target, ok := abilityHolder(st, b, game.Atreides)
		if !ok || b.Prescience.Blocked {
			ctx.SubPhase = SubPhaseCreatingBattlePlans
			return
		}
		ctx.await(false, newRequest(game.Atreides, RequestUsePrescience,
			fmt.Sprintf("Use prescience against %s in %s?", target, b.Territory),
			map[string]any{"battleId": b.ID, "target": string(target)},
			ActionUsePrescience, ActionPass))
	case SubPhasePrescienceReveal:
		p := b.Prescience
		ctx.await(false, newRequest(p.Opponent, RequestRevealPrescienceElement,
			fmt.Sprintf("Commit the %s element of your battle plan for %s", p.Target, b.Territory),
			map[string]any{"battleId": b.ID, "element": string(p.Target)},
			ActionRevealPrescienceElement))
	case SubPhaseCreatingBattlePlans:
		ctx.await(true,
			e.planRequest(st, b, b.Aggressor),
			e.planRequest(st, b, b.Defender))
	case SubPhaseRevealingPlans:
		e.revealPlans(b, log)
		ctx.SubPhase = SubPhaseTraitorCall
	case SubPhaseTraitorCall:
		if next, ok := e.nextTraitorCaller(st, b); ok {
			opp := b.Opponent(next)
			leaderID, _ := b.PlanOf(opp).Leader.LeaderID()
			ctx.await(false, newRequest(next, RequestCallTraitor,
				fmt.Sprintf("%s fields %s. Call traitor?", opp, leaderID),
				map[string]any{"battleId": b.ID, "leaderId": leaderID},
				ActionCallTraitor, ActionPass))
			return
		}
		ctx.SubPhase = SubPhaseBattleResolution
	case SubPhaseBattleResolution:
		e.resolve(st, ctx, log)
	case SubPhaseWinnerCardDiscardChoice:
		r := b.Result
		fs := st.Factions[r.Winner]
		ctx.await(false, newRequest(r.Winner, RequestChooseCardsToDiscard,
			"Choose any played or held treachery cards to discard",
			map[string]any{
				"battleId":    b.ID,
				"playedCards": append([]string(nil), b.pendingWinnerCards...),
				"handSize":    len(fs.Hand),
				"handLimit":   st.HandLimit(r.Winner),
			},
			ActionDiscardCards, ActionPass))
	case SubPhaseHarkonnenCapture:
		cap := b.capture
		ctx.await(false, newRequest(game.Harkonnen, RequestCaptureLeaderChoice,
			fmt.Sprintf("Capture %s instead of collecting the kill payout?", cap.LeaderID),
			map[string]any{"battleId": b.ID, "leaderId": cap.LeaderID, "strength": cap.Strength},
			ActionCaptureLeader, ActionKillLeader, ActionPass))
	default:
		// AggressorChoosing is only ever entered with no current battle;
		// anything else here is a programming error. Advance so the phase
		// cannot wedge.
		e.logger.Error("unexpected sub-phase with a current battle",
			zap.String("sub_phase", ctx.SubPhase.String()))
		e.finishBattle(ctx)
	}
}

// loadNextBattle finds the next aggressor with live battles and either loads
// the only candidate or asks the aggressor to choose.
func (e *Engine) loadNextBattle(st *game.State, ctx *PhaseContext, log *eventLog) {
	for ctx.CurrentAggressorIndex < len(ctx.AggressorOrder) {
		f := ctx.AggressorOrder[ctx.CurrentAggressorIndex]
		candidates := ctx.candidateBattles(st, f)
		if len(candidates) == 0 {
			ctx.CurrentAggressorIndex++
			continue
		}
		if len(candidates) == 1 {
			e.startBattle(ctx, candidates[0], log)
			return
		}
		ctx.SubPhase = SubPhaseAggressorChoosing
		opts := make([]map[string]any, len(candidates))
		for i, c := range candidates {
			opts[i] = map[string]any{
				"territory": c.Territory,
				"sector":    c.Sector,
				"opponent":  string(c.Defender),
			}
		}
		ctx.await(false, newRequest(f, RequestChooseBattle,
			"Choose which battle to fight first",
			map[string]any{"battles": opts},
			ActionChooseBattle))
		return
	}
	// No aggressor has a live battle left; drop the dead remainder.
	ctx.PendingBattles = ctx.PendingBattles[:ctx.CurrentBattleIndex]
}

func (e *Engine) startBattle(ctx *PhaseContext, b *Battle, log *eventLog) {
	ctx.selectBattle(b)
	ctx.SubPhase = SubPhaseVoiceOpportunity
	log.emit(EventBattleStarted,
		fmt.Sprintf("%s attacks %s in %s sector %d", b.Aggressor, b.Defender, b.Territory, b.Sector),
		map[string]any{
			"battleId":  b.ID,
			"territory": b.Territory,
			"sector":    b.Sector,
			"aggressor": string(b.Aggressor),
			"defender":  string(b.Defender),
		})
	e.logger.Debug("battle started",
		zap.String("battle_id", b.ID),
		zap.String("territory", b.Territory),
		zap.Int("sector", b.Sector),
	)
}

// planRequest builds one side's CREATE_BATTLE_PLAN request, with enough
// context for the agent to construct a legal plan.
func (e *Engine) planRequest(st *game.State, b *Battle, f game.Faction) AgentRequest {
	reqCtx := map[string]any{
		"battleId":         b.ID,
		"territory":        b.Territory,
		"sector":           b.Sector,
		"opponent":         string(b.Opponent(f)),
		"maxDial":          maxDial(st, f, b.Opponent(f), b.Location()),
		"availableLeaders": availableLeaders(st, f, b.Territory),
	}
	if b.Voice.Used && b.Voice.Target == f {
		reqCtx["voiceCommand"] = b.Voice.Command.describe()
	}
	if b.Prescience.Used && b.Prescience.Opponent == f && b.Prescience.Result != nil {
		reqCtx["prescienceCommitment"] = string(b.Prescience.Target)
	}
	return newRequest(f, RequestCreateBattlePlan,
		fmt.Sprintf("Create your battle plan for %s sector %d", b.Territory, b.Sector),
		reqCtx, ActionCreateBattlePlan)
}

// settle consumes responses for the requests emitted by the previous step.
// Missing responses settle as passes.
func (e *Engine) settle(st *game.State, ctx *PhaseContext, pending *[]AgentResponse, log *eventLog) {
	switch ctx.SubPhase {
	case SubPhaseAggressorChoosing:
		e.settleAggressorChoice(st, ctx, pending, log)
	case SubPhaseVoiceOpportunity:
		e.settleVoice(st, ctx, pending, log)
	case SubPhasePrescienceOpportunity:
		e.settlePrescience(st, ctx, pending, log)
	case SubPhasePrescienceReveal:
		e.settlePrescienceReveal(ctx, pending, log)
	case SubPhaseCreatingBattlePlans:
		e.settlePlans(st, ctx, pending, log)
	case SubPhaseTraitorCall:
		e.settleTraitorCall(st, ctx, pending, log)
	case SubPhaseWinnerCardDiscardChoice:
		e.settleDiscardChoice(st, ctx, pending, log)
	case SubPhaseHarkonnenCapture:
		e.settleCapture(st, ctx, pending, log)
	}
}

func (e *Engine) settleAggressorChoice(st *game.State, ctx *PhaseContext, pending *[]AgentResponse, log *eventLog) {
	f := ctx.awaiting[0].Faction
	candidates := ctx.candidateBattles(st, f)
	if len(candidates) == 0 {
		// The queue changed under us; caller-side programming error.
		ctx.CurrentAggressorIndex++
		return
	}
	chosen := candidates[0]
	if resp, ok := takeResponse(pending, f); ok && !resp.Passed {
		territory := asString(resp.Data["territory"])
		sector := asInt(resp.Data["sector"])
		opponent := game.Faction(asString(resp.Data["opponent"]))
		for _, c := range candidates {
			if c.Territory == territory && c.Sector == sector && c.Defender == opponent {
				chosen = c
				break
			}
		}
	}
	e.startBattle(ctx, chosen, log)
}

func (e *Engine) settleVoice(st *game.State, ctx *PhaseContext, pending *[]AgentResponse, log *eventLog) {
	b := ctx.Current
	ctx.SubPhase = SubPhasePrescienceOpportunity
	resp, ok := takeResponse(pending, game.BeneGesserit)
	if !ok || resp.Passed || resp.Action != ActionUseVoice {
		return
	}
	cmd, err := parseVoiceCommand(resp.Data)
	if err != nil {
		e.logger.Warn("ignoring malformed voice command", zap.Error(err))
		return
	}
	target, ok := abilityHolder(st, b, game.BeneGesserit)
	if !ok {
		return
	}
	b.Voice = VoiceState{Used: true, Holder: game.BeneGesserit, Target: target, Command: cmd}
	log.emit(EventVoiceUsed,
		fmt.Sprintf("the Voice commands %s: %s", target, cmd.describe()),
		map[string]any{"battleId": b.ID, "target": string(target), "command": cmd.describe()})
}

func (e *Engine) settlePrescience(st *game.State, ctx *PhaseContext, pending *[]AgentResponse, log *eventLog) {
	b := ctx.Current
	resp, ok := takeResponse(pending, game.Atreides)
	if !ok || resp.Passed || resp.Action != ActionUsePrescience {
		ctx.SubPhase = SubPhaseCreatingBattlePlans
		return
	}
	target, err := parsePrescienceTarget(resp.Data)
	if err != nil {
		e.logger.Warn("ignoring malformed prescience target", zap.Error(err))
		ctx.SubPhase = SubPhaseCreatingBattlePlans
		return
	}
	opponent, ok := abilityHolder(st, b, game.Atreides)
	if !ok {
		ctx.SubPhase = SubPhaseCreatingBattlePlans
		return
	}
	b.Prescience = PrescienceState{
		Used:     true,
		Holder:   game.Atreides,
		Opponent: opponent,
		Target:   target,
	}
	log.emit(EventPrescienceUsed,
		fmt.Sprintf("Atreides foresee the %s element of %s's plan", target, opponent),
		map[string]any{"battleId": b.ID, "target": string(target), "opponent": string(opponent)})
	ctx.SubPhase = SubPhasePrescienceReveal
}

func (e *Engine) settlePrescienceReveal(ctx *PhaseContext, pending *[]AgentResponse, log *eventLog) {
	b := ctx.Current
	p := &b.Prescience
	resp, _ := takeResponse(pending, p.Opponent)
	p.Result = parsePrescienceReveal(p.Target, resp.Data)
	if p.Result.NotPlaying {
		// The ability cannot be re-aimed at another element this battle.
		p.Blocked = true
	}
	log.emit(EventPrescienceElementRevealed,
		fmt.Sprintf("%s pre-commits the %s element", p.Opponent, p.Target),
		map[string]any{
			"battleId":   b.ID,
			"element":    string(p.Target),
			"notPlaying": p.Result.NotPlaying,
		})
	ctx.SubPhase = SubPhaseCreatingBattlePlans
}

// settlePlans finalizes both battle plans, substituting the deterministic
// default for anything invalid, commitment-breaking, or missing.
func (e *Engine) settlePlans(st *game.State, ctx *PhaseContext, pending *[]AgentResponse, log *eventLog) {
	b := ctx.Current
	for _, f := range []game.Faction{b.Aggressor, b.Defender} {
		b.setPlan(f, e.finalizePlan(st, b, f, pending, log))
		log.emit(EventBattlePlanSubmitted,
			fmt.Sprintf("%s has sealed a battle plan", f),
			map[string]any{"battleId": b.ID, "faction": string(f)})
	}
	ctx.SubPhase = SubPhaseRevealingPlans
}

func (e *Engine) finalizePlan(st *game.State, b *Battle, f game.Faction, pending *[]AgentResponse, log *eventLog) *BattlePlan {
	resp, ok := takeResponse(pending, f)
	if !ok || resp.Passed {
		return defaultPlan(st, b, f)
	}
	plan, err := normalizePlan(resp.Data)
	if err != nil {
		log.emit(EventBattlePlanInvalid,
			fmt.Sprintf("%s submitted an unreadable plan: %v", f, err),
			map[string]any{"battleId": b.ID, "faction": string(f), "error": err.Error()})
		return defaultPlan(st, b, f)
	}
	if err := checkPrescienceCommitment(b, f, plan); err != nil {
		log.emit(EventPrescienceCommitmentViolation,
			fmt.Sprintf("%s broke a prescience commitment: %v", f, err),
			map[string]any{"battleId": b.ID, "faction": string(f), "violation": err.Error()})
		return defaultPlan(st, b, f)
	}
	if errs := validateBattlePlan(st, b, f, plan); len(errs) > 0 {
		log.emit(EventBattlePlanInvalid,
			fmt.Sprintf("%s submitted an illegal plan: %s", f, errorSummary(errs)),
			map[string]any{"battleId": b.ID, "faction": string(f), "errors": errs})
		return defaultPlan(st, b, f)
	}
	return plan
}

// revealPlans emits both plans verbatim and, if the Voice was used, the
// compliance verdict. Violations are informational only.
func (e *Engine) revealPlans(b *Battle, log *eventLog) {
	log.emit(EventBattlePlansRevealed,
		fmt.Sprintf("battle plans for %s sector %d revealed", b.Territory, b.Sector),
		map[string]any{
			"battleId":      b.ID,
			"aggressorPlan": b.AggressorPlan.describe(),
			"defenderPlan":  b.DefenderPlan.describe(),
		})
	if !b.Voice.Used {
		return
	}
	plan := b.PlanOf(b.Voice.Target)
	if voiceComplies(b.Voice.Command, plan) {
		log.emit(EventVoiceComplied,
			fmt.Sprintf("%s complied with the Voice", b.Voice.Target),
			map[string]any{"battleId": b.ID, "faction": string(b.Voice.Target)})
		return
	}
	log.emit(EventVoiceViolation,
		fmt.Sprintf("%s defied the Voice: %s", b.Voice.Target, b.Voice.Command.describe()),
		map[string]any{"battleId": b.ID, "faction": string(b.Voice.Target), "command": b.Voice.Command.describe()})
}

// nextTraitorCaller finds the next side eligible to call traitor that has
// not been asked yet, aggressor first.
func (e *Engine) nextTraitorCaller(st *game.State, b *Battle) (game.Faction, bool) {
	if b.traitorAsked == nil {
		b.traitorAsked = make(map[game.Faction]bool, 2)
	}
	for _, f := range []game.Faction{b.Aggressor, b.Defender} {
		if !b.traitorAsked[f] && eligibleTraitorCaller(st, b, f) {
			return f, true
		}
	}
	return "", false
}

func (e *Engine) settleTraitorCall(st *game.State, ctx *PhaseContext, pending *[]AgentResponse, log *eventLog) {
	b := ctx.Current
	f := ctx.awaiting[0].Faction
	b.traitorAsked[f] = true
	resp, ok := takeResponse(pending, f)
	if !ok || resp.Passed || resp.Action != ActionCallTraitor {
		return
	}
	if !eligibleTraitorCaller(st, b, f) {
		return
	}
	if b.Traitor.Called {
		b.Traitor.BothSides = true
	} else {
		b.Traitor.Called = true
		b.Traitor.CalledBy = f
	}
	leaderID, _ := b.PlanOf(b.Opponent(f)).Leader.LeaderID()
	log.emit(EventTraitorCalled,
		fmt.Sprintf("%s reveals %s as a traitor", f, leaderID),
		map[string]any{"battleId": b.ID, "calledBy": string(f), "leaderId": leaderID})
}

// resolve runs the resolution algorithm and routes to the post-resolution
// choices or the next battle.
func (e *Engine) resolve(st *game.State, ctx *PhaseContext, log *eventLog) {
	b := ctx.Current
	if b == nil || b.AggressorPlan == nil || b.DefenderPlan == nil {
		// Resolution without a prepared battle is a caller bug.
		e.logger.Error("resolution invoked without a prepared battle")
		ctx.advanceBattle()
		ctx.SubPhase = SubPhaseAggressorChoosing
		return
	}
	r := resolveBattle(st, b, log)
	e.logger.Info("battle resolved",
		zap.String("battle_id", b.ID),
		zap.String("winner", string(r.Winner)),
		zap.String("loser", string(r.Loser)),
		zap.Float64("aggressor_strength", r.Aggressor.Strength),
		zap.Float64("defender_strength", r.Defender.Strength),
	)
	if r.Winner != "" {
		overLimit := len(st.Factions[r.Winner].Hand) > st.HandLimit(r.Winner)
		if len(b.pendingWinnerCards) > 0 || overLimit {
			ctx.SubPhase = SubPhaseWinnerCardDiscardChoice
			return
		}
	}
	if b.capture != nil {
		ctx.SubPhase = SubPhaseHarkonnenCapture
		return
	}
	e.finishBattle(ctx)
}

func (e *Engine) settleDiscardChoice(st *game.State, ctx *PhaseContext, pending *[]AgentResponse, log *eventLog) {
	b := ctx.Current
	winner := b.Result.Winner
	if resp, ok := takeResponse(pending, winner); ok && resp.Action == ActionDiscardCards {
		for _, cardID := range asStringList(resp.Data["cards"]) {
			discardCard(st, winner, cardID, log)
		}
	}
	b.pendingWinnerCards = nil
	if b.capture != nil {
		ctx.SubPhase = SubPhaseHarkonnenCapture
		return
	}
	e.finishBattle(ctx)
}

func (e *Engine) settleCapture(st *game.State, ctx *PhaseContext, pending *[]AgentResponse, log *eventLog) {
	b := ctx.Current
	cap := b.capture
	b.capture = nil
	resp, ok := takeResponse(pending, game.Harkonnen)
	if ok && resp.Action == ActionCaptureLeader {
		st.CaptureLeader(cap.Owner, game.Harkonnen, cap.LeaderID, cap.Strength)
		log.emit(EventLeaderCaptured,
			fmt.Sprintf("Harkonnen capture %s", cap.LeaderID),
			map[string]any{
				"battleId": b.ID,
				"leaderId": cap.LeaderID,
				"owner":    string(cap.Owner),
				"bounty":   cap.Strength,
			})
		e.finishBattle(ctx)
		return
	}
	// Kill: the withheld payout is collected now.
	st.KillLeader(cap.Owner, cap.LeaderID)
	b.Result.SpicePayouts = append(b.Result.SpicePayouts, SpicePayout{
		To: game.Harkonnen, LeaderID: cap.LeaderID, Amount: cap.Strength,
	})
	st.AddSpice(game.Harkonnen, cap.Strength)
	log.emit(EventLeaderKilled,
		fmt.Sprintf("%s killed by treachery", cap.LeaderID),
		map[string]any{"faction": string(cap.Owner), "leaderId": cap.LeaderID, "cause": "treachery"})
	log.emit(EventSpiceCollected,
		fmt.Sprintf("HARKONNEN collects %d spice for the death of %s", cap.Strength, cap.LeaderID),
		map[string]any{"faction": string(game.Harkonnen), "amount": cap.Strength, "leaderId": cap.LeaderID})
	e.finishBattle(ctx)
}

func (e *Engine) finishBattle(ctx *PhaseContext) {
	ctx.advanceBattle()
	ctx.SubPhase = SubPhaseAggressorChoosing
}

// ReturnFoughtLeaders is the leader-return step run by the phase scheduler
// after the battle phase: every surviving leader left on the board goes back
// to its owner's available pool.
func ReturnFoughtLeaders(st *game.State) []Event {
	log := &eventLog{}
	for f, fs := range st.Factions {
		for id, ls := range fs.Leaders {
			if ls.Location != game.LeaderOnBoard {
				continue
			}
			st.ReturnLeader(f, id)
			log.emit(EventLeaderReturned,
				fmt.Sprintf("%s returns to the %s pool", id, f),
				map[string]any{"faction": string(f), "leaderId": id})
		}
	}
	return log.events
}

func asStringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
