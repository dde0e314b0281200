package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dunelords/dune-server-go/internal/battle"
	"github.com/dunelords/dune-server-go/internal/game"
	"github.com/dunelords/dune-server-go/internal/repository"
)

// PhaseRunner drives one battle phase to completion, relaying requests
// through the gateway and optionally persisting battle reports.
type PhaseRunner struct {
	gateway *Gateway
	logger  *zap.Logger
	reports *repository.BattleReportStore // nil disables persistence
}

// NewPhaseRunner creates a runner; reports may be nil.
func NewPhaseRunner(gateway *Gateway, reports *repository.BattleReportStore, logger *zap.Logger) *PhaseRunner {
	return &PhaseRunner{gateway: gateway, logger: logger, reports: reports}
}

// Run executes the battle phase for the given state and returns the stepped
// state plus the full ordered event stream.
func (r *PhaseRunner) Run(ctx context.Context, gameID string, state *game.State) (*game.State, []battle.Event, error) {
	engine := battle.NewEngine(r.logger.Named("battle"))

	var allEvents []battle.Event
	res, err := engine.ProcessStep(state, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("battle phase start: %w", err)
	}
	allEvents = append(allEvents, res.Events...)
	r.gateway.broadcastEvents(res.Events)

	for !res.Complete {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		responses := r.gateway.Collect(res.Requests, res.Simultaneous)
		res, err = engine.ProcessStep(res.State, responses)
		if err != nil {
			return nil, nil, fmt.Errorf("battle phase step: %w", err)
		}
		allEvents = append(allEvents, res.Events...)
		r.gateway.broadcastEvents(res.Events)
	}

	if r.reports != nil {
		r.persist(ctx, gameID, engine, res.State, allEvents)
	}
	return res.State, allEvents, nil
}

// persist writes one report per resolved battle. Persistence failures are
// logged, never fatal to the game.
func (r *PhaseRunner) persist(ctx context.Context, gameID string, engine *battle.Engine, st *game.State, events []battle.Event) {
	for _, b := range engine.Context().PendingBattles {
		if b.Result == nil {
			continue
		}
		report := &repository.BattleReport{
			GameID:    gameID,
			Turn:      st.Turn,
			Territory: b.Territory,
			Sector:    b.Sector,
			Aggressor: string(b.Aggressor),
			Defender:  string(b.Defender),
			Winner:    string(b.Result.Winner),
			Result:    b.Result,
			Events:    eventsForBattle(events, b.ID),
		}
		if err := r.reports.Create(ctx, report); err != nil {
			r.logger.Error("failed to persist battle report",
				zap.String("game_id", gameID),
				zap.String("territory", b.Territory),
				zap.Error(err),
			)
		}
	}
}

// eventsForBattle filters the phase stream down to one battle's entries.
func eventsForBattle(events []battle.Event, battleID string) []battle.Event {
	var out []battle.Event
	for _, ev := range events {
		if id, ok := ev.Data["battleId"].(string); ok && id == battleID {
			out = append(out, ev)
		}
	}
	return out
}
