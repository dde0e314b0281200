package main

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/dunelords/dune-server-go/internal/battle"
	"github.com/dunelords/dune-server-go/internal/game"
)

// skirmish runs one battle phase offline with scripted agents and prints the
// event stream, for demos and manual rule inspection.
func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	state := fixtureState()
	engine := battle.NewEngine(logger.Named("battle"))

	res, err := engine.ProcessStep(state, nil)
	if err != nil {
		logger.Fatal("battle phase failed to start", zap.Error(err))
	}
	printEvents(res.Events)

	for !res.Complete {
		var responses []battle.AgentResponse
		for _, req := range res.Requests {
			if resp := scriptedAnswer(res.State, req); resp != nil {
				responses = append(responses, *resp)
			}
		}
		res, err = engine.ProcessStep(res.State, responses)
		if err != nil {
			logger.Fatal("battle phase step failed", zap.Error(err))
		}
		printEvents(res.Events)
	}

	fmt.Println("\n--- final positions ---")
	for _, f := range game.AllFactions {
		fs, ok := res.State.Factions[f]
		if !ok {
			continue
		}
		fmt.Printf("%s: spice=%d forcesLost=%d hand=%v\n", f, fs.Spice, fs.ForcesLost, fs.Hand)
	}
}

// fixtureState stages two contested territories: Atreides against Harkonnen
// in Arrakeen, Fremen against the Emperor at False Wall South. Harkonnen
// holds a traitor card for an Atreides leader.
func fixtureState() *game.State {
	st := game.NewState(map[game.Faction]int{
		game.Atreides:  1,
		game.Harkonnen: 4,
		game.Fremen:    8,
		game.Emperor:   11,
	})
	st.Turn = 3
	st.StormSector = 15
	st.Config.AdvancedCombat = true

	arrakeen := game.TerritorySector{Territory: "Arrakeen", Sector: 9}
	st.AddForces(game.Atreides, arrakeen, 8, 0)
	st.AddForces(game.Harkonnen, arrakeen, 6, 0)
	st.Factions[game.Atreides].Spice = 10
	st.Factions[game.Atreides].Hand = []string{"crysknife", "shield"}
	st.Factions[game.Harkonnen].Spice = 8
	st.Factions[game.Harkonnen].Hand = []string{"chaumas", "snooper"}
	st.Factions[game.Harkonnen].Traitors = []string{"dr-yueh"}

	falseWall := game.TerritorySector{Territory: "False Wall South", Sector: 4}
	st.AddForces(game.Fremen, falseWall, 5, 3)
	st.AddForces(game.Emperor, falseWall, 4, 2)
	st.Factions[game.Fremen].Spice = 2
	st.Factions[game.Emperor].Spice = 12

	return st
}

// scriptedAnswer plays a simple fixed policy: field the strongest leader,
// dial half, play held cards, call traitors on sight, capture when offered.
func scriptedAnswer(st *game.State, req battle.AgentRequest) *battle.AgentResponse {
	switch req.Type {
	case battle.RequestUseVoice, battle.RequestUsePrescience:
		return &battle.AgentResponse{Faction: req.Faction, Action: battle.ActionPass, Passed: true}

	case battle.RequestCreateBattlePlan:
		return &battle.AgentResponse{
			Faction: req.Faction,
			Action:  battle.ActionCreateBattlePlan,
			Data:    scriptedPlan(st, req),
		}

	case battle.RequestCallTraitor:
		return &battle.AgentResponse{Faction: req.Faction, Action: battle.ActionCallTraitor}

	case battle.RequestChooseCardsToDiscard:
		return &battle.AgentResponse{Faction: req.Faction, Action: battle.ActionPass, Passed: true}

	case battle.RequestCaptureLeaderChoice:
		return &battle.AgentResponse{Faction: req.Faction, Action: battle.ActionCaptureLeader}
	}
	return nil
}

func scriptedPlan(st *game.State, req battle.AgentRequest) map[string]any {
	plan := map[string]any{}

	if leaders, ok := req.Context["availableLeaders"].([]string); ok && len(leaders) > 0 {
		sorted := append([]string(nil), leaders...)
		sort.Slice(sorted, func(i, j int) bool {
			return game.LeaderStrength(sorted[i]) > game.LeaderStrength(sorted[j])
		})
		plan["leaderId"] = sorted[0]
	} else {
		plan["announcedNoLeader"] = true
	}

	if maxDial, ok := req.Context["maxDial"].(int); ok {
		dial := maxDial / 2
		plan["forcesDialed"] = dial
		if st.Config.AdvancedCombat {
			fs := st.Factions[req.Faction]
			if fs.Spice >= dial {
				plan["spiceDialed"] = dial
			} else {
				plan["spiceDialed"] = fs.Spice
			}
		}
	}

	for _, card := range st.Factions[req.Faction].Hand {
		if game.IsWeapon(card) && plan["weaponCard"] == nil {
			plan["weaponCard"] = card
		}
		if game.IsDefense(card) && plan["defenseCard"] == nil {
			plan["defenseCard"] = card
		}
	}
	return plan
}

func printEvents(events []battle.Event) {
	for _, ev := range events {
		fmt.Printf("[%s] %s\n", ev.Type, ev.Message)
	}
}
