package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_SeatsFactionsWithFullRosters(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1, Harkonnen: 5})

	require.Len(t, st.Factions, 2)
	assert.Len(t, st.Factions[Atreides].Leaders, 5)
	for _, ls := range st.Factions[Atreides].Leaders {
		assert.Equal(t, LeaderAvailable, ls.Location)
	}
}

func TestClone_IsDeep(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1, Harkonnen: 5})
	ts := TerritorySector{Territory: "Arrakeen", Sector: 9}
	st.AddForces(Atreides, ts, 5, 2)
	st.Factions[Atreides].Hand = []string{"crysknife"}
	st.Factions[Atreides].Spice = 7

	clone := st.Clone()
	clone.AddForces(Atreides, ts, 1, 0)
	clone.Factions[Atreides].Hand[0] = "lasgun"
	clone.Factions[Atreides].Spice = 0
	clone.KillLeader(Atreides, "duncan-idaho")

	assert.Equal(t, ForceStack{Regular: 5, Elite: 2}, st.ForcesAt(Atreides, ts))
	assert.Equal(t, []string{"crysknife"}, st.Factions[Atreides].Hand)
	assert.Equal(t, 7, st.Factions[Atreides].Spice)
	assert.Equal(t, LeaderAvailable, st.Leader(Atreides, "duncan-idaho").Location)
}

func TestSendForcesToTanks(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1})
	ts := TerritorySector{Territory: "Arrakeen", Sector: 9}
	st.AddForces(Atreides, ts, 4, 1)

	require.NoError(t, st.SendForcesToTanks(Atreides, ts, 2, 1))
	assert.Equal(t, ForceStack{Regular: 2}, st.ForcesAt(Atreides, ts))
	assert.Equal(t, 3, st.Factions[Atreides].ForcesLost)

	// Losing more than present is rejected.
	assert.Error(t, st.SendForcesToTanks(Atreides, ts, 5, 0))

	// Emptying the stack removes the map entry.
	require.NoError(t, st.SendForcesToTanks(Atreides, ts, 2, 0))
	_, present := st.Factions[Atreides].Forces[ts]
	assert.False(t, present)
}

func TestSpiceAccounting(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1})
	st.Factions[Atreides].Spice = 5

	require.NoError(t, st.RemoveSpice(Atreides, 3))
	assert.Equal(t, 2, st.Factions[Atreides].Spice)
	assert.Error(t, st.RemoveSpice(Atreides, 3))

	st.AddSpice(Atreides, 4)
	assert.Equal(t, 6, st.Factions[Atreides].Spice)
}

func TestLeaderLifecycle(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1, Harkonnen: 5})

	st.MarkLeaderFought(Atreides, "lady-jessica", "Arrakeen")
	ls := st.Leader(Atreides, "lady-jessica")
	assert.Equal(t, LeaderOnBoard, ls.Location)
	assert.Equal(t, "Arrakeen", ls.Territory)
	assert.Equal(t, "Arrakeen", ls.FoughtTerritory)

	st.ReturnLeader(Atreides, "lady-jessica")
	assert.Equal(t, LeaderAvailable, ls.Location)
	assert.Empty(t, ls.Territory)

	st.CaptureLeader(Atreides, Harkonnen, "duncan-idaho", 2)
	captive := st.Leader(Atreides, "duncan-idaho")
	assert.Equal(t, LeaderCaptured, captive.Location)
	assert.Equal(t, Harkonnen, captive.CapturedBy)
	assert.Equal(t, 2, captive.Bounty)

	st.KillLeader(Atreides, "duncan-idaho")
	assert.Equal(t, LeaderInTanks, captive.Location)
}

func TestHandAndDiscard(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1})
	st.Factions[Atreides].Hand = []string{"crysknife", "shield"}

	assert.True(t, st.HasCard(Atreides, "shield"))
	require.NoError(t, st.DiscardCard(Atreides, "shield"))
	assert.False(t, st.HasCard(Atreides, "shield"))
	assert.Equal(t, []string{"shield"}, st.TreacheryDiscard)
	assert.Error(t, st.DiscardCard(Atreides, "shield"))
}

func TestHandLimit(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1, Harkonnen: 5})
	assert.Equal(t, 4, st.HandLimit(Atreides))
	assert.Equal(t, 8, st.HandLimit(Harkonnen))
}

func TestHoldsTraitor(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1, Harkonnen: 5})
	st.Factions[Harkonnen].Traitors = []string{"duncan-idaho"}

	assert.True(t, st.HoldsTraitor(Harkonnen, "duncan-idaho"))
	assert.False(t, st.HoldsTraitor(Harkonnen, "lady-jessica"))
	assert.False(t, st.HoldsTraitor(Atreides, "duncan-idaho"))
}

func TestAllied(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1, Fremen: 5, Harkonnen: 9})
	st.Factions[Atreides].Ally = Fremen
	st.Factions[Fremen].Ally = Atreides

	assert.True(t, st.Allied(Atreides, Fremen))
	assert.True(t, st.Allied(Fremen, Atreides))
	assert.False(t, st.Allied(Atreides, Harkonnen))
}

func TestStormOrder(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 3, Harkonnen: 7, Fremen: 12})
	st.StormSector = 5

	// Seats counted counter-clockwise from the storm: 7, 12, then 3.
	order := st.StormOrder()
	require.Equal(t, []Faction{Harkonnen, Fremen, Atreides}, order)
}

func TestUnderStorm(t *testing.T) {
	st := NewState(map[Faction]int{Atreides: 1})
	st.StormSector = 9

	assert.True(t, st.UnderStorm(TerritorySector{Territory: "Arrakeen", Sector: 9}))
	assert.False(t, st.UnderStorm(TerritorySector{Territory: "Arrakeen", Sector: 10}))
	assert.False(t, st.UnderStorm(TerritorySector{Territory: PolarSink, Sector: 9}))
}
