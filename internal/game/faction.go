package game

import "fmt"

// Faction identifies one of the six playable factions.
type Faction string

const (
	Atreides     Faction = "ATREIDES"
	Harkonnen    Faction = "HARKONNEN"
	Emperor      Faction = "EMPEROR"
	Fremen       Faction = "FREMEN"
	SpacingGuild Faction = "SPACING_GUILD"
	BeneGesserit Faction = "BENE_GESSERIT"
)

// AllFactions lists every faction in rulebook order.
var AllFactions = []Faction{
	Atreides,
	BeneGesserit,
	Emperor,
	Fremen,
	SpacingGuild,
	Harkonnen,
}

// Valid reports whether f names a known faction.
func (f Faction) Valid() bool {
	switch f {
	case Atreides, Harkonnen, Emperor, Fremen, SpacingGuild, BeneGesserit:
		return true
	}
	return false
}

func (f Faction) String() string {
	return string(f)
}

// ParseFaction converts a wire identifier into a Faction.
func ParseFaction(s string) (Faction, error) {
	f := Faction(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown faction %q", s)
	}
	return f, nil
}
