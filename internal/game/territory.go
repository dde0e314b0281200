package game

import (
	"fmt"
	"strconv"
	"strings"
)

// NumSectors is the number of storm sectors around the board.
const NumSectors = 18

// PolarSink is the neutral territory at the center of the board; battles
// never occur there.
const PolarSink = "Polar Sink"

// TerritorySector addresses one sector of one territory.
type TerritorySector struct {
	Territory string
	Sector    int
}

// MarshalText encodes the address as "territory/sector" so it can serve as
// a JSON object key.
func (ts TerritorySector) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%s/%d", ts.Territory, ts.Sector)), nil
}

// UnmarshalText parses the "territory/sector" form.
func (ts *TerritorySector) UnmarshalText(text []byte) error {
	s := string(text)
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return fmt.Errorf("invalid territory sector %q", s)
	}
	sector, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return fmt.Errorf("invalid territory sector %q: %w", s, err)
	}
	ts.Territory = s[:i]
	ts.Sector = sector
	return nil
}

// UnderStorm reports whether the sector is currently covered by the storm.
// The Polar Sink is never under storm.
func (s *State) UnderStorm(ts TerritorySector) bool {
	if ts.Territory == PolarSink {
		return false
	}
	return ts.Sector == s.StormSector
}

// StormOrder returns the factions in play ordered by seat position starting
// from the first seat counter-clockwise of the storm. This is the aggressor
// precedence order for the battle phase.
func (s *State) StormOrder() []Faction {
	type seat struct {
		faction Faction
		pos     int
	}
	var seats []seat
	for _, f := range AllFactions {
		fs, ok := s.Factions[f]
		if !ok {
			continue
		}
		// Distance from the storm, moving counter-clockwise.
		pos := (fs.Seat - s.StormSector - 1 + NumSectors*2) % NumSectors
		seats = append(seats, seat{faction: f, pos: pos})
	}
	for i := 1; i < len(seats); i++ {
		for j := i; j > 0 && seats[j].pos < seats[j-1].pos; j-- {
			seats[j], seats[j-1] = seats[j-1], seats[j]
		}
	}
	order := make([]Faction, len(seats))
	for i, st := range seats {
		order[i] = st.faction
	}
	return order
}
