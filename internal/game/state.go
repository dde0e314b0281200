package game

import "fmt"

// ForceStack is a count of tokens one faction has in one territory sector.
type ForceStack struct {
	Regular int
	// Elite counts the faction's special force tokens (Fedaykin, Sardaukar).
	Elite int
}

// Empty reports whether the stack holds no tokens.
func (fs ForceStack) Empty() bool {
	return fs.Regular == 0 && fs.Elite == 0
}

// Total returns the token count, ignoring strength multipliers.
func (fs ForceStack) Total() int {
	return fs.Regular + fs.Elite
}

// RuleConfig captures the optional rules a game was created with.
type RuleConfig struct {
	// AdvancedCombat enables spice dialing: forces must be paid for with
	// spice to count at full strength.
	AdvancedCombat bool
}

// FactionState is the mutable per-faction slice of the game state.
type FactionState struct {
	Seat    int
	Spice   int
	Forces  map[TerritorySector]ForceStack
	Leaders map[string]*LeaderState
	Hand    []string
	// Traitors holds the leader IDs this faction drew traitor cards for.
	Traitors []string
	// Ally is the allied faction, or "" when unallied.
	Ally Faction
	// ForcesLost counts tokens this faction has lost in battle over the
	// whole game (Kwisatz Haderach activation tracking).
	ForcesLost int
	// KwisatzHaderach is set once the Atreides token has been activated.
	KwisatzHaderach bool
}

// State is the engine-wide game state. Battle phase processing clones it per
// step and mutates only the clone.
type State struct {
	Turn        int
	StormSector int
	Factions    map[Faction]*FactionState
	// TreacheryDiscard is the shared discard pile.
	TreacheryDiscard []string
	Config           RuleConfig
}

// NewState builds a state with the given factions seated, full leader rosters
// available, and no forces on the board.
func NewState(seats map[Faction]int) *State {
	s := &State{Factions: make(map[Faction]*FactionState)}
	for f, seat := range seats {
		fs := &FactionState{
			Seat:    seat,
			Forces:  make(map[TerritorySector]ForceStack),
			Leaders: make(map[string]*LeaderState),
		}
		for _, id := range LeadersOf(f) {
			fs.Leaders[id] = &LeaderState{ID: id, Location: LeaderAvailable}
		}
		s.Factions[f] = fs
	}
	return s
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	out := &State{
		Turn:        s.Turn,
		StormSector: s.StormSector,
		Factions:    make(map[Faction]*FactionState, len(s.Factions)),
		Config:      s.Config,
	}
	out.TreacheryDiscard = append([]string(nil), s.TreacheryDiscard...)
	for f, fs := range s.Factions {
		nf := &FactionState{
			Seat:            fs.Seat,
			Spice:           fs.Spice,
			Forces:          make(map[TerritorySector]ForceStack, len(fs.Forces)),
			Leaders:         make(map[string]*LeaderState, len(fs.Leaders)),
			Ally:            fs.Ally,
			ForcesLost:      fs.ForcesLost,
			KwisatzHaderach: fs.KwisatzHaderach,
		}
		nf.Hand = append([]string(nil), fs.Hand...)
		nf.Traitors = append([]string(nil), fs.Traitors...)
		for ts, stack := range fs.Forces {
			nf.Forces[ts] = stack
		}
		for id, ls := range fs.Leaders {
			copied := *ls
			nf.Leaders[id] = &copied
		}
		out.Factions[f] = nf
	}
	return out
}

// Allied reports whether a and b are in an alliance.
func (s *State) Allied(a, b Faction) bool {
	fa, ok := s.Factions[a]
	if !ok {
		return false
	}
	return fa.Ally == b && b != ""
}

// ForcesAt returns f's stack in the given territory sector.
func (s *State) ForcesAt(f Faction, ts TerritorySector) ForceStack {
	fs, ok := s.Factions[f]
	if !ok {
		return ForceStack{}
	}
	return fs.Forces[ts]
}

// AddForces places tokens on the board.
func (s *State) AddForces(f Faction, ts TerritorySector, regular, elite int) {
	fs, ok := s.Factions[f]
	if !ok {
		return
	}
	stack := fs.Forces[ts]
	stack.Regular += regular
	stack.Elite += elite
	fs.Forces[ts] = stack
}

// SendForcesToTanks removes tokens from the board into the tanks and bumps
// the faction's lifetime loss counter.
func (s *State) SendForcesToTanks(f Faction, ts TerritorySector, regular, elite int) error {
	fs, ok := s.Factions[f]
	if !ok {
		return fmt.Errorf("no such faction %s", f)
	}
	stack := fs.Forces[ts]
	if regular > stack.Regular || elite > stack.Elite {
		return fmt.Errorf("%s has %d/%d forces at %s sector %d, cannot lose %d/%d",
			f, stack.Regular, stack.Elite, ts.Territory, ts.Sector, regular, elite)
	}
	stack.Regular -= regular
	stack.Elite -= elite
	if stack.Empty() {
		delete(fs.Forces, ts)
	} else {
		fs.Forces[ts] = stack
	}
	fs.ForcesLost += regular + elite
	return nil
}

// AddSpice pays spice to a faction from the bank.
func (s *State) AddSpice(f Faction, amount int) {
	if fs, ok := s.Factions[f]; ok && amount > 0 {
		fs.Spice += amount
	}
}

// RemoveSpice pays spice from a faction to the bank.
func (s *State) RemoveSpice(f Faction, amount int) error {
	fs, ok := s.Factions[f]
	if !ok {
		return fmt.Errorf("no such faction %s", f)
	}
	if amount > fs.Spice {
		return fmt.Errorf("%s holds %d spice, cannot pay %d", f, fs.Spice, amount)
	}
	fs.Spice -= amount
	return nil
}

// Leader returns the mutable leader record, searching the owning faction.
func (s *State) Leader(f Faction, leaderID string) *LeaderState {
	fs, ok := s.Factions[f]
	if !ok {
		return nil
	}
	return fs.Leaders[leaderID]
}

// KillLeader sends a leader disc to the tanks.
func (s *State) KillLeader(f Faction, leaderID string) {
	if ls := s.Leader(f, leaderID); ls != nil {
		ls.Location = LeaderInTanks
		ls.Territory = ""
	}
}

// CaptureLeader moves a leader disc into the captor's keep with a bounty
// owed if it is later killed.
func (s *State) CaptureLeader(owner, captor Faction, leaderID string, bounty int) {
	if ls := s.Leader(owner, leaderID); ls != nil {
		ls.Location = LeaderCaptured
		ls.CapturedBy = captor
		ls.Territory = ""
		ls.Bounty = bounty
	}
}

// MarkLeaderFought pins a surviving leader to the battle territory until the
// leader-return step.
func (s *State) MarkLeaderFought(f Faction, leaderID, territory string) {
	if ls := s.Leader(f, leaderID); ls != nil {
		ls.Location = LeaderOnBoard
		ls.Territory = territory
		ls.FoughtTerritory = territory
	}
}

// ReturnLeader brings an on-board leader back to the available pool.
func (s *State) ReturnLeader(f Faction, leaderID string) {
	if ls := s.Leader(f, leaderID); ls != nil && ls.Location == LeaderOnBoard {
		ls.Location = LeaderAvailable
		ls.Territory = ""
	}
}

// HasCard reports whether f holds the card in hand.
func (s *State) HasCard(f Faction, cardID string) bool {
	fs, ok := s.Factions[f]
	if !ok {
		return false
	}
	for _, id := range fs.Hand {
		if id == cardID {
			return true
		}
	}
	return false
}

// DiscardCard moves one copy of the card from f's hand to the discard pile.
func (s *State) DiscardCard(f Faction, cardID string) error {
	fs, ok := s.Factions[f]
	if !ok {
		return fmt.Errorf("no such faction %s", f)
	}
	for i, id := range fs.Hand {
		if id == cardID {
			fs.Hand = append(fs.Hand[:i], fs.Hand[i+1:]...)
			s.TreacheryDiscard = append(s.TreacheryDiscard, cardID)
			return nil
		}
	}
	return fmt.Errorf("%s does not hold card %s", f, cardID)
}

// HandLimit returns the treachery hand limit for a faction.
func (s *State) HandLimit(f Faction) int {
	if f == Harkonnen {
		return 8
	}
	return 4
}

// HoldsTraitor reports whether f drew the traitor card for leaderID.
func (s *State) HoldsTraitor(f Faction, leaderID string) bool {
	fs, ok := s.Factions[f]
	if !ok || leaderID == "" {
		return false
	}
	for _, id := range fs.Traitors {
		if id == leaderID {
			return true
		}
	}
	return false
}
