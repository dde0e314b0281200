package game

// Leader is a static entry in the leader strength table.
type Leader struct {
	ID       string
	Name     string
	Faction  Faction
	Strength int
}

// leaderTable holds the printed leader discs for all six factions.
var leaderTable = map[string]Leader{
	// Atreides
	"thufir-hawat":   {ID: "thufir-hawat", Name: "Thufir Hawat", Faction: Atreides, Strength: 5},
	"lady-jessica":   {ID: "lady-jessica", Name: "Lady Jessica", Faction: Atreides, Strength: 5},
	"gurney-halleck": {ID: "gurney-halleck", Name: "Gurney Halleck", Faction: Atreides, Strength: 4},
	"duncan-idaho":   {ID: "duncan-idaho", Name: "Duncan Idaho", Faction: Atreides, Strength: 2},
	"dr-yueh":        {ID: "dr-yueh", Name: "Dr. Wellington Yueh", Faction: Atreides, Strength: 1},

	// Harkonnen
	"feyd-rautha":    {ID: "feyd-rautha", Name: "Feyd-Rautha", Faction: Harkonnen, Strength: 6},
	"beast-rabban":   {ID: "beast-rabban", Name: "Beast Rabban", Faction: Harkonnen, Strength: 4},
	"piter-de-vries": {ID: "piter-de-vries", Name: "Piter de Vries", Faction: Harkonnen, Strength: 3},
	"captain-nefud":  {ID: "captain-nefud", Name: "Captain Iakin Nefud", Faction: Harkonnen, Strength: 2},
	"umman-kudu":     {ID: "umman-kudu", Name: "Umman Kudu", Faction: Harkonnen, Strength: 1},

	// Emperor
	"hasimir-fenring":  {ID: "hasimir-fenring", Name: "Hasimir Fenring", Faction: Emperor, Strength: 6},
	"captain-aramsham": {ID: "captain-aramsham", Name: "Captain Aramsham", Faction: Emperor, Strength: 5},
	"caid":             {ID: "caid", Name: "Caid", Faction: Emperor, Strength: 3},
	"burseg":           {ID: "burseg", Name: "Burseg", Faction: Emperor, Strength: 3},
	"bashar":           {ID: "bashar", Name: "Bashar", Faction: Emperor, Strength: 2},

	// Fremen
	"stilgar":       {ID: "stilgar", Name: "Stilgar", Faction: Fremen, Strength: 7},
	"chani":         {ID: "chani", Name: "Chani", Faction: Fremen, Strength: 6},
	"otheym":        {ID: "otheym", Name: "Otheym", Faction: Fremen, Strength: 5},
	"shadout-mapes": {ID: "shadout-mapes", Name: "Shadout Mapes", Faction: Fremen, Strength: 3},
	"jamis":         {ID: "jamis", Name: "Jamis", Faction: Fremen, Strength: 2},

	// Spacing Guild
	"staban-tuek":  {ID: "staban-tuek", Name: "Staban Tuek", Faction: SpacingGuild, Strength: 5},
	"master-bewt":  {ID: "master-bewt", Name: "Master Bewt", Faction: SpacingGuild, Strength: 3},
	"esmar-tuek":   {ID: "esmar-tuek", Name: "Esmar Tuek", Faction: SpacingGuild, Strength: 3},
	"soo-soo-sook": {ID: "soo-soo-sook", Name: "Soo-Soo Sook", Faction: SpacingGuild, Strength: 2},
	"guild-rep":    {ID: "guild-rep", Name: "Guild Representative", Faction: SpacingGuild, Strength: 1},

	// Bene Gesserit
	"alia":            {ID: "alia", Name: "Alia", Faction: BeneGesserit, Strength: 5},
	"margot-fenring":  {ID: "margot-fenring", Name: "Margot Lady Fenring", Faction: BeneGesserit, Strength: 5},
	"mother-ramallo":  {ID: "mother-ramallo", Name: "Mother Ramallo", Faction: BeneGesserit, Strength: 5},
	"princess-irulan": {ID: "princess-irulan", Name: "Princess Irulan", Faction: BeneGesserit, Strength: 5},
	"wanna-yueh":      {ID: "wanna-yueh", Name: "Wanna Marcus", Faction: BeneGesserit, Strength: 5},
}

// LookupLeader returns the static leader entry for id.
func LookupLeader(id string) (Leader, bool) {
	l, ok := leaderTable[id]
	return l, ok
}

// LeaderStrength returns the table strength for id, or 0 for an unknown id.
func LeaderStrength(id string) int {
	if l, ok := leaderTable[id]; ok {
		return l.Strength
	}
	return 0
}

// LeadersOf returns the leader IDs printed for a faction.
func LeadersOf(f Faction) []string {
	var ids []string
	for id, l := range leaderTable {
		if l.Faction == f {
			ids = append(ids, id)
		}
	}
	return ids
}

// LeaderLocation tracks where a leader disc currently sits.
type LeaderLocation int

const (
	LeaderAvailable LeaderLocation = iota
	LeaderOnBoard
	LeaderInTanks
	LeaderCaptured
)

var leaderLocationNames = map[LeaderLocation]string{
	LeaderAvailable: "AVAILABLE",
	LeaderOnBoard:   "ON_BOARD",
	LeaderInTanks:   "IN_TANKS",
	LeaderCaptured:  "CAPTURED",
}

func (l LeaderLocation) String() string {
	if name, ok := leaderLocationNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// LeaderState is the mutable per-game record for one leader disc.
type LeaderState struct {
	ID       string
	Location LeaderLocation
	// Territory the disc sits in while on board.
	Territory string
	// FoughtTerritory is non-empty once the leader has fought a battle this
	// turn; the same leader may only fight again in that territory.
	FoughtTerritory string
	// CapturedBy holds the captor while Location is LeaderCaptured.
	CapturedBy Faction
	// Bounty is the spice owed to the captor if a captured leader is killed.
	Bounty int
}
