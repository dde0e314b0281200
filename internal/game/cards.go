package game

// CardKind classifies a treachery card for battle purposes.
type CardKind int

const (
	KindWeapon CardKind = iota
	KindDefense
	KindCheapHero
	KindWorthless
)

// WeaponCategory is the attack class a weapon belongs to and a defense guards
// against. Lasgun is its own category: no defense counters it.
type WeaponCategory int

const (
	CategoryNone WeaponCategory = iota
	CategoryProjectile
	CategoryPoison
	CategoryLasgun
)

var weaponCategoryNames = map[WeaponCategory]string{
	CategoryNone:       "NONE",
	CategoryProjectile: "PROJECTILE",
	CategoryPoison:     "POISON",
	CategoryLasgun:     "LASGUN",
}

func (c WeaponCategory) String() string {
	if name, ok := weaponCategoryNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Card is a static treachery card definition.
type Card struct {
	ID       string
	Name     string
	Kind     CardKind
	Category WeaponCategory
	// DiscardAfterUse forces the card to the discard pile once played,
	// regardless of the winner's keep/discard choice.
	DiscardAfterUse bool
}

var cardTable = map[string]Card{
	// Projectile weapons
	"crysknife":    {ID: "crysknife", Name: "Crysknife", Kind: KindWeapon, Category: CategoryProjectile},
	"maula-pistol": {ID: "maula-pistol", Name: "Maula Pistol", Kind: KindWeapon, Category: CategoryProjectile},
	"slip-tip":     {ID: "slip-tip", Name: "Slip Tip", Kind: KindWeapon, Category: CategoryProjectile},
	"stunner":      {ID: "stunner", Name: "Stunner", Kind: KindWeapon, Category: CategoryProjectile},

	// Poison weapons
	"chaumas":     {ID: "chaumas", Name: "Chaumas", Kind: KindWeapon, Category: CategoryPoison},
	"chaumurky":   {ID: "chaumurky", Name: "Chaumurky", Kind: KindWeapon, Category: CategoryPoison},
	"ellaca-drug": {ID: "ellaca-drug", Name: "Ellaca Drug", Kind: KindWeapon, Category: CategoryPoison},
	"gom-jabbar":  {ID: "gom-jabbar", Name: "Gom Jabbar", Kind: KindWeapon, Category: CategoryPoison},

	// Lasgun
	"lasgun": {ID: "lasgun", Name: "Lasgun", Kind: KindWeapon, Category: CategoryLasgun},

	// Defenses
	"shield":  {ID: "shield", Name: "Shield", Kind: KindDefense, Category: CategoryProjectile},
	"snooper": {ID: "snooper", Name: "Snooper", Kind: KindDefense, Category: CategoryPoison},

	// Leader substitute
	"cheap-hero":    {ID: "cheap-hero", Name: "Cheap Hero", Kind: KindCheapHero, DiscardAfterUse: true},
	"cheap-heroine": {ID: "cheap-heroine", Name: "Cheap Heroine", Kind: KindCheapHero, DiscardAfterUse: true},

	// Worthless cards
	"baliset":        {ID: "baliset", Name: "Baliset", Kind: KindWorthless},
	"jubba-cloak":    {ID: "jubba-cloak", Name: "Jubba Cloak", Kind: KindWorthless},
	"kulon":          {ID: "kulon", Name: "Kulon", Kind: KindWorthless},
	"la-la-la":       {ID: "la-la-la", Name: "La, La, La", Kind: KindWorthless},
	"trip-to-gamont": {ID: "trip-to-gamont", Name: "Trip to Gamont", Kind: KindWorthless},
}

// LookupCard returns the static card entry for id.
func LookupCard(id string) (Card, bool) {
	c, ok := cardTable[id]
	return c, ok
}

// IsWeapon reports whether id names a weapon card (lasgun included).
func IsWeapon(id string) bool {
	c, ok := cardTable[id]
	return ok && c.Kind == KindWeapon
}

// IsDefense reports whether id names a defense card.
func IsDefense(id string) bool {
	c, ok := cardTable[id]
	return ok && c.Kind == KindDefense
}

// IsCheapHero reports whether id names a leader-substitute card.
func IsCheapHero(id string) bool {
	c, ok := cardTable[id]
	return ok && c.Kind == KindCheapHero
}

// Counters reports whether defense card defenseID stops weapon card weaponID.
// Nothing counters a lasgun.
func Counters(defenseID, weaponID string) bool {
	d, ok := cardTable[defenseID]
	if !ok || d.Kind != KindDefense {
		return false
	}
	w, ok := cardTable[weaponID]
	if !ok || w.Kind != KindWeapon || w.Category == CategoryLasgun {
		return false
	}
	return d.Category == w.Category
}

// IsLasgunShield reports whether the played weapon/defense pair across both
// plans triggers the lasgun-shield explosion.
func IsLasgunShield(weaponID, defenseID string) bool {
	w, wok := cardTable[weaponID]
	d, dok := cardTable[defenseID]
	return wok && dok &&
		w.Kind == KindWeapon && w.Category == CategoryLasgun &&
		d.Kind == KindDefense && d.Category == CategoryProjectile
}

// DiscardAfterUse reports whether a played card must always be discarded.
func DiscardAfterUse(id string) bool {
	c, ok := cardTable[id]
	return ok && c.DiscardAfterUse
}
