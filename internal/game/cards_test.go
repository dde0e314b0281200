package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardPredicates(t *testing.T) {
	assert.True(t, IsWeapon("crysknife"))
	assert.True(t, IsWeapon("chaumas"))
	assert.True(t, IsWeapon("lasgun"))
	assert.False(t, IsWeapon("shield"))
	assert.False(t, IsWeapon("baliset"))
	assert.False(t, IsWeapon("no-such-card"))

	assert.True(t, IsDefense("shield"))
	assert.True(t, IsDefense("snooper"))
	assert.False(t, IsDefense("crysknife"))

	assert.True(t, IsCheapHero("cheap-hero"))
	assert.True(t, IsCheapHero("cheap-heroine"))
	assert.False(t, IsCheapHero("kulon"))
}

func TestCounters(t *testing.T) {
	assert.True(t, Counters("shield", "crysknife"))
	assert.True(t, Counters("snooper", "gom-jabbar"))

	// Wrong category.
	assert.False(t, Counters("shield", "chaumas"))
	assert.False(t, Counters("snooper", "maula-pistol"))

	// Nothing counters a lasgun.
	assert.False(t, Counters("shield", "lasgun"))
	assert.False(t, Counters("snooper", "lasgun"))

	// Non-defense or unknown cards never counter.
	assert.False(t, Counters("crysknife", "crysknife"))
	assert.False(t, Counters("", "crysknife"))
	assert.False(t, Counters("shield", ""))
}

func TestIsLasgunShield(t *testing.T) {
	assert.True(t, IsLasgunShield("lasgun", "shield"))
	assert.False(t, IsLasgunShield("lasgun", "snooper"))
	assert.False(t, IsLasgunShield("crysknife", "shield"))
	assert.False(t, IsLasgunShield("lasgun", ""))
	assert.False(t, IsLasgunShield("", "shield"))
}

func TestDiscardAfterUse(t *testing.T) {
	assert.True(t, DiscardAfterUse("cheap-hero"))
	assert.False(t, DiscardAfterUse("crysknife"))
	assert.False(t, DiscardAfterUse("shield"))
}

func TestWeaponCategoryString(t *testing.T) {
	assert.Equal(t, "PROJECTILE", CategoryProjectile.String())
	assert.Equal(t, "POISON", CategoryPoison.String())
	assert.Equal(t, "LASGUN", CategoryLasgun.String())
	assert.Equal(t, "UNKNOWN", WeaponCategory(42).String())
}
