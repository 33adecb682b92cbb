package service

import (
	"nft-ledger/internal/domain"
	"nft-ledger/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSnapshot() *domain.CharacterSnapshot {
	acquired := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.CharacterSnapshot{
		UserCharacterID:     "uc1",
		UserID:              "u1",
		CharacterID:         "achilles",
		Name:                testutil.Ptr("Achilles"),
		Archetype:           testutil.Ptr("warrior"),
		Rarity:              testutil.Ptr("legendary"),
		Level:               testutil.Ptr(int64(10)),
		Experience:          testutil.Ptr(int64(1200)),
		TotalBattles:        testutil.Ptr(int64(8)),
		TotalWins:           testutil.Ptr(int64(6)),
		CurrentAttack:       testutil.Ptr(int64(40)),
		CurrentDefense:      testutil.Ptr(int64(30)),
		CurrentSpeed:        testutil.Ptr(int64(20)),
		CurrentMaxHealth:    testutil.Ptr(int64(250)),
		CurrentMentalHealth: testutil.Ptr(int64(80)),
		BondLevel:           testutil.Ptr(int64(3)),
		SerialNumber:        testutil.Ptr("SN-uc1"),
		AcquiredAt:          &acquired,
	}
}

func TestBuildMetadata(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	m, err := BuildMetadata(fullSnapshot(), "https://blankwars.com/nft/", now)
	require.NoError(t, err)

	assert.Equal(t, "Achilles", m.Name)
	assert.Equal(t, "", m.Title)
	assert.Equal(t, "https://blankwars.com/nft/uc1.png", m.Image)
	assert.Equal(t, "A legendary warrior in Blank Wars", m.Description)
	assert.Equal(t, 1, m.Version)

	assert.Equal(t, domain.MetadataAttributes{
		Archetype:    "warrior",
		Rarity:       "legendary",
		Level:        10,
		Experience:   1200,
		TotalBattles: 8,
		TotalWins:    6,
		WinRate:      "75.00",
		Attack:       40,
		Defense:      30,
		Speed:        20,
		Health:       250,
		MentalHealth: 80,
		BondLevel:    3,
	}, m.Attributes)

	assert.True(t, m.Properties.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, "SN-uc1", m.Properties.SerialNumber)
	assert.Equal(t, "Blank Wars 2026", m.Properties.Origin)
	assert.Equal(t, "Cardano", m.Properties.Blockchain)
}

func TestBuildMetadataKeepsDisplayFields(t *testing.T) {
	c := fullSnapshot()
	c.Title = testutil.Ptr("Hero of Troy")
	c.ImageURL = testutil.Ptr("ipfs://achilles")
	c.Description = testutil.Ptr("Swift-footed")
	c.AcquiredAt = nil
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	m, err := BuildMetadata(c, "https://blankwars.com/nft", now)
	require.NoError(t, err)
	assert.Equal(t, "Hero of Troy", m.Title)
	assert.Equal(t, "ipfs://achilles", m.Image)
	assert.Equal(t, "Swift-footed", m.Description)
	assert.True(t, m.Properties.CreatedAt.Equal(now))
}

func TestBuildMetadataEnumeratesMissingFields(t *testing.T) {
	c := fullSnapshot()
	c.Archetype = nil
	c.Level = nil
	c.BondLevel = nil
	c.Title = nil
	c.SerialNumber = nil

	_, err := BuildMetadata(c, "https://blankwars.com/nft", time.Now())
	require.Error(t, err)
	assert.Equal(t, domain.CodeCharacterDataIncomplete, domain.CodeOf(err))
	assert.Equal(t, "CHARACTER_DATA_INCOMPLETE: Missing required fields: archetype, level, bond_level", err.Error())
}

func TestBuildMetadataEachRequiredField(t *testing.T) {
	unsetters := map[string]func(*domain.CharacterSnapshot){
		"name":                  func(c *domain.CharacterSnapshot) { c.Name = nil },
		"archetype":             func(c *domain.CharacterSnapshot) { c.Archetype = nil },
		"rarity":                func(c *domain.CharacterSnapshot) { c.Rarity = nil },
		"level":                 func(c *domain.CharacterSnapshot) { c.Level = nil },
		"experience":            func(c *domain.CharacterSnapshot) { c.Experience = nil },
		"total_battles":         func(c *domain.CharacterSnapshot) { c.TotalBattles = nil },
		"total_wins":            func(c *domain.CharacterSnapshot) { c.TotalWins = nil },
		"current_attack":        func(c *domain.CharacterSnapshot) { c.CurrentAttack = nil },
		"current_defense":       func(c *domain.CharacterSnapshot) { c.CurrentDefense = nil },
		"current_speed":         func(c *domain.CharacterSnapshot) { c.CurrentSpeed = nil },
		"current_max_health":    func(c *domain.CharacterSnapshot) { c.CurrentMaxHealth = nil },
		"current_mental_health": func(c *domain.CharacterSnapshot) { c.CurrentMentalHealth = nil },
		"bond_level":            func(c *domain.CharacterSnapshot) { c.BondLevel = nil },
	}
	require.Len(t, unsetters, 13)

	for field, unset := range unsetters {
		t.Run(field, func(t *testing.T) {
			c := fullSnapshot()
			unset(c)
			_, err := BuildMetadata(c, "https://blankwars.com/nft", time.Now())
			assert.Equal(t, domain.CodeCharacterDataIncomplete, domain.CodeOf(err))
			assert.True(t, strings.HasSuffix(err.Error(), ": "+field), err.Error())
		})
	}
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		wins, battles int64
		want          string
	}{
		{0, 0, "0.00"},
		{5, 0, "0.00"},
		{0, 10, "0.00"},
		{1, 3, "33.33"},
		{2, 3, "66.67"},
		{6, 8, "75.00"},
		{7, 7, "100.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WinRate(tt.wins, tt.battles), "%d/%d", tt.wins, tt.battles)
	}
}

func TestAssetName(t *testing.T) {
	at := time.UnixMilli(1767225600000)

	assert.Equal(t, "BlankWars_Achilles_1767225600000", AssetName("Achilles", at))
	assert.Equal(t, "BlankWars_SunWukon_1767225600000", AssetName("Sun Wukong", at))
	assert.Equal(t, "BlankWars_NonoCafe_1767225600000", AssetName("Ñoño Café", at))
	assert.Equal(t, "BlankWars__1767225600000", AssetName("  ", at))

	long := AssetName("Count Dracula the Undying Lord of the Night", at)
	assert.LessOrEqual(t, len(long), 32)
	assert.True(t, strings.HasPrefix(long, "BlankWars_CountDra"))
}
