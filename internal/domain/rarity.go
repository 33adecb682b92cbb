package domain

import "strings"

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
)

var rarityLadder = []Rarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
	RarityMythic,
}

// Ordinal returns the position on the ladder, or -1 for an unknown rarity.
func (r Rarity) Ordinal() int {
	norm := Rarity(strings.ToLower(strings.TrimSpace(string(r))))
	for i, step := range rarityLadder {
		if step == norm {
			return i
		}
	}
	return -1
}

func ParseTier(s string) (Tier, bool) {
	switch t := Tier(strings.ToUpper(strings.TrimSpace(s))); t {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return t, true
	}
	return "", false
}
