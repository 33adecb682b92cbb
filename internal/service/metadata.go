package service

import (
	"fmt"
	"nft-ledger/internal/cardano"
	"nft-ledger/internal/constants"
	"nft-ledger/internal/domain"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/unidecode"
)

// BuildMetadata renders the CIP-68 datum for a character. Every stat is
// required; display fields fall back to defaults.
func BuildMetadata(c *domain.CharacterSnapshot, imageBaseURL string, now time.Time) (*domain.AssetMetadata, error) {
	if missing := missingFields(c); len(missing) > 0 {
		return nil, domain.Errorf(domain.CodeCharacterDataIncomplete, "Missing required fields: %s", strings.Join(missing, ", "))
	}

	m := &domain.AssetMetadata{
		Name:        *c.Name,
		Title:       deref(c.Title),
		Image:       deref(c.ImageURL),
		Description: deref(c.Description),
		Version:     constants.MetadataVersion,
		Attributes: domain.MetadataAttributes{
			Archetype:    *c.Archetype,
			Rarity:       *c.Rarity,
			Level:        *c.Level,
			Experience:   *c.Experience,
			TotalBattles: *c.TotalBattles,
			TotalWins:    *c.TotalWins,
			WinRate:      WinRate(*c.TotalWins, *c.TotalBattles),
			Attack:       *c.CurrentAttack,
			Defense:      *c.CurrentDefense,
			Speed:        *c.CurrentSpeed,
			Health:       *c.CurrentMaxHealth,
			MentalHealth: *c.CurrentMentalHealth,
			BondLevel:    *c.BondLevel,
		},
		Properties: domain.MetadataProperties{
			CreatedAt:    now.UTC(),
			SerialNumber: deref(c.SerialNumber),
			Origin:       constants.MetadataOrigin,
			Blockchain:   constants.MetadataBlockchain,
		},
	}

	if m.Image == "" {
		m.Image = fmt.Sprintf("%s/%s.png", strings.TrimRight(imageBaseURL, "/"), c.UserCharacterID)
	}
	if m.Description == "" {
		m.Description = constants.DefaultDescription
	}
	if c.AcquiredAt != nil {
		m.Properties.CreatedAt = c.AcquiredAt.UTC()
	}
	return m, nil
}

func missingFields(c *domain.CharacterSnapshot) []string {
	required := []struct {
		name    string
		present bool
	}{
		{"name", c.Name != nil},
		{"archetype", c.Archetype != nil},
		{"rarity", c.Rarity != nil},
		{"level", c.Level != nil},
		{"experience", c.Experience != nil},
		{"total_battles", c.TotalBattles != nil},
		{"total_wins", c.TotalWins != nil},
		{"current_attack", c.CurrentAttack != nil},
		{"current_defense", c.CurrentDefense != nil},
		{"current_speed", c.CurrentSpeed != nil},
		{"current_max_health", c.CurrentMaxHealth != nil},
		{"current_mental_health", c.CurrentMentalHealth != nil},
		{"bond_level", c.BondLevel != nil},
	}

	var missing []string
	for _, f := range required {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// WinRate is wins/battles as a percentage with two decimals, "0.00" with no battles.
func WinRate(wins, battles int64) string {
	if battles <= 0 {
		return "0.00"
	}
	return strconv.FormatFloat(float64(wins)/float64(battles)*100, 'f', 2, 64)
}

// AssetName derives the on-chain asset name from the character name and the
// mint time. The name part is transliterated to ASCII, stripped to letters
// and digits, and cut so the whole name fits the ledger's 32-byte limit.
func AssetName(characterName string, at time.Time) string {
	suffix := "_" + strconv.FormatInt(at.UnixMilli(), 10)
	prefix := constants.AssetNamePrefix + "_"

	var b strings.Builder
	for _, r := range unidecode.Unidecode(characterName) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	name := b.String()
	if room := cardano.MaxAssetNameLength - len(prefix) - len(suffix); len(name) > room {
		name = name[:max(room, 0)]
	}
	return prefix + name + suffix
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
