// Package testutil seeds a migrated SQLite database for package tests.
package testutil

import (
	"database/sql"
	"nft-ledger/internal/config"
	"nft-ledger/internal/database"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	PolicyID    = strings.Repeat("a", 56)
	Fingerprint = "asset1" + strings.Repeat("a", 38)
	Wallet      = "addr1" + strings.Repeat("q", 60)
)

func Ptr[T any](v T) *T {
	return &v
}

func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	sqlDB, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func Exec(t testing.TB, sqlDB *sql.DB, query string, args ...any) {
	t.Helper()
	_, err := sqlDB.Exec(query, args...)
	require.NoError(t, err)
}

func SeedUser(t testing.TB, sqlDB *sql.DB, id string, wallet *string) {
	t.Helper()
	Exec(t, sqlDB, `INSERT INTO users (id, username, cardano_wallet_address) VALUES (?, ?, ?)`, id, "user-"+id, wallet)
}

func SeedTemplate(t testing.TB, sqlDB *sql.DB, id, name string, archetype, rarity *string) {
	t.Helper()
	Exec(t, sqlDB, `INSERT INTO characters (id, name, archetype, rarity, base_attack, base_defense, base_speed, base_health, base_mental_health)
		VALUES (?, ?, ?, ?, 12, 8, 5, 100, 90)`, id, name, archetype, rarity)
}

// SeedUserCharacter creates a character instance with every stat populated.
func SeedUserCharacter(t testing.TB, sqlDB *sql.DB, id, userID, characterID string, level int64) {
	t.Helper()
	Exec(t, sqlDB, `INSERT INTO user_characters (
			id, user_id, character_id, serial_number, level, experience, total_battles, total_wins,
			current_attack, current_defense, current_speed, current_max_health, current_mental_health,
			bond_level, acquired_at)
		VALUES (?, ?, ?, ?, ?, 1200, 8, 6, 40, 30, 20, 250, 80, 3, ?)`,
		id, userID, characterID, "SN-"+id, level, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func SeedPack(t testing.TB, sqlDB *sql.DB, id, name string, guaranteedContents *string) {
	t.Helper()
	Exec(t, sqlDB, `INSERT INTO card_packs (id, name, pack_type, guaranteed_contents) VALUES (?, ?, 'influencer', ?)`,
		id, name, guaranteedContents)
}

type CardSet struct {
	ID            string
	PackID        *string
	PolicyID      *string
	Active        *bool
	CurrentMinted *int64
	MaxSupply     *int64
	StartsAt      *time.Time
	EndsAt        *time.Time
}

// OpenCardSet is an active set with a policy, no window and room left.
func OpenCardSet(id string) CardSet {
	return CardSet{
		ID:            id,
		PolicyID:      Ptr(PolicyID),
		Active:        Ptr(true),
		CurrentMinted: Ptr(int64(0)),
		MaxSupply:     Ptr(int64(100)),
	}
}

func SeedCardSet(t testing.TB, sqlDB *sql.DB, s CardSet) {
	t.Helper()
	Exec(t, sqlDB, `INSERT INTO cardano_card_sets (
			id, card_pack_id, name, policy_id, minting_active, current_minted, max_supply,
			minting_starts_at, minting_ends_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.PackID, "set-"+s.ID, s.PolicyID, s.Active, s.CurrentMinted, s.MaxSupply, s.StartsAt, s.EndsAt)
}

func SeedMintedAsset(t testing.TB, sqlDB *sql.DB, userCharacterID string, policyID, fingerprint *string) {
	t.Helper()
	now := time.Now().UTC()
	Exec(t, sqlDB, `INSERT INTO cardano_nft_metadata (
			id, user_character_id, policy_id, asset_name, asset_fingerprint, on_chain_metadata,
			is_minted, minted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '{"name":"seeded","version":1}', 1, ?, ?, ?)`,
		"asset-"+userCharacterID, userCharacterID, policyID, "BlankWars_seeded_1", fingerprint, now, now, now)
}

type Position struct {
	ID                string
	UserID            *string
	UserCharacterID   string
	Tier              string
	Status            string
	StakedAt          time.Time
	LastCalculatedAt  time.Time
	Accrued           int64
	Claimed           int64
	BaseRewardsPerDay int64
}

func SeedPosition(t testing.TB, sqlDB *sql.DB, p Position) {
	t.Helper()
	if p.Tier == "" {
		p.Tier = "BRONZE"
	}
	if p.Status == "" {
		p.Status = "ACTIVE"
	}
	Exec(t, sqlDB, `INSERT INTO cardano_staking_positions (
			id, user_id, user_character_id, policy_id, asset_name, tier, status, staked_at,
			total_rewards_accrued, total_rewards_claimed, last_reward_calculated_at,
			base_rewards_per_day, xp_multiplier)
		VALUES (?, ?, ?, ?, 'BlankWars_seeded_1', ?, ?, ?, ?, ?, ?, ?, 1.0)`,
		p.ID, p.UserID, p.UserCharacterID, PolicyID, p.Tier, p.Status, p.StakedAt.UTC(),
		p.Accrued, p.Claimed, p.LastCalculatedAt.UTC(), p.BaseRewardsPerDay)
}

type Entry struct {
	ID        string
	Wallet    *string
	CardSetID *string
	Code      string
	Status    *string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func SeedAllowlistEntry(t testing.TB, sqlDB *sql.DB, e Entry) {
	t.Helper()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	Exec(t, sqlDB, `INSERT INTO influencer_mint_allowlist (
			id, wallet_address, card_set_id, claim_code, status, expires_at, allocation_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 'seeded', ?)`,
		e.ID, e.Wallet, e.CardSetID, e.Code, e.Status, e.ExpiresAt.UTC(), e.CreatedAt.UTC())
}

// Scalar reads a single value for assertions on stored state.
func Scalar[T any](t testing.TB, sqlDB *sql.DB, query string, args ...any) T {
	t.Helper()
	var v T
	require.NoError(t, sqlDB.QueryRow(query, args...).Scan(&v))
	return v
}
