package repository

import (
	"context"
	"database/sql"
	"nft-ledger/internal/db"
	"nft-ledger/internal/domain"
	"nft-ledger/internal/testutil"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*sql.DB, *db.Queries) {
	t.Helper()
	sqlDB := testutil.NewDB(t)
	testutil.SeedUser(t, sqlDB, "u1", testutil.Ptr(testutil.Wallet))
	testutil.SeedTemplate(t, sqlDB, "hero", "Achilles", testutil.Ptr("warrior"), testutil.Ptr("epic"))
	testutil.SeedUserCharacter(t, sqlDB, "uc1", "u1", "hero", 12)
	return sqlDB, db.New(sqlDB)
}

func completion(cardSetID string) MintCompletion {
	return MintCompletion{
		UserCharacterID: "uc1",
		UserID:          "u1",
		CardSetID:       cardSetID,
		PolicyID:        testutil.PolicyID,
		AssetName:       "BlankWars_Achilles_1",
		Fingerprint:     testutil.Fingerprint,
		Metadata:        &domain.AssetMetadata{Name: "Achilles", Version: 1},
		MintedAt:        time.Now().UTC(),
	}
}

func TestFinalizeMintRecordsAssetAndSupply(t *testing.T) {
	sqlDB, queries := setup(t)
	testutil.SeedCardSet(t, sqlDB, testutil.OpenCardSet("set1"))
	repo := NewAssetRepository(sqlDB, queries, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.SaveShadow(ctx, "uc1", testutil.PolicyID, "BlankWars_Achilles_1", &domain.AssetMetadata{Name: "Achilles"}, time.Now().UTC()))

	shadow, err := repo.GetByUserCharacter(ctx, "uc1")
	require.NoError(t, err)
	require.NotNil(t, shadow)
	assert.False(t, shadow.IsMinted)
	assert.Nil(t, shadow.AssetFingerprint)

	require.NoError(t, repo.FinalizeMint(ctx, completion("set1")))

	rec, err := repo.GetByUserCharacter(ctx, "uc1")
	require.NoError(t, err)
	assert.True(t, rec.IsMinted)
	assert.Equal(t, testutil.Fingerprint, *rec.AssetFingerprint)
	assert.Equal(t, "Achilles", rec.Metadata.Name)
	assert.Equal(t, int64(1), testutil.Scalar[int64](t, sqlDB, `SELECT current_minted FROM cardano_card_sets WHERE id = 'set1'`))

	err = repo.FinalizeMint(ctx, completion("set1"))
	assert.Equal(t, domain.CodeCharacterAlreadyMinted, domain.CodeOf(err))
	assert.Equal(t, int64(1), testutil.Scalar[int64](t, sqlDB, `SELECT current_minted FROM cardano_card_sets WHERE id = 'set1'`))

	err = repo.SaveShadow(ctx, "uc1", testutil.PolicyID, "other", &domain.AssetMetadata{}, time.Now().UTC())
	assert.Equal(t, domain.CodeCharacterAlreadyMinted, domain.CodeOf(err))
}

func TestFinalizeMintStopsAtSupplyCap(t *testing.T) {
	sqlDB, queries := setup(t)
	full := testutil.OpenCardSet("full")
	full.CurrentMinted = testutil.Ptr(int64(5))
	full.MaxSupply = testutil.Ptr(int64(5))
	testutil.SeedCardSet(t, sqlDB, full)
	repo := NewAssetRepository(sqlDB, queries, zerolog.Nop())

	err := repo.FinalizeMint(context.Background(), completion("full"))
	assert.Equal(t, domain.CodeMaxSupplyReached, domain.CodeOf(err))

	// the transaction rolled back, so no asset record was promoted
	rec, err := repo.GetByUserCharacter(context.Background(), "uc1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGetStakeableOnlyReturnsMinted(t *testing.T) {
	sqlDB, queries := setup(t)
	repo := NewAssetRepository(sqlDB, queries, zerolog.Nop())
	ctx := context.Background()

	got, err := repo.GetStakeable(ctx, "uc1")
	require.NoError(t, err)
	assert.Nil(t, got)

	testutil.SeedMintedAsset(t, sqlDB, "uc1", testutil.Ptr(testutil.PolicyID), testutil.Ptr(testutil.Fingerprint))
	got, err = repo.GetStakeable(ctx, "uc1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(12), *got.Level)
	assert.Equal(t, "epic", *got.Rarity)
}

func TestStakingCreateEnforcesSingleActive(t *testing.T) {
	_, queries := setup(t)
	repo := NewStakingRepository(queries, zerolog.Nop())
	ctx := context.Background()
	now := time.Now().UTC()

	params := CreatePositionParams{
		ID:                "p1",
		UserID:            "u1",
		UserCharacterID:   "uc1",
		Tier:              domain.TierBronze,
		StakedAt:          now,
		BaseRewardsPerDay: 10,
		XPMultiplier:      1.0,
	}
	require.NoError(t, repo.Create(ctx, params))

	active, err := repo.HasActivePosition(ctx, "uc1")
	require.NoError(t, err)
	assert.True(t, active)

	params.ID = "p2"
	err = repo.Create(ctx, params)
	assert.Equal(t, domain.CodeCharacterAlreadyStaked, domain.CodeOf(err))

	settled, err := repo.Settle(ctx, "p1", 5, 5, now)
	require.NoError(t, err)
	assert.True(t, settled)

	settled, err = repo.Settle(ctx, "p1", 5, 5, now)
	require.NoError(t, err)
	assert.False(t, settled, "an UNSTAKED position cannot be settled again")

	require.NoError(t, repo.Create(ctx, params), "a fresh position is allowed after unstaking")
}

func TestStakingViews(t *testing.T) {
	sqlDB, queries := setup(t)
	testutil.SeedUserCharacter(t, sqlDB, "uc2", "u1", "hero", 3)
	repo := NewStakingRepository(queries, zerolog.Nop())
	base := time.Now().UTC().Add(-48 * time.Hour)

	testutil.SeedPosition(t, sqlDB, testutil.Position{ID: "older", UserID: testutil.Ptr("u1"), UserCharacterID: "uc1", StakedAt: base, LastCalculatedAt: base, BaseRewardsPerDay: 10})
	testutil.SeedPosition(t, sqlDB, testutil.Position{ID: "newer", UserID: testutil.Ptr("u1"), UserCharacterID: "uc2", StakedAt: base.Add(time.Hour), LastCalculatedAt: base, BaseRewardsPerDay: 10})

	views, err := repo.ListViewsByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "newer", views[0].ID)
	assert.Equal(t, "Achilles", *views[0].CharacterName)
	assert.Equal(t, "warrior", *views[0].Archetype)

	v, err := repo.GetView(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	tier, err := repo.GetTierConfig(context.Background(), domain.TierGold)
	require.NoError(t, err)
	assert.Equal(t, "epic", *tier.MinRarity)
	assert.Equal(t, int64(10), tier.MinLevel)
}

func TestAllowlistLifecycle(t *testing.T) {
	sqlDB, queries := setup(t)
	testutil.SeedPack(t, sqlDB, "pack1", "Influencer Pack", nil)
	set := testutil.OpenCardSet("set1")
	set.PackID = testutil.Ptr("pack1")
	testutil.SeedCardSet(t, sqlDB, set)
	repo := NewAllowlistRepository(sqlDB, queries, zerolog.Nop())
	ctx := context.Background()
	now := time.Now().UTC()

	entry, err := repo.Create(ctx, CreateEntryParams{
		WalletAddress:    testutil.Wallet,
		CardSetID:        "set1",
		ClaimCode:        "CREATOR2026",
		ExpiresAt:        now.Add(24 * time.Hour),
		AllocationReason: "launch",
		CreatedAt:        now,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimPending, *entry.Status)

	_, err = repo.Create(ctx, CreateEntryParams{
		WalletAddress: testutil.Wallet, CardSetID: "set1", ClaimCode: "CREATOR2026",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	})
	assert.Equal(t, domain.CodeClaimCodeExists, domain.CodeOf(err))

	claim := ClaimCompletion{EntryID: entry.ID, TxHash: "tx-1", Mint: completion("set1")}
	require.NoError(t, repo.CompleteClaim(ctx, claim))

	got, err := repo.GetByCode(ctx, "CREATOR2026")
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimClaimed, *got.Status)
	assert.Equal(t, "u1", *got.ClaimedByUserID)
	assert.Equal(t, int64(1), testutil.Scalar[int64](t, sqlDB, `SELECT COUNT(*) FROM influencer_mints`))

	err = repo.CompleteClaim(ctx, claim)
	assert.Equal(t, domain.CodeClaimCodeAlreadyUsed, domain.CodeOf(err))

	listed, err := repo.ListByWallet(ctx, testutil.Wallet)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, testutil.PolicyID, *listed[0].PolicyID)
	assert.Equal(t, "Influencer Pack", *listed[0].PackName)
}

func TestAllowlistExpiryAndRevoke(t *testing.T) {
	sqlDB, queries := setup(t)
	testutil.SeedCardSet(t, sqlDB, testutil.OpenCardSet("set1"))
	repo := NewAllowlistRepository(sqlDB, queries, zerolog.Nop())
	ctx := context.Background()
	now := time.Now().UTC()

	testutil.SeedAllowlistEntry(t, sqlDB, testutil.Entry{ID: "stale", Wallet: testutil.Ptr(testutil.Wallet), CardSetID: testutil.Ptr("set1"), Code: "STALECODE1", Status: testutil.Ptr("PENDING"), ExpiresAt: now.Add(-time.Hour)})
	testutil.SeedAllowlistEntry(t, sqlDB, testutil.Entry{ID: "fresh", Wallet: testutil.Ptr(testutil.Wallet), CardSetID: testutil.Ptr("set1"), Code: "FRESHCODE1", Status: testutil.Ptr("PENDING"), ExpiresAt: now.Add(time.Hour)})

	n, err := repo.ExpireStale(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	expired, err := repo.MarkExpired(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, expired, "already EXPIRED")

	revoked, err := repo.Revoke(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.Revoke(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestUserAndCharacterLookups(t *testing.T) {
	sqlDB, queries := setup(t)
	testutil.SeedUser(t, sqlDB, "nowallet", nil)
	users := NewUserRepository(queries, zerolog.Nop())
	chars := NewCharacterRepository(queries, zerolog.Nop())
	ctx := context.Background()

	wallet, err := users.GetWalletAddress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, testutil.Wallet, wallet)

	for _, id := range []string{"nowallet", "ghost"} {
		wallet, err = users.GetWalletAddress(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, wallet)
	}

	snap, err := chars.GetSnapshot(ctx, "uc1")
	require.NoError(t, err)
	assert.Equal(t, "Achilles", *snap.Name)
	assert.Equal(t, int64(8), *snap.TotalBattles)

	tpl, err := chars.GetTemplate(ctx, "hero")
	require.NoError(t, err)
	id, err := chars.CreateFromTemplate(ctx, "u1", tpl, time.Now().UTC())
	require.NoError(t, err)

	created, err := chars.GetSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), *created.Level)
	assert.Equal(t, int64(12), *created.CurrentAttack)

	require.NoError(t, chars.Delete(ctx, id))
	gone, err := chars.GetSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
