package service

import (
	"context"
	"nft-ledger/internal/domain"
	"nft-ledger/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMintStopsAtUnimplementedBuilder(t *testing.T) {
	e := newEnv(t)
	e.seedCharacter(t)
	testutil.SeedCardSet(t, e.db, testutil.OpenCardSet("set1"))
	e.minting.builder = NewUnimplementedTxBuilder()

	_, err := e.minting.Mint(context.Background(), "uc1", "u1", "set1")
	require.Error(t, err)
	assert.True(t, domain.IsNotImplemented(err))
	assert.Equal(t, domain.CodeNotImplemented, domain.CodeOf(err))

	// a shadow record exists but nothing was minted or counted
	assert.False(t, testutil.Scalar[bool](t, e.db, `SELECT is_minted FROM cardano_nft_metadata WHERE user_character_id = 'uc1'`))
	assert.Equal(t, int64(0), testutil.Scalar[int64](t, e.db, `SELECT current_minted FROM cardano_card_sets WHERE id = 'set1'`))

	// retrying is allowed while nothing is minted
	_, err = e.minting.Mint(context.Background(), "uc1", "u1", "set1")
	assert.True(t, domain.IsNotImplemented(err))
}

func TestMintRecordsAssetOnce(t *testing.T) {
	e := newEnv(t)
	e.seedCharacter(t)
	testutil.SeedCardSet(t, e.db, testutil.OpenCardSet("set1"))
	ctx := context.Background()

	res, err := e.minting.Mint(ctx, "uc1", "u1", "set1")
	require.NoError(t, err)
	assert.Equal(t, "mint-tx-1", res.TxHash)
	assert.Equal(t, testutil.PolicyID, res.PolicyID)
	assert.Equal(t, AssetName("Achilles", e.clock), res.AssetName)
	assert.Len(t, res.Fingerprint, 44)

	require.Len(t, e.builder.mints, 1)
	req := e.builder.mints[0]
	assert.Equal(t, testutil.Wallet, req.RecipientAddress)
	assert.Equal(t, "75.00", req.Metadata.Attributes.WinRate)

	record, err := e.minting.assets.GetByUserCharacter(ctx, "uc1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.IsMinted)
	assert.Equal(t, res.Fingerprint, *record.AssetFingerprint)
	assert.Equal(t, "u1", *record.MintedByUserID)
	assert.Equal(t, int64(1), testutil.Scalar[int64](t, e.db, `SELECT current_minted FROM cardano_card_sets WHERE id = 'set1'`))

	_, err = e.minting.Mint(ctx, "uc1", "u1", "set1")
	assert.Equal(t, domain.CodeCharacterAlreadyMinted, domain.CodeOf(err))
	assert.Len(t, e.builder.mints, 1)
}

func TestMintCheckOrder(t *testing.T) {
	e := newEnv(t)
	e.seedCharacter(t)
	testutil.SeedUser(t, e.db, "u2", nil)
	testutil.SeedTemplate(t, e.db, "ghost", "Ghost", nil, testutil.Ptr("rare"))
	testutil.SeedUserCharacter(t, e.db, "uc-ghost", "u1", "ghost", 1)

	past := e.clock.Add(-48 * time.Hour)
	future := e.clock.Add(48 * time.Hour)
	sold := func(s testutil.CardSet) testutil.CardSet {
		s.CurrentMinted = testutil.Ptr(int64(5))
		s.MaxSupply = testutil.Ptr(int64(5))
		return s
	}

	corrupt := testutil.OpenCardSet("corrupt")
	corrupt.Active = nil
	testutil.SeedCardSet(t, e.db, corrupt)

	noPolicy := testutil.OpenCardSet("no-policy")
	noPolicy.PolicyID = nil
	noPolicy.Active = testutil.Ptr(false)
	testutil.SeedCardSet(t, e.db, sold(noPolicy))

	inactive := testutil.OpenCardSet("inactive")
	inactive.Active = testutil.Ptr(false)
	inactive.StartsAt = &future
	testutil.SeedCardSet(t, e.db, sold(inactive))

	notStarted := testutil.OpenCardSet("not-started")
	notStarted.StartsAt = &future
	testutil.SeedCardSet(t, e.db, sold(notStarted))

	ended := testutil.OpenCardSet("ended")
	ended.EndsAt = &past
	testutil.SeedCardSet(t, e.db, sold(ended))

	testutil.SeedCardSet(t, e.db, sold(testutil.OpenCardSet("sold-out")))

	unbounded := testutil.OpenCardSet("unbounded")
	unbounded.MaxSupply = nil
	unbounded.StartsAt = &past
	unbounded.EndsAt = &future
	testutil.SeedCardSet(t, e.db, unbounded)

	tests := []struct {
		name      string
		character string
		user      string
		set       string
		want      domain.Code
	}{
		{"unknown character", "missing", "u1", "sold-out", domain.CodeCharacterNotFound},
		{"someone else's character", "uc1", "u2", "sold-out", domain.CodeCharacterNotFound},
		{"template missing archetype", "uc-ghost", "u1", "sold-out", domain.CodeCharacterDataIncomplete},
		{"unknown card set", "uc1", "u1", "missing", domain.CodeCardSetNotFound},
		{"card set missing active flag", "uc1", "u1", "corrupt", domain.CodeCardSetDataCorrupt},
		{"policy before everything", "uc1", "u1", "no-policy", domain.CodePolicyNotConfigured},
		{"inactive before window", "uc1", "u1", "inactive", domain.CodeMintingInactive},
		{"window start before supply", "uc1", "u1", "not-started", domain.CodeMintingNotStarted},
		{"window end before supply", "uc1", "u1", "ended", domain.CodeMintingEnded},
		{"supply cap", "uc1", "u1", "sold-out", domain.CodeMaxSupplyReached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.minting.Mint(context.Background(), tt.character, tt.user, tt.set)
			assert.Equal(t, tt.want, domain.CodeOf(err), "%v", err)
		})
	}
	assert.Empty(t, e.builder.mints)

	// open window with no supply cap
	_, err := e.minting.Mint(context.Background(), "uc1", "u1", "unbounded")
	require.NoError(t, err)
}

func TestMintRejectsIncompleteStats(t *testing.T) {
	e := newEnv(t)
	e.seedCharacter(t)
	testutil.SeedCardSet(t, e.db, testutil.OpenCardSet("set1"))
	testutil.Exec(t, e.db, `UPDATE user_characters SET bond_level = NULL, current_speed = NULL WHERE id = 'uc1'`)

	_, err := e.minting.Mint(context.Background(), "uc1", "u1", "set1")
	require.Error(t, err)
	assert.Equal(t, "CHARACTER_DATA_INCOMPLETE: Missing required fields: current_speed, bond_level", err.Error())
	assert.Empty(t, e.builder.mints)
}

func TestMintSupplyExhaustedByOtherMint(t *testing.T) {
	e := newEnv(t)
	e.seedCharacter(t)
	testutil.SeedUserCharacter(t, e.db, "uc2", "u1", "achilles", 3)
	set := testutil.OpenCardSet("set1")
	set.MaxSupply = testutil.Ptr(int64(1))
	testutil.SeedCardSet(t, e.db, set)
	ctx := context.Background()

	_, err := e.minting.Mint(ctx, "uc1", "u1", "set1")
	require.NoError(t, err)

	_, err = e.minting.Mint(ctx, "uc2", "u1", "set1")
	assert.Equal(t, domain.CodeMaxSupplyReached, domain.CodeOf(err))
	assert.Equal(t, int64(1), testutil.Scalar[int64](t, e.db, `SELECT current_minted FROM cardano_card_sets WHERE id = 'set1'`))
}

func TestSyncMetadataToChain(t *testing.T) {
	e := newEnv(t)
	e.seedCharacter(t)
	testutil.SeedUserCharacter(t, e.db, "uc2", "u1", "achilles", 3)
	testutil.SeedUserCharacter(t, e.db, "uc3", "u1", "achilles", 4)
	testutil.SeedMintedAsset(t, e.db, "uc1", testutil.Ptr(testutil.PolicyID), testutil.Ptr(testutil.Fingerprint))
	testutil.SeedMintedAsset(t, e.db, "uc2", testutil.Ptr(testutil.PolicyID), nil)
	ctx := context.Background()

	_, err := e.minting.SyncMetadataToChain(ctx, "uc3")
	assert.Equal(t, domain.CodeNftNotFound, domain.CodeOf(err))

	_, err = e.minting.SyncMetadataToChain(ctx, "uc2")
	assert.Equal(t, domain.CodeNftDataCorrupt, domain.CodeOf(err))

	e.minting.builder = NewUnimplementedTxBuilder()
	_, err = e.minting.SyncMetadataToChain(ctx, "uc1")
	assert.True(t, domain.IsNotImplemented(err))
	assert.Equal(t, 0, testutil.Scalar[int](t, e.db, `SELECT COUNT(*) FROM cardano_nft_metadata WHERE sync_tx_hash IS NOT NULL`))

	e.minting.builder = e.builder
	testutil.Exec(t, e.db, `UPDATE user_characters SET level = 11, total_wins = 7 WHERE id = 'uc1'`)

	res, err := e.minting.SyncMetadataToChain(ctx, "uc1")
	require.NoError(t, err)
	assert.Equal(t, "sync-tx-1", res.TxHash)
	assert.Equal(t, int64(11), res.Metadata.Attributes.Level)
	assert.Equal(t, "87.50", res.Metadata.Attributes.WinRate)

	require.Len(t, e.builder.updates, 1)
	assert.Equal(t, testutil.Fingerprint, e.builder.updates[0].AssetFingerprint)

	record, err := e.minting.assets.GetByUserCharacter(ctx, "uc1")
	require.NoError(t, err)
	require.NotNil(t, record.SyncTxHash)
	assert.Equal(t, "sync-tx-1", *record.SyncTxHash)
	require.NotNil(t, record.LastSyncedAt)
	assert.True(t, record.LastSyncedAt.Equal(e.clock))
	assert.Equal(t, int64(11), record.Metadata.Attributes.Level)
	assert.Equal(t, testutil.Fingerprint, *record.AssetFingerprint)
}

func TestVerifyOwnershipDelegatesToGateway(t *testing.T) {
	e := newEnv(t)
	e.gateway.On("VerifyNftOwnership", mock.Anything, testutil.Wallet, testutil.Fingerprint).Return(false, nil).Once()

	owns, err := e.minting.VerifyOwnership(context.Background(), testutil.Wallet, testutil.Fingerprint)
	require.NoError(t, err)
	assert.False(t, owns)
}
