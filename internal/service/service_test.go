package service

import (
	"context"
	"database/sql"
	"fmt"
	"nft-ledger/internal/api"
	"nft-ledger/internal/config"
	"nft-ledger/internal/db"
	"nft-ledger/internal/repository"
	"nft-ledger/internal/testutil"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) FetchWalletAssets(ctx context.Context, address string) (map[string]uint64, error) {
	args := m.Called(ctx, address)
	holdings, _ := args.Get(0).(map[string]uint64)
	return holdings, args.Error(1)
}

func (m *mockGateway) VerifyNftOwnership(ctx context.Context, address, fingerprint string) (bool, error) {
	args := m.Called(ctx, address, fingerprint)
	return args.Bool(0), args.Error(1)
}

func (m *mockGateway) ResolveStakeAddress(paymentAddress string) (string, error) {
	args := m.Called(paymentAddress)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) FetchDelegation(ctx context.Context, stakeAddress string) (*api.Delegation, error) {
	args := m.Called(ctx, stakeAddress)
	d, _ := args.Get(0).(*api.Delegation)
	return d, args.Error(1)
}

func (m *mockGateway) FetchAssetMetadata(ctx context.Context, fingerprint string) (*api.AssetInfo, error) {
	args := m.Called(ctx, fingerprint)
	info, _ := args.Get(0).(*api.AssetInfo)
	return info, args.Error(1)
}

// fakeBuilder records requests and answers with a synthetic tx hash, or err when set.
type fakeBuilder struct {
	err     error
	mints   []MintRequest
	updates []MetadataUpdateRequest
}

func (b *fakeBuilder) MintAsset(ctx context.Context, req MintRequest) (*MintReceipt, error) {
	b.mints = append(b.mints, req)
	if b.err != nil {
		return nil, b.err
	}
	return &MintReceipt{TxHash: fmt.Sprintf("mint-tx-%d", len(b.mints))}, nil
}

func (b *fakeBuilder) UpdateMetadata(ctx context.Context, req MetadataUpdateRequest) (*SyncReceipt, error) {
	b.updates = append(b.updates, req)
	if b.err != nil {
		return nil, b.err
	}
	return &SyncReceipt{TxHash: fmt.Sprintf("sync-tx-%d", len(b.updates))}, nil
}

type env struct {
	db        *sql.DB
	gateway   *mockGateway
	builder   *fakeBuilder
	minting   *MintingService
	staking   *StakingService
	allowlist *AllowlistService
	clock     time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	sqlDB := testutil.NewDB(t)
	queries := db.New(sqlDB)
	logger := zerolog.Nop()
	cfg := &config.Config{NFTImageBaseURL: "https://blankwars.com/nft"}

	characters := repository.NewCharacterRepository(queries, logger)
	assets := repository.NewAssetRepository(sqlDB, queries, logger)
	cardSets := repository.NewCardSetRepository(queries, logger)
	users := repository.NewUserRepository(queries, logger)
	positions := repository.NewStakingRepository(queries, logger)
	entries := repository.NewAllowlistRepository(sqlDB, queries, logger)

	e := &env{
		db:      sqlDB,
		gateway: new(mockGateway),
		builder: &fakeBuilder{},
		clock:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return e.clock }

	e.minting = NewMintingService(characters, assets, cardSets, users, e.gateway, e.builder, cfg, logger)
	e.minting.now = clock
	e.staking = NewStakingService(assets, users, positions, e.gateway, logger)
	e.staking.now = clock
	e.allowlist = NewAllowlistService(entries, cardSets, characters, users, e.builder, cfg, logger)
	e.allowlist.now = clock

	t.Cleanup(func() { e.gateway.AssertExpectations(t) })
	return e
}

// seedCharacter creates user u1 with a wallet owning a level 10 legendary Achilles (uc1).
func (e *env) seedCharacter(t *testing.T) {
	t.Helper()
	testutil.SeedUser(t, e.db, "u1", testutil.Ptr(testutil.Wallet))
	testutil.SeedTemplate(t, e.db, "achilles", "Achilles", testutil.Ptr("warrior"), testutil.Ptr("legendary"))
	testutil.SeedUserCharacter(t, e.db, "uc1", "u1", "achilles", 10)
}
