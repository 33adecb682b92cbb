package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"nft-ledger/internal/db"
	"nft-ledger/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AssetRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewAssetRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *AssetRepository {
	return &AssetRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// MintCompletion is everything persisted once a mint transaction is confirmed.
type MintCompletion struct {
	UserCharacterID string
	UserID          string
	CardSetID       string
	PolicyID        string
	AssetName       string
	Fingerprint     string
	Metadata        *domain.AssetMetadata
	MintedAt        time.Time
}

func (r *AssetRepository) GetByUserCharacter(ctx context.Context, userCharacterID string) (*domain.AssetRecord, error) {
	row, err := r.queries.GetAssetByUserCharacter(ctx, userCharacterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	metadata, err := decodeMetadata(row.OnChainMetadata)
	if err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", userCharacterID, err)
	}

	return &domain.AssetRecord{
		ID:               row.ID,
		UserCharacterID:  row.UserCharacterID,
		PolicyID:         row.PolicyID,
		AssetName:        row.AssetName,
		AssetFingerprint: row.AssetFingerprint,
		Metadata:         metadata,
		IsMinted:         row.IsMinted,
		MintedAt:         row.MintedAt,
		MintedByUserID:   row.MintedByUserID,
		LastSyncedAt:     row.LastSyncedAt,
		SyncTxHash:       row.SyncTxHash,
	}, nil
}

// GetStakeable returns the minted asset for a character instance, or nil
// when none is minted.
func (r *AssetRepository) GetStakeable(ctx context.Context, userCharacterID string) (*domain.StakeableAsset, error) {
	row, err := r.queries.GetMintedAssetForStaking(ctx, userCharacterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.StakeableAsset{
		AssetRecord: domain.AssetRecord{
			ID:               row.ID,
			UserCharacterID:  row.UserCharacterID,
			PolicyID:         row.PolicyID,
			AssetName:        row.AssetName,
			AssetFingerprint: row.AssetFingerprint,
			IsMinted:         row.IsMinted,
			MintedAt:         row.MintedAt,
			MintedByUserID:   row.MintedByUserID,
			LastSyncedAt:     row.LastSyncedAt,
			SyncTxHash:       row.SyncTxHash,
		},
		Level:  row.Level,
		Rarity: row.Rarity,
	}, nil
}

// SaveShadow records a not-yet-minted asset for a mint attempt. A minted
// record is never overwritten.
func (r *AssetRepository) SaveShadow(ctx context.Context, userCharacterID, policyID, assetName string, metadata *domain.AssetMetadata, at time.Time) error {
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	n, err := r.queries.UpsertAssetShadow(ctx, db.UpsertAssetShadowParams{
		ID:              uuid.NewString(),
		UserCharacterID: userCharacterID,
		PolicyID:        policyID,
		AssetName:       assetName,
		OnChainMetadata: string(encoded),
		CreatedAt:       at,
		UpdatedAt:       at,
	})
	if err != nil {
		return fmt.Errorf("failed to save asset record: %w", err)
	}
	if n == 0 {
		return domain.Errorf(domain.CodeCharacterAlreadyMinted, "character %s already has a minted asset", userCharacterID)
	}
	return nil
}

// FinalizeMint bumps the card set supply and promotes the asset record to
// minted as one transaction.
func (r *AssetRepository) FinalizeMint(ctx context.Context, c MintCompletion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := finalizeMint(ctx, r.queries.WithTx(tx), c); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mint: %w", err)
	}

	r.logger.Info().
		Str("user_character_id", c.UserCharacterID).
		Str("card_set_id", c.CardSetID).
		Str("asset_fingerprint", c.Fingerprint).
		Msg("mint recorded")
	return nil
}

func finalizeMint(ctx context.Context, qtx *db.Queries, c MintCompletion) error {
	encoded, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	n, err := qtx.UpsertAssetShadow(ctx, db.UpsertAssetShadowParams{
		ID:              uuid.NewString(),
		UserCharacterID: c.UserCharacterID,
		PolicyID:        c.PolicyID,
		AssetName:       c.AssetName,
		OnChainMetadata: string(encoded),
		CreatedAt:       c.MintedAt,
		UpdatedAt:       c.MintedAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.CodeCharacterAlreadyMinted, "character %s already has an asset record", c.UserCharacterID)
		}
		return fmt.Errorf("failed to save asset record: %w", err)
	}
	if n == 0 {
		return domain.Errorf(domain.CodeCharacterAlreadyMinted, "character %s already has a minted asset", c.UserCharacterID)
	}

	n, err = qtx.MarkAssetMinted(ctx, db.MarkAssetMintedParams{
		PolicyID:         c.PolicyID,
		AssetName:        c.AssetName,
		AssetFingerprint: c.Fingerprint,
		OnChainMetadata:  string(encoded),
		MintedAt:         c.MintedAt,
		MintedByUserID:   c.UserID,
		UserCharacterID:  c.UserCharacterID,
	})
	if err != nil {
		return fmt.Errorf("failed to mark asset minted: %w", err)
	}
	if n == 0 {
		return domain.Errorf(domain.CodeCharacterAlreadyMinted, "character %s already has a minted asset", c.UserCharacterID)
	}

	n, err = qtx.IncrementCardSetMinted(ctx, c.CardSetID)
	if err != nil {
		return fmt.Errorf("failed to increment card set supply: %w", err)
	}
	if n == 0 {
		return domain.Errorf(domain.CodeMaxSupplyReached, "card set %s has no supply left", c.CardSetID)
	}
	return nil
}

func (r *AssetRepository) UpdateSync(ctx context.Context, userCharacterID string, metadata *domain.AssetMetadata, txHash string, at time.Time) error {
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	n, err := r.queries.UpdateAssetSync(ctx, db.UpdateAssetSyncParams{
		OnChainMetadata: string(encoded),
		LastSyncedAt:    at,
		SyncTxHash:      txHash,
		UserCharacterID: userCharacterID,
	})
	if err != nil {
		return fmt.Errorf("failed to update metadata sync: %w", err)
	}
	if n == 0 {
		return domain.Errorf(domain.CodeNftNotFound, "no minted asset for character %s", userCharacterID)
	}
	return nil
}

func decodeMetadata(raw *string) (*domain.AssetMetadata, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var m domain.AssetMetadata
	if err := json.Unmarshal([]byte(*raw), &m); err != nil {
		return nil, err
	}
	return &m, nil
}
