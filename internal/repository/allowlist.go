package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"nft-ledger/internal/db"
	"nft-ledger/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AllowlistRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewAllowlistRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *AllowlistRepository {
	return &AllowlistRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

type CreateEntryParams struct {
	WalletAddress    string
	CardSetID        string
	ClaimCode        string
	ExpiresAt        time.Time
	AllocatedBy      *string
	AllocationReason string
	CreatedAt        time.Time
}

// ClaimCompletion is everything persisted once an influencer mint is confirmed.
type ClaimCompletion struct {
	EntryID string
	TxHash  string
	Mint    MintCompletion
}

func (r *AllowlistRepository) GetByCode(ctx context.Context, claimCode string) (*domain.AllowlistEntry, error) {
	row, err := r.queries.GetAllowlistEntryByCode(ctx, claimCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e := toAllowlistEntry(row)
	return &e, nil
}

func (r *AllowlistRepository) GetByID(ctx context.Context, id string) (*domain.AllowlistEntry, error) {
	row, err := r.queries.GetAllowlistEntryByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e := toAllowlistEntry(row)
	return &e, nil
}

func (r *AllowlistRepository) Create(ctx context.Context, p CreateEntryParams) (*domain.AllowlistEntry, error) {
	id := uuid.NewString()
	err := r.queries.CreateAllowlistEntry(ctx, db.CreateAllowlistEntryParams{
		ID:               id,
		WalletAddress:    p.WalletAddress,
		CardSetID:        p.CardSetID,
		ClaimCode:        p.ClaimCode,
		ExpiresAt:        p.ExpiresAt,
		AllocatedBy:      p.AllocatedBy,
		AllocationReason: p.AllocationReason,
		CreatedAt:        p.CreatedAt,
	})
	if isUniqueViolation(err) {
		return nil, domain.Errorf(domain.CodeClaimCodeExists, "claim code %s is already allocated", p.ClaimCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create allowlist entry: %w", err)
	}

	return r.GetByID(ctx, id)
}

// MarkExpired moves a PENDING entry to EXPIRED and reports whether it did.
func (r *AllowlistRepository) MarkExpired(ctx context.Context, id string) (bool, error) {
	n, err := r.queries.ExpireAllowlistEntry(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to expire allowlist entry: %w", err)
	}
	return n > 0, nil
}

func (r *AllowlistRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.queries.ExpireStaleAllowlistEntries(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale allowlist entries: %w", err)
	}
	return n, nil
}

func (r *AllowlistRepository) Revoke(ctx context.Context, id string) (bool, error) {
	n, err := r.queries.RevokeAllowlistEntry(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to revoke allowlist entry: %w", err)
	}
	return n > 0, nil
}

func (r *AllowlistRepository) ListByWallet(ctx context.Context, walletAddress string) ([]domain.AllowlistEntry, error) {
	rows, err := r.queries.ListAllowlistEntriesByWallet(ctx, walletAddress)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.AllowlistEntry, len(rows))
	for i, row := range rows {
		entries[i] = toAllowlistEntry(row.InfluencerMintAllowlist)
		entries[i].PolicyID = row.PolicyID
		entries[i].PackName = row.PackName
	}
	return entries, nil
}

// CompleteClaim marks the code CLAIMED, records the influencer mint and
// finalizes the asset as one transaction.
func (r *AllowlistRepository) CompleteClaim(ctx context.Context, c ClaimCompletion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	n, err := qtx.ClaimAllowlistEntry(ctx, db.ClaimAllowlistEntryParams{
		ClaimedByUserID: c.Mint.UserID,
		ClaimedAt:       c.Mint.MintedAt,
		TxHash:          c.TxHash,
		ID:              c.EntryID,
	})
	if err != nil {
		return fmt.Errorf("failed to claim allowlist entry: %w", err)
	}
	if n == 0 {
		return domain.Errorf(domain.CodeClaimCodeAlreadyUsed, "allowlist entry %s is no longer pending", c.EntryID)
	}

	err = qtx.CreateInfluencerMint(ctx, db.CreateInfluencerMintParams{
		ID:               uuid.NewString(),
		AllowlistEntryID: c.EntryID,
		UserID:           c.Mint.UserID,
		UserCharacterID:  c.Mint.UserCharacterID,
		PolicyID:         c.Mint.PolicyID,
		AssetName:        c.Mint.AssetName,
		AssetFingerprint: c.Mint.Fingerprint,
		TxHash:           c.TxHash,
		CreatedAt:        c.Mint.MintedAt,
	})
	if isUniqueViolation(err) {
		return domain.Errorf(domain.CodeClaimCodeAlreadyUsed, "allowlist entry %s already has a mint", c.EntryID)
	}
	if err != nil {
		return fmt.Errorf("failed to record influencer mint: %w", err)
	}

	if err := finalizeMint(ctx, qtx, c.Mint); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claim: %w", err)
	}

	r.logger.Info().
		Str("allowlist_id", c.EntryID).
		Str("user_id", c.Mint.UserID).
		Str("tx_hash", c.TxHash).
		Msg("allowlist claim completed")
	return nil
}

func toAllowlistEntry(row db.InfluencerMintAllowlist) domain.AllowlistEntry {
	var status *domain.ClaimStatus
	if row.Status != nil {
		s := domain.ClaimStatus(*row.Status)
		status = &s
	}

	return domain.AllowlistEntry{
		ID:               row.ID,
		WalletAddress:    row.WalletAddress,
		CardSetID:        row.CardSetID,
		ClaimCode:        row.ClaimCode,
		Status:           status,
		ExpiresAt:        row.ExpiresAt,
		AllocatedBy:      row.AllocatedBy,
		AllocationReason: row.AllocationReason,
		CreatedAt:        row.CreatedAt,
		ClaimedByUserID:  row.ClaimedByUserID,
		ClaimedAt:        row.ClaimedAt,
		TxHash:           row.TxHash,
	}
}
