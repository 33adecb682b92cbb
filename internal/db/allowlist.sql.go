package db

import (
	"context"
	"time"
)

const allowlistColumns = `
SELECT id, wallet_address, card_set_id, claim_code, status, expires_at, allocated_by,
       allocation_reason, claimed_by_user_id, claimed_at, tx_hash, created_at
FROM influencer_mint_allowlist
`

const getAllowlistEntryByCode = allowlistColumns + `WHERE claim_code = ?
`

const getAllowlistEntryByID = allowlistColumns + `WHERE id = ?
`

func scanAllowlistEntry(row scanner) (InfluencerMintAllowlist, error) {
	var i InfluencerMintAllowlist
	err := row.Scan(
		&i.ID,
		&i.WalletAddress,
		&i.CardSetID,
		&i.ClaimCode,
		&i.Status,
		&i.ExpiresAt,
		&i.AllocatedBy,
		&i.AllocationReason,
		&i.ClaimedByUserID,
		&i.ClaimedAt,
		&i.TxHash,
		&i.CreatedAt,
	)
	return i, err
}

func (q *Queries) GetAllowlistEntryByCode(ctx context.Context, claimCode string) (InfluencerMintAllowlist, error) {
	return scanAllowlistEntry(q.db.QueryRowContext(ctx, getAllowlistEntryByCode, claimCode))
}

func (q *Queries) GetAllowlistEntryByID(ctx context.Context, id string) (InfluencerMintAllowlist, error) {
	return scanAllowlistEntry(q.db.QueryRowContext(ctx, getAllowlistEntryByID, id))
}

const createAllowlistEntry = `
INSERT INTO influencer_mint_allowlist (
    id, wallet_address, card_set_id, claim_code, status, expires_at,
    allocated_by, allocation_reason, created_at
) VALUES (?, ?, ?, ?, 'PENDING', ?, ?, ?, ?)
`

type CreateAllowlistEntryParams struct {
	ID               string
	WalletAddress    string
	CardSetID        string
	ClaimCode        string
	ExpiresAt        time.Time
	AllocatedBy      *string
	AllocationReason string
	CreatedAt        time.Time
}

func (q *Queries) CreateAllowlistEntry(ctx context.Context, arg CreateAllowlistEntryParams) error {
	_, err := q.db.ExecContext(ctx, createAllowlistEntry,
		arg.ID,
		arg.WalletAddress,
		arg.CardSetID,
		arg.ClaimCode,
		arg.ExpiresAt,
		arg.AllocatedBy,
		arg.AllocationReason,
		arg.CreatedAt,
	)
	return err
}

const expireAllowlistEntry = `
UPDATE influencer_mint_allowlist SET status = 'EXPIRED'
WHERE id = ? AND status = 'PENDING'
`

func (q *Queries) ExpireAllowlistEntry(ctx context.Context, id string) (int64, error) {
	return execRows(ctx, q, expireAllowlistEntry, id)
}

const expireStaleAllowlistEntries = `
UPDATE influencer_mint_allowlist SET status = 'EXPIRED'
WHERE status = 'PENDING' AND expires_at < ?
`

func (q *Queries) ExpireStaleAllowlistEntries(ctx context.Context, now time.Time) (int64, error) {
	return execRows(ctx, q, expireStaleAllowlistEntries, now)
}

const claimAllowlistEntry = `
UPDATE influencer_mint_allowlist
SET status = 'CLAIMED',
    claimed_by_user_id = ?,
    claimed_at = ?,
    tx_hash = ?
WHERE id = ? AND status = 'PENDING'
`

type ClaimAllowlistEntryParams struct {
	ClaimedByUserID string
	ClaimedAt       time.Time
	TxHash          string
	ID              string
}

// ClaimAllowlistEntry is the single-use transition; zero rows affected
// means the code was no longer PENDING.
func (q *Queries) ClaimAllowlistEntry(ctx context.Context, arg ClaimAllowlistEntryParams) (int64, error) {
	return execRows(ctx, q, claimAllowlistEntry,
		arg.ClaimedByUserID,
		arg.ClaimedAt,
		arg.TxHash,
		arg.ID,
	)
}

const revokeAllowlistEntry = `
UPDATE influencer_mint_allowlist SET status = 'REVOKED'
WHERE id = ? AND status = 'PENDING'
`

func (q *Queries) RevokeAllowlistEntry(ctx context.Context, id string) (int64, error) {
	return execRows(ctx, q, revokeAllowlistEntry, id)
}

const listAllowlistEntriesByWallet = `
SELECT a.id, a.wallet_address, a.card_set_id, a.claim_code, a.status, a.expires_at, a.allocated_by,
       a.allocation_reason, a.claimed_by_user_id, a.claimed_at, a.tx_hash, a.created_at,
       s.policy_id, p.name
FROM influencer_mint_allowlist a
LEFT JOIN cardano_card_sets s ON s.id = a.card_set_id
LEFT JOIN card_packs p ON p.id = s.card_pack_id
WHERE a.wallet_address = ?
ORDER BY a.created_at DESC
`

type ListAllowlistEntriesByWalletRow struct {
	InfluencerMintAllowlist
	PolicyID *string
	PackName *string
}

func (q *Queries) ListAllowlistEntriesByWallet(ctx context.Context, walletAddress string) ([]ListAllowlistEntriesByWalletRow, error) {
	rows, err := q.db.QueryContext(ctx, listAllowlistEntriesByWallet, walletAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListAllowlistEntriesByWalletRow
	for rows.Next() {
		var i ListAllowlistEntriesByWalletRow
		if err := rows.Scan(
			&i.ID,
			&i.WalletAddress,
			&i.CardSetID,
			&i.ClaimCode,
			&i.Status,
			&i.ExpiresAt,
			&i.AllocatedBy,
			&i.AllocationReason,
			&i.ClaimedByUserID,
			&i.ClaimedAt,
			&i.TxHash,
			&i.CreatedAt,
			&i.PolicyID,
			&i.PackName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createInfluencerMint = `
INSERT INTO influencer_mints (
    id, allowlist_entry_id, user_id, user_character_id, policy_id, asset_name,
    asset_fingerprint, tx_hash, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateInfluencerMintParams struct {
	ID               string
	AllowlistEntryID string
	UserID           string
	UserCharacterID  string
	PolicyID         string
	AssetName        string
	AssetFingerprint string
	TxHash           string
	CreatedAt        time.Time
}

func (q *Queries) CreateInfluencerMint(ctx context.Context, arg CreateInfluencerMintParams) error {
	_, err := q.db.ExecContext(ctx, createInfluencerMint,
		arg.ID,
		arg.AllowlistEntryID,
		arg.UserID,
		arg.UserCharacterID,
		arg.PolicyID,
		arg.AssetName,
		arg.AssetFingerprint,
		arg.TxHash,
		arg.CreatedAt,
	)
	return err
}
