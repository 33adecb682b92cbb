package db

import (
	"context"
	"time"
)

const getAssetByUserCharacter = `
SELECT id, user_character_id, policy_id, asset_name, asset_fingerprint, on_chain_metadata,
       is_minted, minted_at, minted_by_user_id, last_synced_at, sync_tx_hash, created_at, updated_at
FROM cardano_nft_metadata
WHERE user_character_id = ?
`

func (q *Queries) GetAssetByUserCharacter(ctx context.Context, userCharacterID string) (CardanoNftMetadata, error) {
	row := q.db.QueryRowContext(ctx, getAssetByUserCharacter, userCharacterID)
	var i CardanoNftMetadata
	err := row.Scan(
		&i.ID,
		&i.UserCharacterID,
		&i.PolicyID,
		&i.AssetName,
		&i.AssetFingerprint,
		&i.OnChainMetadata,
		&i.IsMinted,
		&i.MintedAt,
		&i.MintedByUserID,
		&i.LastSyncedAt,
		&i.SyncTxHash,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getMintedAssetForStaking = `
SELECT m.id, m.user_character_id, m.policy_id, m.asset_name, m.asset_fingerprint, m.on_chain_metadata,
       m.is_minted, m.minted_at, m.minted_by_user_id, m.last_synced_at, m.sync_tx_hash,
       uc.level, c.rarity
FROM cardano_nft_metadata m
JOIN user_characters uc ON uc.id = m.user_character_id
LEFT JOIN characters c ON c.id = uc.character_id
WHERE m.user_character_id = ? AND m.is_minted = 1
`

type GetMintedAssetForStakingRow struct {
	ID               string
	UserCharacterID  string
	PolicyID         *string
	AssetName        *string
	AssetFingerprint *string
	OnChainMetadata  *string
	IsMinted         bool
	MintedAt         *time.Time
	MintedByUserID   *string
	LastSyncedAt     *time.Time
	SyncTxHash       *string
	Level            *int64
	Rarity           *string
}

func (q *Queries) GetMintedAssetForStaking(ctx context.Context, userCharacterID string) (GetMintedAssetForStakingRow, error) {
	row := q.db.QueryRowContext(ctx, getMintedAssetForStaking, userCharacterID)
	var i GetMintedAssetForStakingRow
	err := row.Scan(
		&i.ID,
		&i.UserCharacterID,
		&i.PolicyID,
		&i.AssetName,
		&i.AssetFingerprint,
		&i.OnChainMetadata,
		&i.IsMinted,
		&i.MintedAt,
		&i.MintedByUserID,
		&i.LastSyncedAt,
		&i.SyncTxHash,
		&i.Level,
		&i.Rarity,
	)
	return i, err
}

const upsertAssetShadow = `
INSERT INTO cardano_nft_metadata (
    id, user_character_id, policy_id, asset_name, on_chain_metadata, is_minted, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, 0, ?, ?)
ON CONFLICT (user_character_id) DO UPDATE SET
    policy_id = excluded.policy_id,
    asset_name = excluded.asset_name,
    on_chain_metadata = excluded.on_chain_metadata,
    updated_at = excluded.updated_at
WHERE cardano_nft_metadata.is_minted = 0
`

type UpsertAssetShadowParams struct {
	ID              string
	UserCharacterID string
	PolicyID        string
	AssetName       string
	OnChainMetadata string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UpsertAssetShadow never touches a minted record; zero rows affected
// means the character already has one.
func (q *Queries) UpsertAssetShadow(ctx context.Context, arg UpsertAssetShadowParams) (int64, error) {
	return execRows(ctx, q, upsertAssetShadow,
		arg.ID,
		arg.UserCharacterID,
		arg.PolicyID,
		arg.AssetName,
		arg.OnChainMetadata,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
}

const markAssetMinted = `
UPDATE cardano_nft_metadata
SET is_minted = 1,
    policy_id = ?,
    asset_name = ?,
    asset_fingerprint = ?,
    on_chain_metadata = ?,
    minted_at = ?,
    minted_by_user_id = ?,
    updated_at = ?
WHERE user_character_id = ? AND is_minted = 0
`

type MarkAssetMintedParams struct {
	PolicyID         string
	AssetName        string
	AssetFingerprint string
	OnChainMetadata  string
	MintedAt         time.Time
	MintedByUserID   string
	UserCharacterID  string
}

func (q *Queries) MarkAssetMinted(ctx context.Context, arg MarkAssetMintedParams) (int64, error) {
	return execRows(ctx, q, markAssetMinted,
		arg.PolicyID,
		arg.AssetName,
		arg.AssetFingerprint,
		arg.OnChainMetadata,
		arg.MintedAt,
		arg.MintedByUserID,
		arg.MintedAt,
		arg.UserCharacterID,
	)
}

const updateAssetSync = `
UPDATE cardano_nft_metadata
SET on_chain_metadata = ?,
    last_synced_at = ?,
    sync_tx_hash = ?,
    updated_at = ?
WHERE user_character_id = ? AND is_minted = 1
`

type UpdateAssetSyncParams struct {
	OnChainMetadata string
	LastSyncedAt    time.Time
	SyncTxHash      string
	UserCharacterID string
}

func (q *Queries) UpdateAssetSync(ctx context.Context, arg UpdateAssetSyncParams) (int64, error) {
	return execRows(ctx, q, updateAssetSync,
		arg.OnChainMetadata,
		arg.LastSyncedAt,
		arg.SyncTxHash,
		arg.LastSyncedAt,
		arg.UserCharacterID,
	)
}
