package db

import (
	"context"
	"time"
)

const getCardSet = `
SELECT
    s.id, s.name, s.card_pack_id, p.name, s.policy_id, s.minting_active,
    s.current_minted, s.max_supply, s.minting_starts_at, s.minting_ends_at,
    p.guaranteed_contents
FROM cardano_card_sets s
LEFT JOIN card_packs p ON p.id = s.card_pack_id
WHERE s.id = ?
`

type GetCardSetRow struct {
	ID                 string
	Name               *string
	CardPackID         *string
	PackName           *string
	PolicyID           *string
	MintingActive      *bool
	CurrentMinted      *int64
	MaxSupply          *int64
	MintingStartsAt    *time.Time
	MintingEndsAt      *time.Time
	GuaranteedContents *string
}

func (q *Queries) GetCardSet(ctx context.Context, id string) (GetCardSetRow, error) {
	row := q.db.QueryRowContext(ctx, getCardSet, id)
	var i GetCardSetRow
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CardPackID,
		&i.PackName,
		&i.PolicyID,
		&i.MintingActive,
		&i.CurrentMinted,
		&i.MaxSupply,
		&i.MintingStartsAt,
		&i.MintingEndsAt,
		&i.GuaranteedContents,
	)
	return i, err
}

const incrementCardSetMinted = `
UPDATE cardano_card_sets
SET current_minted = current_minted + 1
WHERE id = ?
  AND current_minted IS NOT NULL
  AND (max_supply IS NULL OR current_minted < max_supply)
`

// IncrementCardSetMinted is the supply-capped counter bump; zero rows
// affected means the cap was already reached.
func (q *Queries) IncrementCardSetMinted(ctx context.Context, id string) (int64, error) {
	return execRows(ctx, q, incrementCardSetMinted, id)
}
