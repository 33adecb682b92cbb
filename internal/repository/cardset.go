package repository

import (
	"context"
	"database/sql"
	"errors"
	"nft-ledger/internal/db"
	"nft-ledger/internal/domain"

	"github.com/rs/zerolog"
)

type CardSetRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewCardSetRepository(queries *db.Queries, logger zerolog.Logger) *CardSetRepository {
	return &CardSetRepository{
		queries: queries,
		logger:  logger,
	}
}

func (r *CardSetRepository) Get(ctx context.Context, cardSetID string) (*domain.CardSet, error) {
	row, err := r.queries.GetCardSet(ctx, cardSetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.CardSet{
		ID:                 row.ID,
		Name:               row.Name,
		CardPackID:         row.CardPackID,
		PackName:           row.PackName,
		PolicyID:           row.PolicyID,
		MintingActive:      row.MintingActive,
		CurrentMinted:      row.CurrentMinted,
		MaxSupply:          row.MaxSupply,
		MintingStartsAt:    row.MintingStartsAt,
		MintingEndsAt:      row.MintingEndsAt,
		GuaranteedContents: row.GuaranteedContents,
	}, nil
}
