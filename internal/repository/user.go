package repository

import (
	"context"
	"database/sql"
	"errors"
	"nft-ledger/internal/db"

	"github.com/rs/zerolog"
)

type UserRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewUserRepository(queries *db.Queries, logger zerolog.Logger) *UserRepository {
	return &UserRepository{
		queries: queries,
		logger:  logger,
	}
}

// GetWalletAddress returns "" for an unknown user or one without a linked wallet.
func (r *UserRepository) GetWalletAddress(ctx context.Context, userID string) (string, error) {
	addr, err := r.queries.GetUserWalletAddress(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if addr == nil {
		return "", nil
	}
	return *addr, nil
}
