package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"nft-ledger/internal/db"
	"nft-ledger/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

type StakingRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewStakingRepository(queries *db.Queries, logger zerolog.Logger) *StakingRepository {
	return &StakingRepository{
		queries: queries,
		logger:  logger,
	}
}

type CreatePositionParams struct {
	ID                string
	UserID            string
	UserCharacterID   string
	PolicyID          *string
	AssetName         *string
	Tier              domain.Tier
	StakedAt          time.Time
	BaseRewardsPerDay int64
	XPMultiplier      float64
}

func (r *StakingRepository) GetTierConfig(ctx context.Context, tier domain.Tier) (*domain.TierConfig, error) {
	row, err := r.queries.GetTierConfig(ctx, string(tier))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.TierConfig{
		Tier:              domain.Tier(row.Tier),
		MinRarity:         row.MinRarity,
		MinLevel:          row.MinLevel,
		BaseRewardsPerDay: row.BaseRewardsPerDay,
		XPMultiplier:      row.XpMultiplier,
	}, nil
}

func (r *StakingRepository) HasActivePosition(ctx context.Context, userCharacterID string) (bool, error) {
	count, err := r.queries.CountActiveStakingPositions(ctx, userCharacterID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts an ACTIVE position. Losing a race against another stake of
// the same character surfaces as CHARACTER_ALREADY_STAKED.
func (r *StakingRepository) Create(ctx context.Context, p CreatePositionParams) error {
	err := r.queries.CreateStakingPosition(ctx, db.CreateStakingPositionParams{
		ID:                p.ID,
		UserID:            p.UserID,
		UserCharacterID:   p.UserCharacterID,
		PolicyID:          p.PolicyID,
		AssetName:         p.AssetName,
		Tier:              string(p.Tier),
		StakedAt:          p.StakedAt,
		BaseRewardsPerDay: p.BaseRewardsPerDay,
		XpMultiplier:      p.XPMultiplier,
	})
	if isUniqueViolation(err) {
		return domain.Errorf(domain.CodeCharacterAlreadyStaked, "character %s already has an active staking position", p.UserCharacterID)
	}
	if err != nil {
		return fmt.Errorf("failed to create staking position: %w", err)
	}
	return nil
}

func (r *StakingRepository) GetActive(ctx context.Context, positionID string) (*domain.StakingPosition, error) {
	row, err := r.queries.GetActiveStakingPosition(ctx, positionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := toStakingPosition(row)
	return &p, nil
}

// Settle closes an ACTIVE position. It reports false when the position was
// no longer ACTIVE.
func (r *StakingRepository) Settle(ctx context.Context, positionID string, accrued, claimed int64, at time.Time) (bool, error) {
	n, err := r.queries.SettleStakingPosition(ctx, db.SettleStakingPositionParams{
		SettledAt:           at,
		TotalRewardsAccrued: accrued,
		TotalRewardsClaimed: claimed,
		ID:                  positionID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to settle staking position: %w", err)
	}
	return n > 0, nil
}

func (r *StakingRepository) GetView(ctx context.Context, positionID string) (*domain.StakingPositionView, error) {
	row, err := r.queries.GetStakingPositionView(ctx, positionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v := toStakingPositionView(row)
	return &v, nil
}

func (r *StakingRepository) ListViewsByUser(ctx context.Context, userID string) ([]domain.StakingPositionView, error) {
	rows, err := r.queries.ListStakingPositionViewsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.StakingPositionView, len(rows))
	for i, row := range rows {
		views[i] = toStakingPositionView(row)
	}
	return views, nil
}

func toStakingPosition(row db.CardanoStakingPosition) domain.StakingPosition {
	return domain.StakingPosition{
		ID:                     row.ID,
		UserID:                 row.UserID,
		UserCharacterID:        row.UserCharacterID,
		PolicyID:               row.PolicyID,
		AssetName:              row.AssetName,
		Tier:                   domain.Tier(row.Tier),
		Status:                 domain.PositionStatus(row.Status),
		StakedAt:               row.StakedAt,
		UnstakedAt:             row.UnstakedAt,
		TotalRewardsAccrued:    row.TotalRewardsAccrued,
		TotalRewardsClaimed:    row.TotalRewardsClaimed,
		LastRewardCalculatedAt: row.LastRewardCalculatedAt,
		LastClaimedAt:          row.LastClaimedAt,
		BaseRewardsPerDay:      row.BaseRewardsPerDay,
		XPMultiplier:           row.XpMultiplier,
	}
}

func toStakingPositionView(row db.StakingPositionViewRow) domain.StakingPositionView {
	return domain.StakingPositionView{
		StakingPosition: toStakingPosition(row.CardanoStakingPosition),
		CharacterName:   row.CharacterName,
		Rarity:          row.Rarity,
		Archetype:       row.Archetype,
	}
}
