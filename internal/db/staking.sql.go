package db

import (
	"context"
	"time"
)

const getTierConfig = `
SELECT tier, min_rarity, min_level, base_rewards_per_day, xp_multiplier
FROM staking_tier_config
WHERE tier = ?
`

func (q *Queries) GetTierConfig(ctx context.Context, tier string) (StakingTierConfig, error) {
	row := q.db.QueryRowContext(ctx, getTierConfig, tier)
	var i StakingTierConfig
	err := row.Scan(
		&i.Tier,
		&i.MinRarity,
		&i.MinLevel,
		&i.BaseRewardsPerDay,
		&i.XpMultiplier,
	)
	return i, err
}

const countActiveStakingPositions = `
SELECT COUNT(*) FROM cardano_staking_positions
WHERE user_character_id = ? AND status = 'ACTIVE'
`

func (q *Queries) CountActiveStakingPositions(ctx context.Context, userCharacterID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActiveStakingPositions, userCharacterID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createStakingPosition = `
INSERT INTO cardano_staking_positions (
    id, user_id, user_character_id, policy_id, asset_name, tier, status, staked_at,
    total_rewards_accrued, total_rewards_claimed, last_reward_calculated_at,
    base_rewards_per_day, xp_multiplier
) VALUES (?, ?, ?, ?, ?, ?, 'ACTIVE', ?, 0, 0, ?, ?, ?)
`

type CreateStakingPositionParams struct {
	ID                string
	UserID            string
	UserCharacterID   string
	PolicyID          *string
	AssetName         *string
	Tier              string
	StakedAt          time.Time
	BaseRewardsPerDay int64
	XpMultiplier      float64
}

func (q *Queries) CreateStakingPosition(ctx context.Context, arg CreateStakingPositionParams) error {
	_, err := q.db.ExecContext(ctx, createStakingPosition,
		arg.ID,
		arg.UserID,
		arg.UserCharacterID,
		arg.PolicyID,
		arg.AssetName,
		arg.Tier,
		arg.StakedAt,
		arg.StakedAt,
		arg.BaseRewardsPerDay,
		arg.XpMultiplier,
	)
	return err
}

const getActiveStakingPosition = `
SELECT id, user_id, user_character_id, policy_id, asset_name, tier, status, staked_at, unstaked_at,
       total_rewards_accrued, total_rewards_claimed, last_reward_calculated_at, last_claimed_at,
       base_rewards_per_day, xp_multiplier
FROM cardano_staking_positions
WHERE id = ? AND status = 'ACTIVE'
`

func (q *Queries) GetActiveStakingPosition(ctx context.Context, id string) (CardanoStakingPosition, error) {
	row := q.db.QueryRowContext(ctx, getActiveStakingPosition, id)
	var i CardanoStakingPosition
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.UserCharacterID,
		&i.PolicyID,
		&i.AssetName,
		&i.Tier,
		&i.Status,
		&i.StakedAt,
		&i.UnstakedAt,
		&i.TotalRewardsAccrued,
		&i.TotalRewardsClaimed,
		&i.LastRewardCalculatedAt,
		&i.LastClaimedAt,
		&i.BaseRewardsPerDay,
		&i.XpMultiplier,
	)
	return i, err
}

const settleStakingPosition = `
UPDATE cardano_staking_positions
SET status = 'UNSTAKED',
    unstaked_at = ?,
    total_rewards_accrued = ?,
    total_rewards_claimed = ?,
    last_reward_calculated_at = ?,
    last_claimed_at = ?
WHERE id = ? AND status = 'ACTIVE'
`

type SettleStakingPositionParams struct {
	SettledAt           time.Time
	TotalRewardsAccrued int64
	TotalRewardsClaimed int64
	ID                  string
}

// SettleStakingPosition only moves an ACTIVE row; zero rows affected means
// another request settled it first.
func (q *Queries) SettleStakingPosition(ctx context.Context, arg SettleStakingPositionParams) (int64, error) {
	return execRows(ctx, q, settleStakingPosition,
		arg.SettledAt,
		arg.TotalRewardsAccrued,
		arg.TotalRewardsClaimed,
		arg.SettledAt,
		arg.SettledAt,
		arg.ID,
	)
}

const stakingPositionViewColumns = `
SELECT p.id, p.user_id, p.user_character_id, p.policy_id, p.asset_name, p.tier, p.status,
       p.staked_at, p.unstaked_at, p.total_rewards_accrued, p.total_rewards_claimed,
       p.last_reward_calculated_at, p.last_claimed_at, p.base_rewards_per_day, p.xp_multiplier,
       c.name, c.rarity, c.archetype
FROM cardano_staking_positions p
JOIN user_characters uc ON uc.id = p.user_character_id
LEFT JOIN characters c ON c.id = uc.character_id
`

const getStakingPositionView = stakingPositionViewColumns + `WHERE p.id = ?
`

const listStakingPositionViewsByUser = stakingPositionViewColumns + `WHERE p.user_id = ?
ORDER BY p.staked_at DESC
`

type StakingPositionViewRow struct {
	CardanoStakingPosition
	CharacterName *string
	Rarity        *string
	Archetype     *string
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStakingPositionView(row scanner) (StakingPositionViewRow, error) {
	var i StakingPositionViewRow
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.UserCharacterID,
		&i.PolicyID,
		&i.AssetName,
		&i.Tier,
		&i.Status,
		&i.StakedAt,
		&i.UnstakedAt,
		&i.TotalRewardsAccrued,
		&i.TotalRewardsClaimed,
		&i.LastRewardCalculatedAt,
		&i.LastClaimedAt,
		&i.BaseRewardsPerDay,
		&i.XpMultiplier,
		&i.CharacterName,
		&i.Rarity,
		&i.Archetype,
	)
	return i, err
}

func (q *Queries) GetStakingPositionView(ctx context.Context, id string) (StakingPositionViewRow, error) {
	return scanStakingPositionView(q.db.QueryRowContext(ctx, getStakingPositionView, id))
}

func (q *Queries) ListStakingPositionViewsByUser(ctx context.Context, userID string) ([]StakingPositionViewRow, error) {
	rows, err := q.db.QueryContext(ctx, listStakingPositionViewsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StakingPositionViewRow
	for rows.Next() {
		i, err := scanStakingPositionView(rows)
		if err != nil {
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
