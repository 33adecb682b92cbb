package service

import (
	"context"
	"nft-ledger/internal/api"
	"nft-ledger/internal/constants"
	"nft-ledger/internal/domain"
	"nft-ledger/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const millisPerDay = 24 * 60 * 60 * 1000

type StakingService struct {
	assets    *repository.AssetRepository
	users     *repository.UserRepository
	positions *repository.StakingRepository
	gateway   api.LedgerGateway
	logger    zerolog.Logger
	now       func() time.Time
}

func NewStakingService(
	assets *repository.AssetRepository,
	users *repository.UserRepository,
	positions *repository.StakingRepository,
	gateway api.LedgerGateway,
	logger zerolog.Logger,
) *StakingService {
	return &StakingService{
		assets:    assets,
		users:     users,
		positions: positions,
		gateway:   gateway,
		logger:    logger,
		now:       utcNow,
	}
}

type StakeResult struct {
	PositionID        string      `json:"position_id"`
	Tier              domain.Tier `json:"tier"`
	BaseRewardsPerDay int64       `json:"base_rewards_per_day"`
	XPMultiplier      float64     `json:"xp_multiplier"`
}

type UnstakeResult struct {
	RewardsClaimed   int64 `json:"rewards_claimed"`
	TotalStakedHours int64 `json:"total_staked_hours"`
}

// Stake opens an ACTIVE position for a minted character. Custody is
// re-checked against the chain; the local minted flag alone is not enough.
func (s *StakingService) Stake(ctx context.Context, userID, userCharacterID string, tier domain.Tier) (*StakeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	asset, err := s.assets.GetStakeable(ctx, userCharacterID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.Errorf(domain.CodeNftNotFound, "Character is not minted as an NFT")
	}
	if asset.AssetFingerprint == nil || asset.PolicyID == nil {
		return nil, domain.Errorf(domain.CodeNftDataCorrupt, "Missing asset fingerprint or policy ID")
	}
	if asset.Level == nil || asset.Rarity == nil {
		return nil, domain.Errorf(domain.CodeNftDataCorrupt, "Missing character level or rarity for %s", userCharacterID)
	}

	wallet, err := s.users.GetWalletAddress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == "" {
		return nil, domain.Errorf(domain.CodeWalletNotConnected, "User must connect a Cardano wallet first")
	}

	owns, err := s.gateway.VerifyNftOwnership(ctx, wallet, *asset.AssetFingerprint)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, domain.Errorf(domain.CodeOwnershipVerificationFailed, "Wallet %s does not own NFT %s", wallet, *asset.AssetFingerprint)
	}

	staked, err := s.positions.HasActivePosition(ctx, userCharacterID)
	if err != nil {
		return nil, err
	}
	if staked {
		return nil, domain.Errorf(domain.CodeCharacterAlreadyStaked, "This character is already staked")
	}

	cfg, err := s.positions.GetTierConfig(ctx, tier)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.Errorf(domain.CodeInvalidTier, "Tier %s does not exist", tier)
	}
	if cfg.BaseRewardsPerDay == nil || cfg.XPMultiplier == nil || cfg.MinRarity == nil {
		return nil, domain.Errorf(domain.CodeTierConfigCorrupt, "Missing required tier configuration fields")
	}
	if domain.Rarity(*cfg.MinRarity).Ordinal() < 0 {
		return nil, domain.Errorf(domain.CodeTierConfigCorrupt, "%s tier has unknown minimum rarity %q", tier, *cfg.MinRarity)
	}

	if domain.Rarity(*asset.Rarity).Ordinal() < domain.Rarity(*cfg.MinRarity).Ordinal() {
		return nil, domain.Errorf(domain.CodeTierRequirementsNotMet,
			"%s tier requires %s rarity, but character is %s", tier, *cfg.MinRarity, *asset.Rarity)
	}
	if *asset.Level < cfg.MinLevel {
		return nil, domain.Errorf(domain.CodeTierRequirementsNotMet,
			"%s tier requires level %d, but character is level %d", tier, cfg.MinLevel, *asset.Level)
	}

	id := uuid.NewString()
	err = s.positions.Create(ctx, repository.CreatePositionParams{
		ID:                id,
		UserID:            userID,
		UserCharacterID:   userCharacterID,
		PolicyID:          asset.PolicyID,
		AssetName:         asset.AssetName,
		Tier:              tier,
		StakedAt:          s.now(),
		BaseRewardsPerDay: *cfg.BaseRewardsPerDay,
		XPMultiplier:      *cfg.XPMultiplier,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("position_id", id).
		Str("user_character_id", userCharacterID).
		Str("tier", string(tier)).
		Msg("character staked")

	return &StakeResult{
		PositionID:        id,
		Tier:              tier,
		BaseRewardsPerDay: *cfg.BaseRewardsPerDay,
		XPMultiplier:      *cfg.XPMultiplier,
	}, nil
}

// CalculatePendingRewards projects rewards earned since the last
// calculation. It never writes.
func (s *StakingService) CalculatePendingRewards(ctx context.Context, positionID string) (int64, error) {
	position, err := s.positions.GetActive(ctx, positionID)
	if err != nil {
		return 0, err
	}
	if position == nil {
		return 0, domain.Errorf(domain.CodeStakingPositionNotFound, "Position not found or not active")
	}
	return pendingRewards(position, s.now()), nil
}

func pendingRewards(p *domain.StakingPosition, now time.Time) int64 {
	elapsed := now.Sub(p.LastRewardCalculatedAt).Milliseconds()
	if elapsed <= 0 {
		return 0
	}
	return elapsed * p.BaseRewardsPerDay / millisPerDay
}

// Unstake settles the position in full and closes it.
func (s *StakingService) Unstake(ctx context.Context, positionID, userID string) (*UnstakeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	position, err := s.positions.GetActive(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, domain.Errorf(domain.CodeStakingPositionNotFound, "No active staking position found")
	}
	if position.UserID == nil {
		return nil, domain.Errorf(domain.CodeStakingPositionCorrupt, "Missing critical staking data")
	}
	if *position.UserID != userID {
		return nil, domain.Errorf(domain.CodeUnauthorized, "This staking position does not belong to you")
	}

	now := s.now()
	total := position.TotalRewardsAccrued + pendingRewards(position, now)
	hours := int64(now.Sub(position.StakedAt) / time.Hour)
	if hours < 0 {
		hours = 0
	}

	settled, err := s.positions.Settle(ctx, positionID, total, total, now)
	if err != nil {
		return nil, err
	}
	if !settled {
		return nil, domain.Errorf(domain.CodeStakingPositionNotFound, "No active staking position found")
	}

	s.logger.Info().
		Str("position_id", positionID).
		Int64("rewards_claimed", total).
		Int64("total_staked_hours", hours).
		Msg("character unstaked")

	return &UnstakeResult{RewardsClaimed: total, TotalStakedHours: hours}, nil
}

func (s *StakingService) GetStakingPosition(ctx context.Context, positionID string) (*domain.StakingPositionView, error) {
	view, err := s.positions.GetView(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.Errorf(domain.CodeStakingPositionNotFound, "Position %s not found", positionID)
	}
	project(view, s.now())
	return view, nil
}

// GetUserStakingPositions lists every position of the user, newest first.
func (s *StakingService) GetUserStakingPositions(ctx context.Context, userID string) ([]domain.StakingPositionView, error) {
	views, err := s.positions.ListViewsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range views {
		project(&views[i], now)
	}
	return views, nil
}

func project(v *domain.StakingPositionView, now time.Time) {
	v.PendingRewards = 0
	if v.Status == domain.PositionActive {
		v.PendingRewards = pendingRewards(&v.StakingPosition, now)
	}
	v.TotalUnclaimedRewards = v.TotalRewardsAccrued - v.TotalRewardsClaimed + v.PendingRewards
}
