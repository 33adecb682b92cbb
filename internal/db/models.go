package db

import (
	"time"
)

type Character struct {
	ID               string
	Name             string
	Title            *string
	Archetype        *string
	Rarity           *string
	Description      *string
	ImageUrl         *string
	BaseAttack       int64
	BaseDefense      int64
	BaseSpeed        int64
	BaseHealth       int64
	BaseMentalHealth int64
}

type CardanoNftMetadata struct {
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
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type CardanoStakingPosition struct {
	ID                     string
	UserID                 *string
	UserCharacterID        string
	PolicyID               *string
	AssetName              *string
	Tier                   string
	Status                 string
	StakedAt               time.Time
	UnstakedAt             *time.Time
	TotalRewardsAccrued    int64
	TotalRewardsClaimed    int64
	LastRewardCalculatedAt time.Time
	LastClaimedAt          *time.Time
	BaseRewardsPerDay      int64
	XpMultiplier           float64
}

type InfluencerMintAllowlist struct {
	ID               string
	WalletAddress    *string
	CardSetID        *string
	ClaimCode        string
	Status           *string
	ExpiresAt        time.Time
	AllocatedBy      *string
	AllocationReason *string
	ClaimedByUserID  *string
	ClaimedAt        *time.Time
	TxHash           *string
	CreatedAt        time.Time
}

type StakingTierConfig struct {
	Tier              string
	MinRarity         *string
	MinLevel          int64
	BaseRewardsPerDay *int64
	XpMultiplier      *float64
}
