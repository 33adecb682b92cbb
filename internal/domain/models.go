package domain

import (
	"time"
)

type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

type PositionStatus string

const (
	PositionActive   PositionStatus = "ACTIVE"
	PositionUnstaked PositionStatus = "UNSTAKED"
)

type ClaimStatus string

const (
	ClaimPending ClaimStatus = "PENDING"
	ClaimClaimed ClaimStatus = "CLAIMED"
	ClaimRevoked ClaimStatus = "REVOKED"
	ClaimExpired ClaimStatus = "EXPIRED"
)

// CharacterSnapshot is a character instance joined with its template.
// Required stats stay nullable so a missing value is never mistaken for zero.
type CharacterSnapshot struct {
	UserCharacterID string
	UserID          string
	CharacterID     string

	Name        *string
	Archetype   *string
	Rarity      *string
	Title       *string
	ImageURL    *string
	Description *string

	Level               *int64
	Experience          *int64
	TotalBattles        *int64
	TotalWins           *int64
	CurrentAttack       *int64
	CurrentDefense      *int64
	CurrentSpeed        *int64
	CurrentMaxHealth    *int64
	CurrentMentalHealth *int64
	BondLevel           *int64

	SerialNumber *string
	AcquiredAt   *time.Time
}

type CharacterTemplate struct {
	ID               string
	Name             string
	Archetype        *string
	Rarity           *string
	BaseAttack       int64
	BaseDefense      int64
	BaseSpeed        int64
	BaseHealth       int64
	BaseMentalHealth int64
}

type AssetMetadata struct {
	Name        string             `json:"name"`
	Title       string             `json:"title"`
	Image       string             `json:"image"`
	Description string             `json:"description"`
	Version     int                `json:"version"`
	Attributes  MetadataAttributes `json:"attributes"`
	Properties  MetadataProperties `json:"properties"`
}

type MetadataAttributes struct {
	Archetype    string `json:"archetype"`
	Rarity       string `json:"rarity"`
	Level        int64  `json:"level"`
	Experience   int64  `json:"experience"`
	TotalBattles int64  `json:"total_battles"`
	TotalWins    int64  `json:"total_wins"`
	WinRate      string `json:"win_rate"`
	Attack       int64  `json:"attack"`
	Defense      int64  `json:"defense"`
	Speed        int64  `json:"speed"`
	Health       int64  `json:"health"`
	MentalHealth int64  `json:"mental_health"`
	BondLevel    int64  `json:"bond_level"`
}

type MetadataProperties struct {
	CreatedAt    time.Time `json:"created_at"`
	SerialNumber string    `json:"serial_number"`
	Origin       string    `json:"origin"`
	Blockchain   string    `json:"blockchain"`
}

type AssetRecord struct {
	ID               string
	UserCharacterID  string
	PolicyID         *string
	AssetName        *string
	AssetFingerprint *string
	Metadata         *AssetMetadata
	IsMinted         bool
	MintedAt         *time.Time
	MintedByUserID   *string
	LastSyncedAt     *time.Time
	SyncTxHash       *string
}

// StakeableAsset is a minted asset joined with the character's
// current level and rarity.
type StakeableAsset struct {
	AssetRecord
	Level  *int64
	Rarity *string
}

type CardSet struct {
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

type TierConfig struct {
	Tier              Tier
	MinRarity         *string
	MinLevel          int64
	BaseRewardsPerDay *int64
	XPMultiplier      *float64
}

type StakingPosition struct {
	ID                     string
	UserID                 *string
	UserCharacterID        string
	PolicyID               *string
	AssetName              *string
	Tier                   Tier
	Status                 PositionStatus
	StakedAt               time.Time
	UnstakedAt             *time.Time
	TotalRewardsAccrued    int64
	TotalRewardsClaimed    int64
	LastRewardCalculatedAt time.Time
	LastClaimedAt          *time.Time
	BaseRewardsPerDay      int64
	XPMultiplier           float64
}

type StakingPositionView struct {
	StakingPosition
	CharacterName         *string
	Rarity                *string
	Archetype             *string
	PendingRewards        int64
	TotalUnclaimedRewards int64
}

type AllowlistEntry struct {
	ID               string
	WalletAddress    *string
	CardSetID        *string
	ClaimCode        string
	Status           *ClaimStatus
	ExpiresAt        time.Time
	AllocatedBy      *string
	AllocationReason *string
	CreatedAt        time.Time
	ClaimedByUserID  *string
	ClaimedAt        *time.Time
	TxHash           *string

	// joined for wallet listings
	PolicyID *string
	PackName *string
}
