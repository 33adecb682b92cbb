package service

import (
	"context"
	"encoding/hex"
	"nft-ledger/internal/api"
	"nft-ledger/internal/cardano"
	"nft-ledger/internal/config"
	"nft-ledger/internal/constants"
	"nft-ledger/internal/domain"
	"nft-ledger/internal/repository"
	"time"

	"github.com/rs/zerolog"
)

type MintingService struct {
	characters   *repository.CharacterRepository
	assets       *repository.AssetRepository
	cardSets     *repository.CardSetRepository
	users        *repository.UserRepository
	gateway      api.LedgerGateway
	builder      TxBuilder
	imageBaseURL string
	logger       zerolog.Logger
	now          func() time.Time
}

func NewMintingService(
	characters *repository.CharacterRepository,
	assets *repository.AssetRepository,
	cardSets *repository.CardSetRepository,
	users *repository.UserRepository,
	gateway api.LedgerGateway,
	builder TxBuilder,
	cfg *config.Config,
	logger zerolog.Logger,
) *MintingService {
	return &MintingService{
		characters:   characters,
		assets:       assets,
		cardSets:     cardSets,
		users:        users,
		gateway:      gateway,
		builder:      builder,
		imageBaseURL: cfg.NFTImageBaseURL,
		logger:       logger,
		now:          utcNow,
	}
}

type MintResult struct {
	UserCharacterID string `json:"user_character_id"`
	TxHash          string `json:"tx_hash"`
	PolicyID        string `json:"policy_id"`
	AssetName       string `json:"asset_name"`
	Fingerprint     string `json:"asset_fingerprint"`
}

type SyncResult struct {
	UserCharacterID string                `json:"user_character_id"`
	TxHash          string                `json:"tx_hash"`
	Metadata        *domain.AssetMetadata `json:"metadata"`
	SyncedAt        time.Time             `json:"synced_at"`
}

// Mint turns a character instance into an on-chain asset. Checks run in a
// fixed order so the reported failure is deterministic when several apply.
func (s *MintingService) Mint(ctx context.Context, userCharacterID, userID, cardSetID string) (*MintResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().
		Str("user_character_id", userCharacterID).
		Str("user_id", userID).
		Str("card_set_id", cardSetID).
		Msg("mint requested")

	character, err := s.characters.GetSnapshot(ctx, userCharacterID)
	if err != nil {
		return nil, err
	}
	if character == nil || character.UserID != userID {
		return nil, domain.Errorf(domain.CodeCharacterNotFound, "Character does not exist or does not belong to user")
	}
	if character.Name == nil || character.Archetype == nil || character.Rarity == nil {
		return nil, domain.Errorf(domain.CodeCharacterDataIncomplete, "Missing critical character template data for %s", userCharacterID)
	}

	existing, err := s.assets.GetByUserCharacter(ctx, userCharacterID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsMinted {
		return nil, domain.Errorf(domain.CodeCharacterAlreadyMinted, "This character is already an NFT")
	}

	set, err := s.cardSets.Get(ctx, cardSetID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, domain.Errorf(domain.CodeCardSetNotFound, "Invalid card set ID %s", cardSetID)
	}
	if set.MintingActive == nil || set.CurrentMinted == nil {
		return nil, domain.Errorf(domain.CodeCardSetDataCorrupt, "Missing minting status fields on card set %s", cardSetID)
	}

	now := s.now()
	if err := checkMintable(set, now); err != nil {
		return nil, err
	}
	policyID := *set.PolicyID

	assetName := AssetName(*character.Name, now)
	metadata, err := BuildMetadata(character, s.imageBaseURL, now)
	if err != nil {
		return nil, err
	}

	if err := s.assets.SaveShadow(ctx, userCharacterID, policyID, assetName, metadata, now); err != nil {
		return nil, err
	}

	wallet, err := s.users.GetWalletAddress(ctx, userID)
	if err != nil {
		return nil, err
	}

	receipt, err := s.builder.MintAsset(ctx, MintRequest{
		PolicyID:         policyID,
		AssetName:        assetName,
		Metadata:         metadata,
		UserCharacterID:  userCharacterID,
		RecipientAddress: wallet,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_character_id", userCharacterID).Msg("mint transaction not submitted")
		return nil, err
	}

	fingerprint, err := receiptFingerprint(receipt, policyID, assetName)
	if err != nil {
		return nil, err
	}

	err = s.assets.FinalizeMint(ctx, repository.MintCompletion{
		UserCharacterID: userCharacterID,
		UserID:          userID,
		CardSetID:       cardSetID,
		PolicyID:        policyID,
		AssetName:       assetName,
		Fingerprint:     fingerprint,
		Metadata:        metadata,
		MintedAt:        now,
	})
	if err != nil {
		return nil, err
	}

	return &MintResult{
		UserCharacterID: userCharacterID,
		TxHash:          receipt.TxHash,
		PolicyID:        policyID,
		AssetName:       assetName,
		Fingerprint:     fingerprint,
	}, nil
}

func checkMintable(set *domain.CardSet, now time.Time) error {
	if set.PolicyID == nil || *set.PolicyID == "" {
		return domain.Errorf(domain.CodePolicyNotConfigured, "Card set does not have a minting policy")
	}
	if !*set.MintingActive {
		return domain.Errorf(domain.CodeMintingInactive, "Minting is not currently active for this set")
	}
	if set.MintingStartsAt != nil && now.Before(*set.MintingStartsAt) {
		return domain.Errorf(domain.CodeMintingNotStarted, "Minting window opens at %s", set.MintingStartsAt.UTC().Format(time.RFC3339))
	}
	if set.MintingEndsAt != nil && now.After(*set.MintingEndsAt) {
		return domain.Errorf(domain.CodeMintingEnded, "Minting window closed at %s", set.MintingEndsAt.UTC().Format(time.RFC3339))
	}
	if set.MaxSupply != nil && *set.CurrentMinted >= *set.MaxSupply {
		return domain.Errorf(domain.CodeMaxSupplyReached, "All %d NFTs from this set have been minted", *set.MaxSupply)
	}
	return nil
}

// receiptFingerprint prefers what the builder reports and otherwise derives
// the CIP-14 fingerprint from policy and name.
func receiptFingerprint(receipt *MintReceipt, policyID, assetName string) (string, error) {
	if receipt.Fingerprint != "" {
		return receipt.Fingerprint, nil
	}
	return cardano.AssetFingerprint(policyID, hex.EncodeToString([]byte(assetName)))
}

// SyncMetadataToChain pushes the character's current stats into the
// metadata token of an already minted asset.
func (s *MintingService) SyncMetadataToChain(ctx context.Context, userCharacterID string) (*SyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	record, err := s.assets.GetByUserCharacter(ctx, userCharacterID)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.IsMinted {
		return nil, domain.Errorf(domain.CodeNftNotFound, "Character is not minted as an NFT")
	}
	if record.PolicyID == nil || record.AssetFingerprint == nil {
		return nil, domain.Errorf(domain.CodeNftDataCorrupt, "Missing policy ID or asset fingerprint")
	}

	character, err := s.characters.GetSnapshot(ctx, userCharacterID)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, domain.Errorf(domain.CodeCharacterNotFound, "User character does not exist")
	}

	now := s.now()
	metadata, err := BuildMetadata(character, s.imageBaseURL, now)
	if err != nil {
		return nil, err
	}

	receipt, err := s.builder.UpdateMetadata(ctx, MetadataUpdateRequest{
		PolicyID:         *record.PolicyID,
		AssetName:        deref(record.AssetName),
		AssetFingerprint: *record.AssetFingerprint,
		Metadata:         metadata,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_character_id", userCharacterID).Msg("metadata sync not submitted")
		return nil, err
	}

	if err := s.assets.UpdateSync(ctx, userCharacterID, metadata, receipt.TxHash, now); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_character_id", userCharacterID).Str("tx_hash", receipt.TxHash).Msg("metadata synced")
	return &SyncResult{
		UserCharacterID: userCharacterID,
		TxHash:          receipt.TxHash,
		Metadata:        metadata,
		SyncedAt:        now,
	}, nil
}

func (s *MintingService) VerifyOwnership(ctx context.Context, address, fingerprint string) (bool, error) {
	return s.gateway.VerifyNftOwnership(ctx, address, fingerprint)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
