package service

import (
	"context"
	"encoding/json"
	"nft-ledger/internal/config"
	"nft-ledger/internal/constants"
	"nft-ledger/internal/domain"
	"nft-ledger/internal/repository"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const expiryLayout = "2006-01-02T15:04:05.000Z07:00"

type AllowlistService struct {
	entries      *repository.AllowlistRepository
	cardSets     *repository.CardSetRepository
	characters   *repository.CharacterRepository
	users        *repository.UserRepository
	builder      TxBuilder
	imageBaseURL string
	logger       zerolog.Logger
	now          func() time.Time
}

func NewAllowlistService(
	entries *repository.AllowlistRepository,
	cardSets *repository.CardSetRepository,
	characters *repository.CharacterRepository,
	users *repository.UserRepository,
	builder TxBuilder,
	cfg *config.Config,
	logger zerolog.Logger,
) *AllowlistService {
	return &AllowlistService{
		entries:      entries,
		cardSets:     cardSets,
		characters:   characters,
		users:        users,
		builder:      builder,
		imageBaseURL: cfg.NFTImageBaseURL,
		logger:       logger,
		now:          utcNow,
	}
}

type AllowlistValidation struct {
	AllowlistID string    `json:"allowlist_id"`
	CardSetID   string    `json:"card_set_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type CreateAllowlistEntryParams struct {
	WalletAddress    string    `json:"wallet_address"`
	CardSetID        string    `json:"card_set_id"`
	ClaimCode        string    `json:"claim_code,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	AllocatedBy      *string   `json:"allocated_by,omitempty"`
	AllocationReason string    `json:"allocation_reason,omitempty"`
}

// ValidateAllowlistEntry checks that a claim code can be redeemed by the
// wallet. A PENDING code found past its expiry is moved to EXPIRED here, so
// expiry holds even without the background sweep.
func (s *AllowlistService) ValidateAllowlistEntry(ctx context.Context, claimCode, walletAddress string) (*AllowlistValidation, error) {
	code := normalizeClaimCode(claimCode)

	entry, err := s.entries.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.Errorf(domain.CodeClaimCodeNotFound, "Invalid claim code")
	}
	if entry.Status == nil || entry.WalletAddress == nil || entry.CardSetID == nil {
		return nil, domain.Errorf(domain.CodeAllowlistDataCorrupt, "Missing critical allowlist fields")
	}

	switch *entry.Status {
	case domain.ClaimPending:
	case domain.ClaimClaimed:
		return nil, domain.Errorf(domain.CodeClaimCodeAlreadyUsed, "This claim code has already been redeemed")
	case domain.ClaimRevoked:
		return nil, domain.Errorf(domain.CodeClaimCodeRevoked, "This claim code has been revoked")
	case domain.ClaimExpired:
		return nil, domain.Errorf(domain.CodeClaimCodeExpired, "This claim code has expired")
	default:
		return nil, domain.Errorf(domain.CodeAllowlistDataCorrupt, "Unknown allowlist status %q", *entry.Status)
	}

	if entry.ExpiresAt.Before(s.now()) {
		if _, err := s.entries.MarkExpired(ctx, entry.ID); err != nil {
			return nil, err
		}
		s.logger.Info().Str("allowlist_id", entry.ID).Msg("claim code expired on read")
		return nil, domain.Errorf(domain.CodeClaimCodeExpired, "Code expired on %s", entry.ExpiresAt.UTC().Format(expiryLayout))
	}

	if *entry.WalletAddress != walletAddress {
		return nil, domain.Errorf(domain.CodeWalletMismatch,
			"This claim code is allocated to %s, but you are using %s", *entry.WalletAddress, walletAddress)
	}

	return &AllowlistValidation{
		AllowlistID: entry.ID,
		CardSetID:   *entry.CardSetID,
		ExpiresAt:   entry.ExpiresAt,
	}, nil
}

// MintInfluencerNFT redeems a claim code: it instantiates a character for the
// user and mints it to the allowlisted wallet. If the mint transaction cannot
// be built the new character is removed again.
func (s *AllowlistService) MintInfluencerNFT(ctx context.Context, userID, claimCode, characterID string) (*MintResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	wallet, err := s.users.GetWalletAddress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == "" {
		return nil, domain.Errorf(domain.CodeWalletNotConnected, "User must connect a Cardano wallet to claim")
	}

	validation, err := s.ValidateAllowlistEntry(ctx, claimCode, wallet)
	if err != nil {
		return nil, err
	}

	set, err := s.cardSets.Get(ctx, validation.CardSetID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, domain.Errorf(domain.CodeCardSetNotFound, "Card set does not exist")
	}
	if set.PolicyID == nil || *set.PolicyID == "" {
		return nil, domain.Errorf(domain.CodePolicyNotConfigured, "Card set does not have a minting policy")
	}
	policyID := *set.PolicyID

	if characterID == "" {
		characterID, err = firstGuaranteedCharacter(set.GuaranteedContents)
		if err != nil {
			return nil, err
		}
	}

	tpl, err := s.characters.GetTemplate(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, domain.Errorf(domain.CodeCharacterCreationFailed, "Could not find character template %s", characterID)
	}

	now := s.now()
	userCharacterID, err := s.characters.CreateFromTemplate(ctx, userID, tpl, now)
	if err != nil {
		return nil, domain.Wrap(domain.CodeCharacterCreationFailed, err, "Could not create character from template %s", characterID)
	}

	result, err := s.mintCreated(ctx, userID, userCharacterID, wallet, policyID, validation, tpl, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("allowlist_id", validation.AllowlistID).
		Str("user_character_id", userCharacterID).
		Str("asset_fingerprint", result.Fingerprint).
		Msg("influencer NFT minted")
	return result, nil
}

func (s *AllowlistService) mintCreated(
	ctx context.Context,
	userID, userCharacterID, wallet, policyID string,
	validation *AllowlistValidation,
	tpl *domain.CharacterTemplate,
	now time.Time,
) (*MintResult, error) {
	character, err := s.characters.GetSnapshot(ctx, userCharacterID)
	if err != nil {
		s.discardCharacter(ctx, userCharacterID)
		return nil, err
	}
	if character == nil {
		return nil, domain.Errorf(domain.CodeCharacterCreationFailed, "Created character %s disappeared", userCharacterID)
	}

	assetName := AssetName(tpl.Name, now)
	metadata, err := BuildMetadata(character, s.imageBaseURL, now)
	if err != nil {
		s.discardCharacter(ctx, userCharacterID)
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
		s.logger.Warn().Err(err).Str("allowlist_id", validation.AllowlistID).Msg("influencer mint transaction not submitted")
		s.discardCharacter(ctx, userCharacterID)
		return nil, err
	}

	fingerprint, err := receiptFingerprint(receipt, policyID, assetName)
	if err != nil {
		return nil, err
	}

	err = s.entries.CompleteClaim(ctx, repository.ClaimCompletion{
		EntryID: validation.AllowlistID,
		TxHash:  receipt.TxHash,
		Mint: repository.MintCompletion{
			UserCharacterID: userCharacterID,
			UserID:          userID,
			CardSetID:       validation.CardSetID,
			PolicyID:        policyID,
			AssetName:       assetName,
			Fingerprint:     fingerprint,
			Metadata:        metadata,
			MintedAt:        now,
		},
	})
	if err != nil {
		// the asset exists on chain at this point, so the character stays
		s.logger.Error().Err(err).Str("allowlist_id", validation.AllowlistID).Str("tx_hash", receipt.TxHash).Msg("failed to record influencer mint")
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

func (s *AllowlistService) discardCharacter(ctx context.Context, userCharacterID string) {
	if err := s.characters.Delete(context.WithoutCancel(ctx), userCharacterID); err != nil {
		s.logger.Error().Err(err).Str("user_character_id", userCharacterID).Msg("failed to remove unminted character")
	}
}

// firstGuaranteedCharacter reads the first template id out of a pack's
// guaranteed contents, stored either as ["id", ...] or [{"character_id": "id"}, ...].
func firstGuaranteedCharacter(raw *string) (string, error) {
	none := domain.Errorf(domain.CodeNoCharactersAvailable, "Card set has no guaranteed characters")
	if raw == nil {
		return "", none
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(*raw), &items); err != nil || len(items) == 0 {
		return "", none
	}

	var id string
	if err := json.Unmarshal(items[0], &id); err == nil && id != "" {
		return id, nil
	}
	var item struct {
		CharacterID string `json:"character_id"`
	}
	if err := json.Unmarshal(items[0], &item); err == nil && item.CharacterID != "" {
		return item.CharacterID, nil
	}
	return "", none
}

func (s *AllowlistService) CreateAllowlistEntry(ctx context.Context, p CreateAllowlistEntryParams) (*domain.AllowlistEntry, error) {
	if p.WalletAddress == "" || p.CardSetID == "" || p.ExpiresAt.IsZero() {
		return nil, domain.Errorf(domain.CodeMissingParameters, "wallet_address, card_set_id and expires_at are required")
	}
	if len(p.WalletAddress) < constants.MinAddressLength {
		return nil, domain.Errorf(domain.CodeInvalidWalletAddress, "address %q is too short", p.WalletAddress)
	}

	now := s.now()
	if !p.ExpiresAt.After(now) {
		return nil, domain.Errorf(domain.CodeInvalidExpiration, "Expiration must be in the future")
	}

	set, err := s.cardSets.Get(ctx, p.CardSetID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, domain.Errorf(domain.CodeCardSetNotFound, "Card set %s does not exist", p.CardSetID)
	}

	code := normalizeClaimCode(p.ClaimCode)
	if code == "" {
		code, err = gonanoid.Generate(constants.ClaimCodeAlphabet, constants.ClaimCodeLength)
		if err != nil {
			return nil, err
		}
	}
	if len(code) < constants.MinClaimCodeLength {
		return nil, domain.Errorf(domain.CodeMissingParameters, "claim code must be at least %d characters", constants.MinClaimCodeLength)
	}

	reason := p.AllocationReason
	if reason == "" {
		reason = constants.DefaultAllocationReason
	}

	entry, err := s.entries.Create(ctx, repository.CreateEntryParams{
		WalletAddress:    p.WalletAddress,
		CardSetID:        p.CardSetID,
		ClaimCode:        code,
		ExpiresAt:        p.ExpiresAt.UTC(),
		AllocatedBy:      p.AllocatedBy,
		AllocationReason: reason,
		CreatedAt:        now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("allowlist_id", entry.ID).Str("card_set_id", p.CardSetID).Msg("allowlist entry created")
	return entry, nil
}

func (s *AllowlistService) GetAllowlistEntriesForWallet(ctx context.Context, walletAddress string) ([]domain.AllowlistEntry, error) {
	return s.entries.ListByWallet(ctx, walletAddress)
}

// RevokeAllowlistEntry cancels a PENDING code. Codes in a final state
// report why they cannot be revoked.
func (s *AllowlistService) RevokeAllowlistEntry(ctx context.Context, id string) (*domain.AllowlistEntry, error) {
	revoked, err := s.entries.Revoke(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.Errorf(domain.CodeClaimCodeNotFound, "Allowlist entry %s does not exist", id)
	}
	if revoked {
		s.logger.Info().Str("allowlist_id", id).Msg("allowlist entry revoked")
		return entry, nil
	}

	if entry.Status == nil {
		return nil, domain.Errorf(domain.CodeAllowlistDataCorrupt, "Missing critical allowlist fields")
	}
	switch *entry.Status {
	case domain.ClaimClaimed:
		return nil, domain.Errorf(domain.CodeClaimCodeAlreadyUsed, "This claim code has already been redeemed")
	case domain.ClaimExpired:
		return nil, domain.Errorf(domain.CodeClaimCodeExpired, "This claim code has expired")
	default:
		return nil, domain.Errorf(domain.CodeClaimCodeRevoked, "This claim code has been revoked")
	}
}

// ExpireStaleEntries moves every PENDING code past its expiry to EXPIRED.
func (s *AllowlistService) ExpireStaleEntries(ctx context.Context) (int64, error) {
	n, err := s.entries.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("expired", n).Msg("stale claim codes expired")
	}
	return n, nil
}

func normalizeClaimCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
