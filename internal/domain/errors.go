package domain

import (
	"errors"
	"fmt"
)

// Code is the short uppercase tag carried by every subsystem failure.
type Code string

const (
	// not found
	CodeCharacterNotFound       Code = "CHARACTER_NOT_FOUND"
	CodeCardSetNotFound         Code = "CARD_SET_NOT_FOUND"
	CodeNftNotFound             Code = "NFT_NOT_FOUND"
	CodeStakingPositionNotFound Code = "STAKING_POSITION_NOT_FOUND"
	CodeClaimCodeNotFound       Code = "CLAIM_CODE_NOT_FOUND"
	CodeWalletNotConnected      Code = "WALLET_NOT_CONNECTED"
	CodeNoCharactersAvailable   Code = "NO_CHARACTERS_AVAILABLE"

	// data corruption
	CodeCharacterDataIncomplete Code = "CHARACTER_DATA_INCOMPLETE"
	CodeCardSetDataCorrupt      Code = "CARD_SET_DATA_CORRUPT"
	CodeNftDataCorrupt          Code = "NFT_DATA_CORRUPT"
	CodeTierConfigCorrupt       Code = "TIER_CONFIG_CORRUPT"
	CodeStakingPositionCorrupt  Code = "STAKING_POSITION_CORRUPT"
	CodeAllowlistDataCorrupt    Code = "ALLOWLIST_DATA_CORRUPT"
	CodeCharacterCreationFailed Code = "CHARACTER_CREATION_FAILED"

	// policy / eligibility
	CodeCharacterAlreadyMinted      Code = "CHARACTER_ALREADY_MINTED"
	CodeMintingInactive             Code = "MINTING_INACTIVE"
	CodeMintingNotStarted           Code = "MINTING_NOT_STARTED"
	CodeMintingEnded                Code = "MINTING_ENDED"
	CodeMaxSupplyReached            Code = "MAX_SUPPLY_REACHED"
	CodePolicyNotConfigured         Code = "POLICY_NOT_CONFIGURED"
	CodeCharacterAlreadyStaked      Code = "CHARACTER_ALREADY_STAKED"
	CodeTierRequirementsNotMet      Code = "TIER_REQUIREMENTS_NOT_MET"
	CodeInvalidTier                 Code = "INVALID_TIER"
	CodeUnauthorized                Code = "UNAUTHORIZED"
	CodeClaimCodeAlreadyUsed        Code = "CLAIM_CODE_ALREADY_USED"
	CodeClaimCodeExpired            Code = "CLAIM_CODE_EXPIRED"
	CodeClaimCodeRevoked            Code = "CLAIM_CODE_REVOKED"
	CodeClaimCodeExists             Code = "CLAIM_CODE_ALREADY_EXISTS"
	CodeWalletMismatch              Code = "WALLET_MISMATCH"
	CodeInvalidExpiration           Code = "INVALID_EXPIRATION"
	CodeOwnershipVerificationFailed Code = "NFT_OWNERSHIP_VERIFICATION_FAILED"

	// input validation
	CodeInvalidWalletAddress         Code = "INVALID_WALLET_ADDRESS"
	CodeInvalidAssetFingerprint      Code = "INVALID_ASSET_FINGERPRINT"
	CodeInvalidPaymentAddress        Code = "INVALID_PAYMENT_ADDRESS"
	CodeInvalidAddressFormat         Code = "INVALID_ADDRESS_FORMAT"
	CodeAddressDeserializationFailed Code = "ADDRESS_DESERIALIZATION_FAILED"
	CodeNoStakeComponent             Code = "NO_STAKE_COMPONENT"
	CodeInvalidStakeAddress          Code = "INVALID_STAKE_ADDRESS"
	CodeMissingParameters            Code = "MISSING_PARAMETERS"

	// upstream / transport
	CodeCardanoNotConfigured  Code = "CARDANO_NOT_CONFIGURED"
	CodeCardanoInvalidNetwork Code = "CARDANO_INVALID_NETWORK"
	CodeBlockfrostAPIError    Code = "BLOCKFROST_API_ERROR"
	CodeMetadataFetchFailed   Code = "METADATA_FETCH_FAILED"

	CodeNotImplemented Code = "CARDANO_NOT_IMPLEMENTED"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindCorrupt
	KindPolicy
	KindInput
	KindUpstream
	// KindNotImplemented marks an operation whose preconditions all passed
	// but whose on-chain step does not exist yet.
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindCorrupt:
		return "corrupt"
	case KindPolicy:
		return "policy"
	case KindInput:
		return "input"
	case KindUpstream:
		return "upstream"
	case KindNotImplemented:
		return "not_implemented"
	default:
		return "unknown"
	}
}

var codeKinds = map[Code]Kind{
	CodeCharacterNotFound:       KindNotFound,
	CodeCardSetNotFound:         KindNotFound,
	CodeNftNotFound:             KindNotFound,
	CodeStakingPositionNotFound: KindNotFound,
	CodeClaimCodeNotFound:       KindNotFound,
	CodeWalletNotConnected:      KindNotFound,
	CodeNoCharactersAvailable:   KindNotFound,

	CodeCharacterDataIncomplete: KindCorrupt,
	CodeCardSetDataCorrupt:      KindCorrupt,
	CodeNftDataCorrupt:          KindCorrupt,
	CodeTierConfigCorrupt:       KindCorrupt,
	CodeStakingPositionCorrupt:  KindCorrupt,
	CodeAllowlistDataCorrupt:    KindCorrupt,
	CodeCharacterCreationFailed: KindCorrupt,

	CodeCharacterAlreadyMinted:      KindPolicy,
	CodeMintingInactive:             KindPolicy,
	CodeMintingNotStarted:           KindPolicy,
	CodeMintingEnded:                KindPolicy,
	CodeMaxSupplyReached:            KindPolicy,
	CodePolicyNotConfigured:         KindPolicy,
	CodeCharacterAlreadyStaked:      KindPolicy,
	CodeTierRequirementsNotMet:      KindPolicy,
	CodeInvalidTier:                 KindPolicy,
	CodeUnauthorized:                KindPolicy,
	CodeClaimCodeAlreadyUsed:        KindPolicy,
	CodeClaimCodeExpired:            KindPolicy,
	CodeClaimCodeRevoked:            KindPolicy,
	CodeClaimCodeExists:             KindPolicy,
	CodeWalletMismatch:              KindPolicy,
	CodeInvalidExpiration:           KindPolicy,
	CodeOwnershipVerificationFailed: KindPolicy,

	CodeInvalidWalletAddress:         KindInput,
	CodeInvalidAssetFingerprint:      KindInput,
	CodeInvalidPaymentAddress:        KindInput,
	CodeInvalidAddressFormat:         KindInput,
	CodeAddressDeserializationFailed: KindInput,
	CodeNoStakeComponent:             KindInput,
	CodeInvalidStakeAddress:          KindInput,
	CodeMissingParameters:            KindInput,

	CodeCardanoNotConfigured:  KindUpstream,
	CodeCardanoInvalidNetwork: KindUpstream,
	CodeBlockfrostAPIError:    KindUpstream,
	CodeMetadataFetchFailed:   KindUpstream,

	CodeNotImplemented: KindNotImplemented,
}

func (c Code) Kind() Kind {
	return codeKinds[c]
}

// Error renders as "CODE: detail".
type Error struct {
	Code   Code
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code, so a detail-less
// &Error{Code: c} works as a sentinel with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Detail == "" || t.Detail == e.Detail)
}

func Errorf(code Code, format string, args ...any) error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, format string, args ...any) error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...), Err: err}
}

func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func KindOf(err error) Kind {
	return CodeOf(err).Kind()
}

func IsNotImplemented(err error) bool {
	return KindOf(err) == KindNotImplemented
}
