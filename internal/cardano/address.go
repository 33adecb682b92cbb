// Package cardano decodes Shelley addresses and derives reward addresses
// and asset fingerprints. Everything here is pure and does no I/O.
package cardano

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

var (
	ErrMalformedAddress  = errors.New("malformed address")
	ErrNoStakeCredential = errors.New("address has no stake credential")
)

const (
	CredentialSize = 28

	MainnetID byte = 1

	PaymentPrefix = "addr"
	StakePrefix   = "stake"

	rewardKeyHeader    byte = 0xE0
	rewardScriptHeader byte = 0xF0
)

// Shelley address types, taken from the high nibble of the header byte.
const (
	TypeBaseKeyKey       byte = 0x0
	TypeBaseScriptKey    byte = 0x1
	TypeBaseKeyScript    byte = 0x2
	TypeBaseScriptScript byte = 0x3
	TypePointerKey       byte = 0x4
	TypePointerScript    byte = 0x5
	TypeEnterpriseKey    byte = 0x6
	TypeEnterpriseScript byte = 0x7
	TypeRewardKey        byte = 0xE
	TypeRewardScript     byte = 0xF
)

type Address struct {
	HRP   string
	Bytes []byte
}

func (a *Address) Header() byte {
	return a.Bytes[0]
}

func (a *Address) Type() byte {
	return a.Header() >> 4
}

func (a *Address) NetworkID() byte {
	return a.Header() & 0x0F
}

// DecodeAddress parses a bech32 address of any length into its raw bytes.
func DecodeAddress(s string) (*Address, error) {
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if len(raw) < 1+CredentialSize {
		return nil, fmt.Errorf("%w: %d byte payload", ErrMalformedAddress, len(raw))
	}

	return &Address{HRP: hrp, Bytes: raw}, nil
}

// StakeCredential returns the stake credential hash and whether it is a
// script hash. Pointer and enterprise addresses carry no credential.
func (a *Address) StakeCredential() ([]byte, bool, error) {
	switch t := a.Type(); t {
	case TypeBaseKeyKey, TypeBaseScriptKey, TypeBaseKeyScript, TypeBaseScriptScript:
		if len(a.Bytes) != 1+2*CredentialSize {
			return nil, false, fmt.Errorf("%w: base address with %d byte payload", ErrMalformedAddress, len(a.Bytes))
		}
		return a.Bytes[1+CredentialSize:], t&0x2 != 0, nil
	case TypeRewardKey, TypeRewardScript:
		if len(a.Bytes) != 1+CredentialSize {
			return nil, false, fmt.Errorf("%w: reward address with %d byte payload", ErrMalformedAddress, len(a.Bytes))
		}
		return a.Bytes[1:], t == TypeRewardScript, nil
	default:
		return nil, false, fmt.Errorf("%w: address type %d", ErrNoStakeCredential, t)
	}
}

func RewardAddress(networkID byte, credential []byte, script bool) (string, error) {
	if len(credential) != CredentialSize {
		return "", fmt.Errorf("%w: credential is %d bytes", ErrMalformedAddress, len(credential))
	}

	header := rewardKeyHeader
	if script {
		header = rewardScriptHeader
	}

	payload := make([]byte, 0, 1+CredentialSize)
	payload = append(payload, header|networkID&0x0F)
	payload = append(payload, credential...)

	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(stakeHRP(networkID), data)
}

// StakeAddressFromPayment derives the reward address that shares the
// payment address's network and stake credential.
func StakeAddressFromPayment(paymentAddress string) (string, error) {
	addr, err := DecodeAddress(paymentAddress)
	if err != nil {
		return "", err
	}

	credential, script, err := addr.StakeCredential()
	if err != nil {
		return "", err
	}

	return RewardAddress(addr.NetworkID(), credential, script)
}

func stakeHRP(networkID byte) string {
	if networkID == MainnetID {
		return StakePrefix
	}
	return StakePrefix + "_test"
}
