package cardano

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	FingerprintPrefix = "asset1"
	FingerprintLength = 44

	PolicyIDLength     = 56
	MaxAssetNameLength = 32
	LovelaceUnit       = "lovelace"
)

// AssetFingerprint computes the CIP-14 fingerprint of policy id + asset name,
// both hex encoded.
func AssetFingerprint(policyID, assetNameHex string) (string, error) {
	policy, err := hex.DecodeString(policyID)
	if err != nil || len(policy) != CredentialSize {
		return "", fmt.Errorf("invalid policy id %q", policyID)
	}
	name, err := hex.DecodeString(assetNameHex)
	if err != nil || len(name) > MaxAssetNameLength {
		return "", fmt.Errorf("invalid asset name %q", assetNameHex)
	}

	h, err := blake2b.New(20, nil)
	if err != nil {
		return "", err
	}
	h.Write(policy)
	h.Write(name)

	data, err := bech32.ConvertBits(h.Sum(nil), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode("asset", data)
}

// SplitUnit splits an indexer asset unit (policy id followed by the hex
// asset name) into its two parts.
func SplitUnit(unit string) (policyID, assetNameHex string, err error) {
	if len(unit) < PolicyIDLength {
		return "", "", fmt.Errorf("asset unit %q shorter than a policy id", unit)
	}
	return unit[:PolicyIDLength], unit[PolicyIDLength:], nil
}

func FingerprintFromUnit(unit string) (string, error) {
	policyID, name, err := SplitUnit(unit)
	if err != nil {
		return "", err
	}
	return AssetFingerprint(policyID, name)
}

// ValidFingerprint checks the asset1 prefix convention and encoded length.
func ValidFingerprint(fingerprint string) bool {
	return len(fingerprint) == FingerprintLength && fingerprint[:len(FingerprintPrefix)] == FingerprintPrefix
}

// IsUnit reports whether s is a hex asset unit: a policy id followed by an
// asset name of at most MaxAssetNameLength bytes.
func IsUnit(s string) bool {
	if len(s) < PolicyIDLength || len(s) > PolicyIDLength+2*MaxAssetNameLength || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
