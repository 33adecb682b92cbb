package cardano

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	paymentHash = bytes.Repeat([]byte{0x94}, CredentialSize)
	stakeHash   = bytes.Repeat([]byte{0x33}, CredentialSize)
)

func encode(t *testing.T, hrp string, raw []byte) string {
	t.Helper()
	data, err := bech32.ConvertBits(raw, 8, 5, true)
	require.NoError(t, err)
	s, err := bech32.Encode(hrp, data)
	require.NoError(t, err)
	return s
}

func baseAddress(t *testing.T, hrp string, header byte) string {
	raw := append([]byte{header}, paymentHash...)
	raw = append(raw, stakeHash...)
	return encode(t, hrp, raw)
}

func decodeRaw(t *testing.T, s string) (string, []byte) {
	t.Helper()
	hrp, data, err := bech32.DecodeNoLimit(s)
	require.NoError(t, err)
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	require.NoError(t, err)
	return hrp, raw
}

func TestStakeAddressFromPayment(t *testing.T) {
	tests := []struct {
		name       string
		hrp        string
		header     byte
		wantHRP    string
		wantHeader byte
	}{
		{"mainnet key/key", "addr", 0x01, "stake", 0xE1},
		{"mainnet script/key", "addr", 0x11, "stake", 0xE1},
		{"mainnet key/script", "addr", 0x21, "stake", 0xF1},
		{"testnet key/key", "addr_test", 0x00, "stake_test", 0xE0},
		{"testnet script/script", "addr_test", 0x30, "stake_test", 0xF0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StakeAddressFromPayment(baseAddress(t, tt.hrp, tt.header))
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(got, StakePrefix))
			assert.Greater(t, len(got), 50)

			hrp, raw := decodeRaw(t, got)
			assert.Equal(t, tt.wantHRP, hrp)
			require.Len(t, raw, 1+CredentialSize)
			assert.Equal(t, tt.wantHeader, raw[0])
			assert.Equal(t, stakeHash, raw[1:])
		})
	}
}

func TestStakeAddressFromPaymentNoStakeCredential(t *testing.T) {
	enterprise := encode(t, "addr", append([]byte{0x61}, paymentHash...))
	pointer := encode(t, "addr", append(append([]byte{0x41}, paymentHash...), 0x81, 0x00, 0x02))

	for _, addr := range []string{enterprise, pointer} {
		_, err := StakeAddressFromPayment(addr)
		assert.ErrorIs(t, err, ErrNoStakeCredential)
		assert.NotErrorIs(t, err, ErrMalformedAddress)
	}
}

func TestStakeAddressFromPaymentMalformed(t *testing.T) {
	truncated := encode(t, "addr", append([]byte{0x01}, bytes.Repeat([]byte{0x01}, 40)...))

	tests := []string{
		"addr1" + strings.Repeat("b", 60),
		"addr1notbech32!!",
		truncated,
		encode(t, "addr", []byte{0x01, 0x02}),
	}
	for _, addr := range tests {
		_, err := StakeAddressFromPayment(addr)
		assert.ErrorIs(t, err, ErrMalformedAddress, addr)
		assert.NotErrorIs(t, err, ErrNoStakeCredential)
	}
}

func TestDecodeAddressFields(t *testing.T) {
	addr, err := DecodeAddress(baseAddress(t, "addr", 0x21))
	require.NoError(t, err)

	assert.Equal(t, "addr", addr.HRP)
	assert.Equal(t, TypeBaseKeyScript, addr.Type())
	assert.Equal(t, MainnetID, addr.NetworkID())

	cred, script, err := addr.StakeCredential()
	require.NoError(t, err)
	assert.True(t, script)
	assert.Equal(t, stakeHash, cred)
}

func TestRewardAddressRoundTrip(t *testing.T) {
	stake, err := RewardAddress(MainnetID, stakeHash, false)
	require.NoError(t, err)

	addr, err := DecodeAddress(stake)
	require.NoError(t, err)
	cred, script, err := addr.StakeCredential()
	require.NoError(t, err)
	assert.False(t, script)
	assert.Equal(t, stakeHash, cred)

	_, err = RewardAddress(MainnetID, stakeHash[:10], false)
	assert.ErrorIs(t, err, ErrMalformedAddress)
}
