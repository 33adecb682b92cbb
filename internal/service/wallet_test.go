package service

import (
	"context"
	"nft-ledger/internal/api"
	"nft-ledger/internal/domain"
	"nft-ledger/internal/testutil"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const stakeAddr = "stake1uxqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq"

func TestWalletSummary(t *testing.T) {
	gw := new(mockGateway)
	defer gw.AssertExpectations(t)
	holdings := map[string]uint64{testutil.PolicyID + "4e4654": 1}
	delegation := &api.Delegation{StakeAddress: stakeAddr, PoolID: "pool1abc", Active: true}

	gw.On("ResolveStakeAddress", testutil.Wallet).Return(stakeAddr, nil).Once()
	gw.On("FetchWalletAssets", mock.Anything, testutil.Wallet).Return(holdings, nil).Once()
	gw.On("FetchDelegation", mock.Anything, stakeAddr).Return(delegation, nil).Once()

	summary, err := NewWalletService(gw, zerolog.Nop()).Summary(context.Background(), testutil.Wallet)
	require.NoError(t, err)
	assert.Equal(t, testutil.Wallet, summary.PaymentAddress)
	assert.Equal(t, stakeAddr, summary.StakeAddress)
	assert.Equal(t, holdings, summary.Assets)
	assert.Same(t, delegation, summary.Delegation)
}

func TestWalletSummaryNeverDelegated(t *testing.T) {
	gw := new(mockGateway)
	defer gw.AssertExpectations(t)

	gw.On("ResolveStakeAddress", testutil.Wallet).Return(stakeAddr, nil).Once()
	gw.On("FetchWalletAssets", mock.Anything, testutil.Wallet).Return(map[string]uint64{}, nil).Once()
	gw.On("FetchDelegation", mock.Anything, stakeAddr).Return(nil, nil).Once()

	summary, err := NewWalletService(gw, zerolog.Nop()).Summary(context.Background(), testutil.Wallet)
	require.NoError(t, err)
	assert.Empty(t, summary.Assets)
	assert.Nil(t, summary.Delegation)
}

func TestWalletSummaryErrors(t *testing.T) {
	t.Run("no stake component", func(t *testing.T) {
		gw := new(mockGateway)
		defer gw.AssertExpectations(t)
		gw.On("ResolveStakeAddress", testutil.Wallet).
			Return("", domain.Errorf(domain.CodeNoStakeComponent, "address has no stake part")).Once()

		_, err := NewWalletService(gw, zerolog.Nop()).Summary(context.Background(), testutil.Wallet)
		assert.Equal(t, domain.CodeNoStakeComponent, domain.CodeOf(err))
		gw.AssertNotCalled(t, "FetchWalletAssets", mock.Anything, mock.Anything)
	})

	t.Run("upstream failure", func(t *testing.T) {
		gw := new(mockGateway)
		gw.On("ResolveStakeAddress", testutil.Wallet).Return(stakeAddr, nil).Once()
		gw.On("FetchWalletAssets", mock.Anything, testutil.Wallet).
			Return(nil, domain.Errorf(domain.CodeBlockfrostAPIError, "Forbidden")).Maybe()
		gw.On("FetchDelegation", mock.Anything, stakeAddr).Return(nil, nil).Maybe()

		_, err := NewWalletService(gw, zerolog.Nop()).Summary(context.Background(), testutil.Wallet)
		assert.Equal(t, domain.CodeBlockfrostAPIError, domain.CodeOf(err))
		assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
	})
}
