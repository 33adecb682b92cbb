package service

import (
	"context"
	"nft-ledger/internal/api"
	"nft-ledger/internal/constants"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type WalletService struct {
	gateway api.LedgerGateway
	logger  zerolog.Logger
}

func NewWalletService(gateway api.LedgerGateway, logger zerolog.Logger) *WalletService {
	return &WalletService{gateway: gateway, logger: logger}
}

type WalletSummary struct {
	PaymentAddress string            `json:"payment_address"`
	StakeAddress   string            `json:"stake_address"`
	Assets         map[string]uint64 `json:"assets"`
	Delegation     *api.Delegation   `json:"delegation"`
}

// Summary resolves the wallet's stake address, then reads holdings and
// delegation in parallel. A wallet that never delegated has a nil Delegation.
func (s *WalletService) Summary(ctx context.Context, paymentAddress string) (*WalletSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	stake, err := s.gateway.ResolveStakeAddress(paymentAddress)
	if err != nil {
		return nil, err
	}

	summary := &WalletSummary{PaymentAddress: paymentAddress, StakeAddress: stake}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		assets, err := s.gateway.FetchWalletAssets(gctx, paymentAddress)
		if err != nil {
			return err
		}
		summary.Assets = assets
		return nil
	})
	g.Go(func() error {
		delegation, err := s.gateway.FetchDelegation(gctx, stake)
		if err != nil {
			return err
		}
		summary.Delegation = delegation
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Str("address", paymentAddress).Msg("wallet summary failed")
		return nil, err
	}

	s.logger.Debug().
		Str("stake_address", stake).
		Int("assets", len(summary.Assets)).
		Bool("delegated", summary.Delegation != nil && summary.Delegation.Active).
		Msg("wallet summary built")
	return summary, nil
}
