package api

import (
	"context"
	"nft-ledger/internal/config"
	"sync"

	"github.com/rs/zerolog"
)

// LazyGateway builds the Blockfrost client on first use, so a missing or
// invalid configuration fails the first gateway call instead of startup.
// The construction result, error included, is kept for every later call.
type LazyGateway struct {
	client func() (*BlockfrostClient, error)
}

func NewLazyGateway(cfg *config.Config, logger zerolog.Logger) *LazyGateway {
	gc := GatewayConfig{
		APIKey:  cfg.BlockfrostAPIKey,
		Network: cfg.CardanoNetwork,
		BaseURL: cfg.BlockfrostBaseURL,
	}

	return &LazyGateway{
		client: sync.OnceValues(func() (*BlockfrostClient, error) {
			c, err := NewBlockfrostClient(gc)
			if err != nil {
				logger.Error().Err(err).Msg("ledger gateway unavailable")
				return nil, err
			}
			logger.Info().Str("network", c.Network()).Str("base_url", c.BaseURL()).Msg("ledger gateway initialized")
			return c, nil
		}),
	}
}

func (g *LazyGateway) Client() (*BlockfrostClient, error) {
	return g.client()
}

func (g *LazyGateway) FetchWalletAssets(ctx context.Context, address string) (map[string]uint64, error) {
	c, err := g.client()
	if err != nil {
		return nil, err
	}
	return c.FetchWalletAssets(ctx, address)
}

func (g *LazyGateway) VerifyNftOwnership(ctx context.Context, address, fingerprint string) (bool, error) {
	c, err := g.client()
	if err != nil {
		return false, err
	}
	return c.VerifyNftOwnership(ctx, address, fingerprint)
}

func (g *LazyGateway) ResolveStakeAddress(paymentAddress string) (string, error) {
	c, err := g.client()
	if err != nil {
		return "", err
	}
	return c.ResolveStakeAddress(paymentAddress)
}

func (g *LazyGateway) FetchDelegation(ctx context.Context, stakeAddress string) (*Delegation, error) {
	c, err := g.client()
	if err != nil {
		return nil, err
	}
	return c.FetchDelegation(ctx, stakeAddress)
}

func (g *LazyGateway) FetchAssetMetadata(ctx context.Context, fingerprint string) (*AssetInfo, error) {
	c, err := g.client()
	if err != nil {
		return nil, err
	}
	return c.FetchAssetMetadata(ctx, fingerprint)
}
