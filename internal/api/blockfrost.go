package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"nft-ledger/internal/cardano"
	"nft-ledger/internal/constants"
	"nft-ledger/internal/domain"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// LedgerGateway is the read side of the chain indexer used by the services.
type LedgerGateway interface {
	FetchWalletAssets(ctx context.Context, address string) (map[string]uint64, error)
	VerifyNftOwnership(ctx context.Context, address, fingerprint string) (bool, error)
	ResolveStakeAddress(paymentAddress string) (string, error)
	FetchDelegation(ctx context.Context, stakeAddress string) (*Delegation, error)
	FetchAssetMetadata(ctx context.Context, fingerprint string) (*AssetInfo, error)
}

var (
	_ LedgerGateway = (*BlockfrostClient)(nil)
	_ LedgerGateway = (*LazyGateway)(nil)
)

type GatewayConfig struct {
	APIKey  string
	Network string
	// optional, for self-hosted Blockfrost-compatible indexers
	BaseURL string
}

type BlockfrostClient struct {
	apiKey  string
	network string
	baseURL string
	client  *fasthttp.Client
}

func NewBlockfrostClient(cfg GatewayConfig) (*BlockfrostClient, error) {
	if cfg.APIKey == "" {
		return nil, domain.Errorf(domain.CodeCardanoNotConfigured, "BLOCKFROST_API_KEY is required")
	}
	if cfg.Network == "" {
		return nil, domain.Errorf(domain.CodeCardanoNotConfigured, "CARDANO_NETWORK is required")
	}
	if cfg.Network != constants.MainnetNetwork && cfg.Network != constants.PreprodNetwork {
		return nil, domain.Errorf(domain.CodeCardanoInvalidNetwork,
			"CARDANO_NETWORK must be %q or %q, got %q", constants.MainnetNetwork, constants.PreprodNetwork, cfg.Network)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf(constants.BlockfrostURLFormat, cfg.Network)
	}

	return &BlockfrostClient{
		apiKey:  cfg.APIKey,
		network: cfg.Network,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}, nil
}

func (c *BlockfrostClient) Network() string {
	return c.network
}

func (c *BlockfrostClient) BaseURL() string {
	return c.baseURL
}

// FetchWalletAssets returns the native assets held at an address keyed by
// CIP-14 fingerprint. An address the indexer has never seen holds nothing.
func (c *BlockfrostClient) FetchWalletAssets(ctx context.Context, address string) (map[string]uint64, error) {
	if len(address) < constants.MinAddressLength {
		return nil, domain.Errorf(domain.CodeInvalidWalletAddress, "address %q is too short", address)
	}

	resp, err := doRequest[AddressResponse](ctx, c, "/addresses/"+url.PathEscape(address))
	if isNotFound(err) {
		return map[string]uint64{}, nil
	}
	if err != nil {
		return nil, domain.Wrap(domain.CodeBlockfrostAPIError, err,
			"failed to fetch assets for %s: %s", address, upstreamMessage(err))
	}

	holdings := make(map[string]uint64, len(resp.Amount))
	for _, a := range resp.Amount {
		if a.Unit == cardano.LovelaceUnit {
			continue
		}
		fingerprint, err := cardano.FingerprintFromUnit(a.Unit)
		if err != nil {
			return nil, domain.Wrap(domain.CodeBlockfrostAPIError, err,
				"failed to fetch assets for %s: unexpected unit %q", address, a.Unit)
		}
		qty, err := strconv.ParseUint(a.Quantity, 10, 64)
		if err != nil {
			return nil, domain.Wrap(domain.CodeBlockfrostAPIError, err,
				"failed to fetch assets for %s: bad quantity %q for %s", address, a.Quantity, a.Unit)
		}
		holdings[fingerprint] += qty
	}
	return holdings, nil
}

// VerifyNftOwnership reports whether the address currently holds the asset.
// Not holding it is a false result, not an error.
func (c *BlockfrostClient) VerifyNftOwnership(ctx context.Context, address, fingerprint string) (bool, error) {
	if !cardano.ValidFingerprint(fingerprint) {
		return false, domain.Errorf(domain.CodeInvalidAssetFingerprint, "fingerprint %q is not a CIP-14 asset fingerprint", fingerprint)
	}

	holdings, err := c.FetchWalletAssets(ctx, address)
	if err != nil {
		return false, err
	}
	_, ok := holdings[fingerprint]
	return ok, nil
}

func (c *BlockfrostClient) ResolveStakeAddress(paymentAddress string) (string, error) {
	if len(paymentAddress) < constants.MinAddressLength || !strings.HasPrefix(paymentAddress, cardano.PaymentPrefix) {
		return "", domain.Errorf(domain.CodeInvalidPaymentAddress, "%q is not a payment address", paymentAddress)
	}

	stake, err := cardano.StakeAddressFromPayment(paymentAddress)
	switch {
	case errors.Is(err, cardano.ErrNoStakeCredential):
		return "", domain.Wrap(domain.CodeNoStakeComponent, err, "address %s cannot stake: %v", paymentAddress, err)
	case err != nil:
		return "", domain.Wrap(domain.CodeAddressDeserializationFailed, err, "failed to decode %s: %v", paymentAddress, err)
	}

	if !strings.HasPrefix(stake, cardano.StakePrefix) {
		return "", domain.Errorf(domain.CodeInvalidAddressFormat, "derived %q is not a stake address", stake)
	}
	return stake, nil
}

// FetchDelegation returns nil when the stake account is unknown to the indexer.
func (c *BlockfrostClient) FetchDelegation(ctx context.Context, stakeAddress string) (*Delegation, error) {
	if !strings.HasPrefix(stakeAddress, cardano.StakePrefix) {
		return nil, domain.Errorf(domain.CodeInvalidStakeAddress, "%q is not a stake address", stakeAddress)
	}

	resp, err := doRequest[AccountResponse](ctx, c, "/accounts/"+url.PathEscape(stakeAddress))
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Wrap(domain.CodeBlockfrostAPIError, err,
			"failed to fetch delegation for %s: %s", stakeAddress, upstreamMessage(err))
	}

	d := &Delegation{StakeAddress: resp.StakeAddress, Active: resp.Active}
	if resp.PoolID != nil {
		d.PoolID = *resp.PoolID
	}
	return d, nil
}

// FetchAssetMetadata looks up an asset by asset unit or CIP-14 fingerprint.
// Blockfrost keys /assets/{asset} by unit, so prefer the unit when the
// caller has it; fingerprints are forwarded as given.
func (c *BlockfrostClient) FetchAssetMetadata(ctx context.Context, fingerprint string) (*AssetInfo, error) {
	if !cardano.ValidFingerprint(fingerprint) && !cardano.IsUnit(fingerprint) {
		return nil, domain.Errorf(domain.CodeInvalidAssetFingerprint, "fingerprint %q is not a CIP-14 asset fingerprint", fingerprint)
	}

	info, err := doRequest[AssetInfo](ctx, c, "/assets/"+url.PathEscape(fingerprint))
	if err != nil {
		return nil, domain.Wrap(domain.CodeMetadataFetchFailed, err,
			"failed to fetch metadata for %s: %s", fingerprint, upstreamMessage(err))
	}
	return info, nil
}

func doRequest[T any](ctx context.Context, client *BlockfrostClient, path string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("project_id", client.apiKey)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		var body APIError
		if err := json.Unmarshal(resp.Body(), &body); err == nil {
			apiErr.Kind = body.Kind
			apiErr.Message = body.Message
		}
		return nil, apiErr
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &result, nil
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == fasthttp.StatusNotFound
}

func upstreamMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// APIError is a non-200 indexer response. Blockfrost bodies look like
// {"status_code":403,"error":"Forbidden","message":"Invalid project token."}.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Kind       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %d", e.StatusCode)
}

type AddressResponse struct {
	Address      string   `json:"address"`
	Amount       []Amount `json:"amount"`
	StakeAddress *string  `json:"stake_address"`
	Type         string   `json:"type"`
	Script       bool     `json:"script"`
}

type Amount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type AccountResponse struct {
	StakeAddress     string  `json:"stake_address"`
	Active           bool    `json:"active"`
	ActiveEpoch      *int    `json:"active_epoch"`
	ControlledAmount string  `json:"controlled_amount"`
	PoolID           *string `json:"pool_id"`
}

type Delegation struct {
	StakeAddress string `json:"stake_address"`
	PoolID       string `json:"pool_id,omitempty"`
	Active       bool   `json:"active"`
}

type AssetInfo struct {
	Asset                   string         `json:"asset"`
	PolicyID                string         `json:"policy_id"`
	AssetName               *string        `json:"asset_name"`
	Fingerprint             string         `json:"fingerprint"`
	Quantity                string         `json:"quantity"`
	InitialMintTxHash       string         `json:"initial_mint_tx_hash"`
	MintOrBurnCount         int            `json:"mint_or_burn_count"`
	OnchainMetadata         map[string]any `json:"onchain_metadata"`
	OnchainMetadataStandard *string        `json:"onchain_metadata_standard"`
	Metadata                map[string]any `json:"metadata"`
}
