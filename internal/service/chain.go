package service

import (
	"context"
	"nft-ledger/internal/domain"
)

// TxBuilder constructs and submits Cardano transactions. The services run
// every validation before handing off, so a builder only ever sees requests
// that are allowed to reach the chain.
type TxBuilder interface {
	MintAsset(ctx context.Context, req MintRequest) (*MintReceipt, error)
	UpdateMetadata(ctx context.Context, req MetadataUpdateRequest) (*SyncReceipt, error)
}

type MintRequest struct {
	PolicyID        string
	AssetName       string
	Metadata        *domain.AssetMetadata
	UserCharacterID string
	// destination of the reference token
	RecipientAddress string
}

type MintReceipt struct {
	TxHash      string
	Fingerprint string
}

type MetadataUpdateRequest struct {
	PolicyID         string
	AssetName        string
	AssetFingerprint string
	Metadata         *domain.AssetMetadata
}

type SyncReceipt struct {
	TxHash string
}

// UnimplementedTxBuilder is the default builder until CIP-68 minting
// scripts are deployed.
type UnimplementedTxBuilder struct{}

func NewUnimplementedTxBuilder() *UnimplementedTxBuilder {
	return &UnimplementedTxBuilder{}
}

func (UnimplementedTxBuilder) MintAsset(ctx context.Context, req MintRequest) (*MintReceipt, error) {
	return nil, domain.Errorf(domain.CodeNotImplemented,
		"on-chain CIP-68 minting of %s requires a deployed minting policy script and a transaction builder", req.AssetName)
}

func (UnimplementedTxBuilder) UpdateMetadata(ctx context.Context, req MetadataUpdateRequest) (*SyncReceipt, error) {
	return nil, domain.Errorf(domain.CodeNotImplemented,
		"metadata sync for %s requires spending the CIP-68 metadata token UTXO with an updated datum", req.AssetFingerprint)
}
