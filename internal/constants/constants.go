package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// cheap sanity bound; the shortest Shelley payment address is 58 chars
	MinAddressLength = 50

	MainnetNetwork = "mainnet"
	PreprodNetwork = "preprod"

	BlockfrostURLFormat = "https://cardano-%s.blockfrost.io/api/v0"
)

const (
	AssetNamePrefix    = "BlankWars"
	MetadataVersion    = 1
	DefaultDescription = "A legendary warrior in Blank Wars"
	MetadataOrigin     = "Blank Wars 2026"
	MetadataBlockchain = "Cardano"
)

const (
	DefaultAllocationReason = "Influencer partnership"
	ClaimCodeAlphabet       = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ClaimCodeLength         = 12
	MinClaimCodeLength      = 8
)
