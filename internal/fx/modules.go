package fx

import (
	"database/sql"
	"nft-ledger/internal/api"
	"nft-ledger/internal/config"
	"nft-ledger/internal/database"
	"nft-ledger/internal/db"
	"nft-ledger/internal/logger"
	"nft-ledger/internal/repository"
	"nft-ledger/internal/scheduler"
	"nft-ledger/internal/server"
	"nft-ledger/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideExpirer(s *service.AllowlistService) scheduler.Expirer {
	return s
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewCharacterRepository),
	fx.Provide(repository.NewCardSetRepository),
	fx.Provide(repository.NewAssetRepository),
	fx.Provide(repository.NewStakingRepository),
	fx.Provide(repository.NewAllowlistRepository),
	// chain
	fx.Provide(fx.Annotate(api.NewLazyGateway, fx.As(new(api.LedgerGateway)))),
	fx.Provide(fx.Annotate(service.NewUnimplementedTxBuilder, fx.As(new(service.TxBuilder)))),
	// svc
	fx.Provide(service.NewMintingService),
	fx.Provide(service.NewStakingService),
	fx.Provide(service.NewAllowlistService),
	fx.Provide(service.NewWalletService),
	// server
	fx.Provide(server.NewCardanoServer),
	// background
	fx.Provide(ProvideExpirer),
	scheduler.Module,
)
