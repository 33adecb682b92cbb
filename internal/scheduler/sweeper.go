package scheduler

import (
	"context"
	"fmt"
	"nft-ledger/internal/config"
	"nft-ledger/internal/constants"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Expirer moves PENDING claim codes past their expiry to EXPIRED.
type Expirer interface {
	ExpireStaleEntries(ctx context.Context) (int64, error)
}

// AllowlistSweeper periodically expires stale claim codes. Validation
// expires codes on read as well, so the sweep only keeps listings tidy.
type AllowlistSweeper struct {
	expirer Expirer
	cfg     *config.Config
	logger  zerolog.Logger
	sched   gocron.Scheduler
}

func NewAllowlistSweeper(expirer Expirer, cfg *config.Config, logger zerolog.Logger) *AllowlistSweeper {
	return &AllowlistSweeper{
		expirer: expirer,
		cfg:     cfg,
		logger:  logger.With().Str("component", "allowlist_sweeper").Logger(),
	}
}

func (s *AllowlistSweeper) Start() error {
	if s.cfg.AllowlistSweepInterval <= 0 {
		s.logger.Info().Msg("allowlist sweep disabled")
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.cfg.AllowlistSweepInterval),
		gocron.NewTask(s.Sweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule allowlist sweep: %w", err)
	}

	sched.Start()
	s.sched = sched
	s.logger.Info().Dur("interval", s.cfg.AllowlistSweepInterval).Msg("allowlist sweep scheduled")
	return nil
}

func (s *AllowlistSweeper) Stop() error {
	if s.sched == nil {
		return nil
	}
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.sched = nil
	return nil
}

// Sweep runs one expiry pass.
func (s *AllowlistSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	n, err := s.expirer.ExpireStaleEntries(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("allowlist sweep failed")
		return
	}
	s.logger.Debug().Int64("expired", n).Msg("allowlist sweep finished")
}

func registerHooks(lc fx.Lifecycle, s *AllowlistSweeper) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return s.Start() },
		OnStop:  func(context.Context) error { return s.Stop() },
	})
}

var Module = fx.Options(
	fx.Provide(NewAllowlistSweeper),
	fx.Invoke(registerHooks),
)
