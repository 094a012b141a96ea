package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KevinHdezVaz/Lumorah-back/internal/auth"
	"github.com/KevinHdezVaz/Lumorah-back/internal/logger"
	"github.com/KevinHdezVaz/Lumorah-back/internal/services"
)

// Scheduler runs periodic maintenance: promotion expiry, prize state
// refresh, and access token cleanup.
type Scheduler struct {
	cron    *cron.Cron
	rewards *services.RewardsService
	authSvc *auth.AuthService
}

func NewScheduler(rewards *services.RewardsService, authSvc *auth.AuthService) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		rewards: rewards,
		authSvc: authSvc,
	}
}

// Start registers all jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	log := logger.Get()

	// Hourly: close promotions whose window ended.
	if _, err := s.cron.AddFunc("@hourly", s.expirePromotions); err != nil {
		return err
	}

	// Every 15 minutes: re-derive prize availability from stock.
	if _, err := s.cron.AddFunc("@every 15m", s.refreshPrizeStates); err != nil {
		return err
	}

	// Daily: purge expired and revoked access tokens.
	if _, err := s.cron.AddFunc("@daily", s.cleanupTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Info().Msg("job scheduler started")

	// Run the state jobs once at startup so a long-stopped instance
	// catches up immediately.
	go s.expirePromotions()
	go s.refreshPrizeStates()

	return nil
}

// Stop halts the cron loop, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		logger.Get().Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) expirePromotions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.rewards.ExpirePromociones(ctx)
	if err != nil {
		logger.Get().Error().Err(err).Msg("expire promotions job failed")
		return
	}
	if n > 0 {
		logger.Get().Info().Int64("expired", n).Msg("promotions expired")
	}
}

func (s *Scheduler) refreshPrizeStates() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.rewards.RefreshPremioStates(ctx)
	if err != nil {
		logger.Get().Error().Err(err).Msg("refresh prize states job failed")
		return
	}
	if n > 0 {
		logger.Get().Info().Int64("updated", n).Msg("prize states refreshed")
	}
}

func (s *Scheduler) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.authSvc.CleanupExpiredTokens(ctx)
	if err != nil {
		logger.Get().Error().Err(err).Msg("token cleanup job failed")
		return
	}
	if n > 0 {
		logger.Get().Info().Int64("removed", n).Msg("expired tokens cleaned up")
	}
}
