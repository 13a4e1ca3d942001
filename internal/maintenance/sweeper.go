package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"auth-service/internal/repository"
)

// Sweeper periodically deletes expired refresh-token records.
type Sweeper interface {
	Start(ctx context.Context) error
	Shutdown()
	SweepOnce(ctx context.Context) (int64, error)
}

type Config struct {
	Interval time.Duration
	Logger   *logrus.Logger
	Now      func() time.Time
}

type sweeper struct {
	cfg    Config
	tokens repository.RefreshTokenRepository

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewSweeper(cfg Config, tokens repository.RefreshTokenRepository) Sweeper {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &sweeper{
		cfg:    cfg,
		tokens: tokens,
	}
}

// Start launches the background loop. A non-positive interval disables it.
func (s *sweeper) Start(ctx context.Context) error {
	if s.cfg.Interval <= 0 {
		s.cfg.Logger.Info("refresh token sweeper disabled")
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if _, err := s.SweepOnce(loopCtx); err != nil && loopCtx.Err() == nil {
					s.cfg.Logger.Warnf("sweep refresh tokens: %v", err)
				}
			}
		}
	}()

	s.cfg.Logger.Infof("refresh token sweeper started, interval: %s", s.cfg.Interval)
	return nil
}

func (s *sweeper) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.cfg.Logger.Info("refresh token sweeper stopped")
}

func (s *sweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.cfg.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.cfg.Logger.WithField("deleted", n).Info("expired refresh tokens removed")
	}
	return n, nil
}
