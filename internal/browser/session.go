// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/semact-dev/semact-cli/internal/config"
)

// Session owns one browser instance and its page context. A session is
// exclusively bound to one in-flight execution at a time; concurrent
// pipelines need distinct sessions.
type Session struct {
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	navTimeout  time.Duration
}

// NewSession launches the browser and fails fast if it cannot start.
func NewSession(parent context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))

	if err := chromedp.Run(taskCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	navTimeout := cfg.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}

	logger.Debug("browser session started", zap.Bool("headless", cfg.Headless))
	return &Session{
		logger:      logger.Named("browser"),
		ctx:         taskCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		navTimeout:  navTimeout,
	}, nil
}

// Context returns the chromedp page context.
func (s *Session) Context() context.Context { return s.ctx }

// Close tears the browser down.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// opContext derives a bounded operation context from the session's page
// context that is also cancelled when the caller's context ends.
func (s *Session) opContext(caller context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(caller, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
