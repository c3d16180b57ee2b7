package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/januslabs/janus/internal/config"
)

// Rotator refreshes the __Secure-1PSIDTS cookie on a schedule so a live
// session outlasts Google's expiry window.
type Rotator struct {
	service *Service
	cron    *cron.Cron
}

func NewRotator(service *Service) *Rotator {
	return &Rotator{service: service}
}

// Start schedules background rotation unless auto refresh is disabled.
func (r *Rotator) Start() error {
	if !config.GetAutoRefresh() {
		log.Info().Msg("Cookie auto refresh disabled")
		return nil
	}

	interval := config.GetRefreshInterval()
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", interval), r.rotate); err != nil {
		return err
	}
	r.cron.Start()

	log.Info().Dur("interval", interval).Msg("Cookie auto refresh scheduled")
	return nil
}

func (r *Rotator) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// rotate refreshes the cookie on the live handle and persists the result.
// Failures are logged but never tear the session down; requests keep using
// the handle until the backend itself rejects one.
func (r *Rotator) rotate() {
	r.service.mu.Lock()
	handle := r.service.handle
	r.service.mu.Unlock()

	if handle == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	creds, err := handle.RotateCookies(ctx)
	if err != nil {
		r.service.metrics.RecordCookieRotation("error")
		log.Warn().Err(err).Msg("Cookie rotation failed")
		return
	}

	if err := r.service.store.Save(ctx, creds); err != nil {
		r.service.metrics.RecordCookieRotation("error")
		log.Warn().Err(err).Msg("Failed to persist rotated cookies")
		return
	}

	r.service.metrics.RecordCookieRotation("ok")
	log.Debug().Msg("Session cookie rotated")
}
