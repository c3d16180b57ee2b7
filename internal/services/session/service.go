package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/januslabs/janus/internal/config"
	"github.com/januslabs/janus/internal/infrastructure/gemini"
	"github.com/januslabs/janus/internal/infrastructure/metrics"
	"github.com/januslabs/janus/internal/infrastructure/redis"
)

// ErrMissingCredentials means no cookie pair has been configured, via the
// environment or the cookie update endpoint.
var ErrMissingCredentials = errors.New("no gemini credentials configured")

// Backend is the slice of the Gemini client the session manager drives.
// Tests substitute fakes through BackendFactory.
type Backend interface {
	Init(ctx context.Context) error
	Generate(ctx context.Context, prompt string, model gemini.Model) (*gemini.Reply, error)
	GenerateStream(ctx context.Context, prompt string, model gemini.Model) (*gemini.Reply, error)
	RotateCookies(ctx context.Context) (gemini.Credentials, error)
	Close()
}

// BackendFactory builds an uninitialized backend from a cookie pair.
type BackendFactory func(creds gemini.Credentials) (Backend, error)

func defaultFactory(creds gemini.Credentials) (Backend, error) {
	return gemini.NewClient(gemini.Config{
		Credentials: creds,
		ProxyURL:    config.GetGeminiProxy(),
		Timeout:     config.GetGeminiTimeout(),
	})
}

// Service hands out the shared Gemini session handle. Initialization is
// serialized under the mutex: when many requests hit a cold session, one
// performs the handshake and the rest wait for its outcome.
type Service struct {
	mu      sync.Mutex
	handle  Backend
	store   CredentialStore
	factory BackendFactory
	metrics *metrics.Service
}

func NewService(redisService *redis.Service, metricsService *metrics.Service) *Service {
	var store CredentialStore
	if redisService != nil {
		ctx := context.Background()
		if err := redisService.Ping(ctx); err != nil {
			store = newMemoryStore()
		} else {
			store = &RedisStore{redisService: redisService}
		}
	} else {
		store = newMemoryStore()
	}

	s := &Service{
		store:   store,
		factory: defaultFactory,
		metrics: metricsService,
	}
	s.seedFromEnv()
	return s
}

// NewServiceWithFactory wires an explicit store and backend factory. Tests
// use it to substitute fake backends.
func NewServiceWithFactory(store CredentialStore, factory BackendFactory, metricsService *metrics.Service) *Service {
	s := &Service{
		store:   store,
		factory: factory,
		metrics: metricsService,
	}
	s.seedFromEnv()
	return s
}

// seedFromEnv copies cookies from the environment into the store. A pair
// already in the store wins: cookies pushed or rotated at runtime are newer
// than whatever the process was started with.
func (s *Service) seedFromEnv() {
	psid := config.GetSecure1PSID()
	if psid == "" {
		return
	}

	ctx := context.Background()
	if _, ok, err := s.store.Load(ctx); err == nil && ok {
		return
	}

	creds := gemini.Credentials{PSID: psid, PSIDTS: config.GetSecure1PSIDTS()}
	if err := s.store.Save(ctx, creds); err != nil {
		log.Warn().Err(err).Msg("Failed to persist credentials from environment")
	}
}

// Acquire returns the shared live session handle, performing the handshake
// first if no live handle exists. A caller that later hits an auth failure
// must pass the handle it used to Invalidate; Acquire itself never retries.
func (s *Service) Acquire(ctx context.Context) (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		return s.handle, nil
	}

	creds, ok, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || creds.PSID == "" {
		return nil, ErrMissingCredentials
	}

	handle, err := s.factory(creds)
	if err != nil {
		return nil, err
	}
	if err := handle.Init(ctx); err != nil {
		s.metrics.RecordSessionInit("error")
		handle.Close()
		return nil, err
	}

	s.metrics.RecordSessionInit("ok")
	s.handle = handle
	return handle, nil
}

// Invalidate discards the handle after an auth failure. It is a no-op when
// the handle has already been replaced, so a slow failing request cannot
// tear down the session a later caller rebuilt.
func (s *Service) Invalidate(handle Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil || s.handle != handle {
		return
	}

	s.handle.Close()
	s.handle = nil
	log.Warn().Msg("Gemini session invalidated, next request will re-initialize")
}

// UpdateCredentials replaces the cookie pair, persists it and eagerly builds
// a fresh session so the caller learns immediately whether the new cookies
// work.
func (s *Service) UpdateCredentials(ctx context.Context, creds gemini.Credentials) error {
	if creds.PSID == "" {
		return ErrMissingCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}

	if err := s.store.Save(ctx, creds); err != nil {
		return err
	}

	handle, err := s.factory(creds)
	if err != nil {
		return err
	}
	if err := handle.Init(ctx); err != nil {
		s.metrics.RecordSessionInit("error")
		handle.Close()
		return err
	}

	s.metrics.RecordSessionInit("ok")
	s.handle = handle
	log.Info().Msg("Gemini session rebuilt with updated credentials")
	return nil
}

// Live reports whether a session handle is currently established.
func (s *Service) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil
}

// Close tears down the active session, if any.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
}
