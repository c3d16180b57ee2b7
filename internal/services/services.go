package services

import (
	"fmt"
	"sync"

	"github.com/januslabs/janus/internal/infrastructure/metrics"
	"github.com/januslabs/janus/internal/infrastructure/redis"
	"github.com/januslabs/janus/internal/services/chat"
	"github.com/januslabs/janus/internal/services/session"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	chatService    *chat.Implementation
	metricsService *metrics.Service
	redisService   *redis.Service
	sessionService *session.Service
	rotator        *session.Rotator
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	metricsService := metrics.NewService()

	// Initialize Redis service (optional)
	redisService := redis.NewService()
	log.Info().Msg("Initializing Redis service")

	// Initialize session service with optional Redis
	sessionService := session.NewService(redisService, metricsService)
	log.Info().Msg("Initializing session service")

	// Schedule cookie rotation against the session service
	rotator := session.NewRotator(sessionService)
	if err := rotator.Start(); err != nil {
		log.Error().Err(err).Msg("Failed to start cookie rotation")
		return nil, fmt.Errorf("failed to start cookie rotation: %w", err)
	}

	// Initialize chat service (required)
	chatService, err := chat.NewService(sessionService, metricsService)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize chat service - required for message processing")
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}
	log.Info().Msg("Initializing chat service")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		chatService:    chatService,
		metricsService: metricsService,
		redisService:   redisService,
		sessionService: sessionService,
		rotator:        rotator,
	}, nil
}

// GetChatService returns the chat service
func (s *Services) GetChatService() *chat.Implementation {
	return s.chatService
}

// GetMetricsService returns the metrics service
func (s *Services) GetMetricsService() *metrics.Service {
	return s.metricsService
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// Close stops background work and tears down infrastructure connections.
func (s *Services) Close() {
	s.rotator.Stop()
	s.sessionService.Close()

	if s.redisService != nil {
		if err := s.redisService.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
}
