package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"voicebroker/internal/infrastructure/metrics"
	"voicebroker/internal/utils/idgen"
)

// Service defines the business operations for session management.
type Service interface {
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSession(ctx context.Context, id string, metadata map[string]string) (*Session, error)
	DeleteSession(ctx context.Context, id string) (bool, error)
}

type service struct {
	store Store
	log   zerolog.Logger
}

// NewService creates a new session service.
func NewService(store Store, log zerolog.Logger) Service {
	return &service{
		store: store,
		log:   log.With().Str("component", "session-service").Logger(),
	}
}

func (s *service) CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	// 26 chars of base-36 gives well over 128 bits of entropy.
	sessionID, err := idgen.GenerateSecureID("sess", 26)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to generate session ID")
		return nil, err
	}

	sess := NewSession(sessionID, req.ClientID, req.Metadata)
	if err := s.store.Create(ctx, sess); err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to store session")
		return nil, err
	}

	metrics.RecordSessionCreated()
	s.log.Info().
		Str("session_id", sessionID).
		Str("client_id", req.ClientID).
		Msg("session created")

	return sess, nil
}

func (s *service) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

func (s *service) UpdateSession(ctx context.Context, id string, metadata map[string]string) (*Session, error) {
	return s.store.Update(ctx, id, metadata)
}

func (s *service) DeleteSession(ctx context.Context, id string) (bool, error) {
	err := s.store.Delete(ctx, id)
	switch {
	case err == nil:
		metrics.RecordSessionDeleted()
		s.log.Info().Str("session_id", id).Msg("session deleted")
		return true, nil
	case errors.Is(err, ErrSessionNotFound):
		return false, nil
	default:
		return false, err
	}
}
