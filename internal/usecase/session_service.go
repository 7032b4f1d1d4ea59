package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/furnilens/backend/internal/domain"
)

const defaultMaxHistory = 10

// SessionServiceConfig holds configuration for the session service
type SessionServiceConfig struct {
	MaxHistory int
	TTL        time.Duration // 0 keeps sessions for the life of the cache
}

// SessionService keeps per-session query history and preference tags.
// Updates to one session are last-write-wins.
type SessionService struct {
	cache      domain.CacheRepository
	maxHistory int
	ttl        time.Duration
}

// NewSessionService creates a session service backed by cache
func NewSessionService(cache domain.CacheRepository, config SessionServiceConfig) *SessionService {
	maxHistory := config.MaxHistory
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}

	return &SessionService{
		cache:      cache,
		maxHistory: maxHistory,
		ttl:        config.TTL,
	}
}

// Record appends query to the session history and folds the intent into the
// session preferences.
func (s *SessionService) Record(
	ctx context.Context,
	sessionID string,
	query string,
	intent domain.QueryIntent,
) (*domain.SessionContext, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		session = &domain.SessionContext{
			SessionID:       sessionID,
			PreviousQueries: []string{},
		}
	}

	session.PreviousQueries = append(session.PreviousQueries, query)
	if len(session.PreviousQueries) > s.maxHistory {
		session.PreviousQueries = session.PreviousQueries[len(session.PreviousQueries)-s.maxHistory:]
	}

	prefs := &session.Preferences
	if intent.MaxPrice != nil {
		prefs.PreferredMaxPrice = intent.MaxPrice
	}
	if intent.MinPrice != nil {
		prefs.PreferredMinPrice = intent.MinPrice
	}
	prefs.PreferredColors = appendUnique(prefs.PreferredColors, intent.Colors...)
	prefs.PreferredMaterials = appendUnique(prefs.PreferredMaterials, intent.Materials...)

	session.LastUpdated = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKey(sessionID), data, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// Get returns the stored context for sessionID or domain.ErrSessionNotFound
func (s *SessionService) Get(ctx context.Context, sessionID string) (*domain.SessionContext, error) {
	data, err := s.cache.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.SessionContext
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Clear removes a session. It reports whether the session existed.
func (s *SessionService) Clear(ctx context.Context, sessionID string) (bool, error) {
	key := sessionKey(sessionID)
	exists, err := s.cache.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	return true, s.cache.Delete(ctx, key)
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !containsString(list, v) {
			list = append(list, v)
		}
	}
	return list
}
