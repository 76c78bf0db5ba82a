// service/game_manager.go
package service

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/config"
	"github.com/benbeisheim/minichess-backend/internal/model"
	"github.com/rs/zerolog"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// Session is one game in the registry. mu serializes every operation on state,
// so a game has a single writer at a time.
type Session struct {
	ID         string
	mu         sync.Mutex
	state      *model.GameState
	depth      int
	lastAccess atomic.Int64 // unix nanoseconds
	hub        *hub
}

func (s *Session) touch(now time.Time) {
	s.lastAccess.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastAccess.Load()))
}

type GameManager struct {
	games map[string]*Session
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewGameManager starts the expiry loop when both the TTL and the sweep
// interval are positive.
func NewGameManager(cfg config.SessionConfig, log zerolog.Logger) *GameManager {
	gm := &GameManager{
		games: make(map[string]*Session),
		ttl:   cfg.TTL,
		now:   time.Now,
		log:   log,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	if cfg.TTL > 0 && cfg.SweepInterval > 0 {
		go gm.processExpiry(cfg.SweepInterval)
	} else {
		close(gm.done)
	}

	return gm
}

func (gm *GameManager) processExpiry(interval time.Duration) {
	defer close(gm.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := gm.sweep(); n > 0 {
				gm.log.Info().Int("evicted", n).Int("active", gm.Count()).Msg("expired idle games")
			}
		case <-gm.stop:
			return
		}
	}
}

// sweep evicts every session idle for longer than the TTL.
func (gm *GameManager) sweep() int {
	if gm.ttl <= 0 {
		return 0
	}
	now := gm.now()

	gm.mu.Lock()
	var expired []*Session
	for id, session := range gm.games {
		if session.idleSince(now) > gm.ttl {
			expired = append(expired, session)
			delete(gm.games, id)
		}
	}
	gm.mu.Unlock()

	for _, session := range expired {
		gm.log.Debug().Str("game", session.ID).Msg("game expired")
		session.hub.closeAll()
	}
	return len(expired)
}

// Close stops the expiry loop. It is safe to call more than once.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() {
		close(gm.stop)
	})
	<-gm.done
}

func (gm *GameManager) CreateGame(gameID string, state *model.GameState, depth int) (*Session, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, ErrGameExists
	}

	session := &Session{
		ID:    gameID,
		state: state,
		depth: depth,
		hub:   newHub(gm.log.With().Str("game", gameID).Logger()),
	}
	session.touch(gm.now())
	gm.games[gameID] = session
	return session, nil
}

// GetGame looks a session up and marks it as recently used.
func (gm *GameManager) GetGame(gameID string) (*Session, error) {
	gm.mu.RLock()
	session, exists := gm.games[gameID]
	gm.mu.RUnlock()

	if !exists {
		return nil, ErrGameNotFound
	}
	session.touch(gm.now())
	return session, nil
}

func (gm *GameManager) RemoveGame(gameID string) error {
	gm.mu.Lock()
	session, exists := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if !exists {
		return ErrGameNotFound
	}
	session.hub.closeAll()
	return nil
}

func (gm *GameManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}
