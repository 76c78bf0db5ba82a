package service

import (
	"context"
	"fmt"

	"github.com/benbeisheim/minichess-backend/internal/config"
	"github.com/benbeisheim/minichess-backend/internal/engine"
	"github.com/benbeisheim/minichess-backend/internal/model"
	"github.com/benbeisheim/minichess-backend/internal/ws"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type GameService struct {
	gameManager *GameManager
	searcher    *engine.Searcher
	cfg         config.EngineConfig
	log         zerolog.Logger
}

// AIMoveResult is the outcome of an engine move: the search result and the
// state after the move was played.
type AIMoveResult struct {
	Search   engine.Result
	Snapshot model.Snapshot
}

type ReplyResult struct {
	Reply    *engine.Result
	Snapshot model.Snapshot
}

func NewGameService(gameManager *GameManager, searcher *engine.Searcher, cfg config.EngineConfig, log zerolog.Logger) *GameService {
	return &GameService{
		gameManager: gameManager,
		searcher:    searcher,
		cfg:         cfg,
		log:         log,
	}
}

// clampDepth maps a requested depth onto [1, MaxDepth]; zero selects fallback.
func (gs *GameService) clampDepth(depth, fallback int) int {
	if depth == 0 {
		depth = fallback
	}
	return max(1, min(depth, gs.cfg.MaxDepth))
}

// CreateGame starts a game from the initial position. depth is the default
// search depth for AI moves in this game; zero selects the configured default.
func (gs *GameService) CreateGame(depth int) (string, model.Snapshot, error) {
	gameID := uuid.New().String()
	state := model.NewGameState()
	depth = gs.clampDepth(depth, gs.cfg.DefaultDepth)

	if _, err := gs.gameManager.CreateGame(gameID, state, depth); err != nil {
		return "", model.Snapshot{}, fmt.Errorf("failed to create game: %w", err)
	}

	gs.log.Info().Str("game", gameID).Int("depth", depth).Msg("game created")
	return gameID, state.Snapshot(), nil
}

// withSession runs fn while holding the session lock.
func (gs *GameService) withSession(gameID string, fn func(*Session) error) error {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return fn(session)
}

func (gs *GameService) GetGameState(gameID string) (model.Snapshot, error) {
	var snap model.Snapshot
	err := gs.withSession(gameID, func(s *Session) error {
		snap = s.state.Snapshot()
		return nil
	})
	return snap, err
}

// ValidMoves lists the legal destination squares from square for the side to
// move.
func (gs *GameService) ValidMoves(gameID, square string) ([]string, error) {
	pos, err := model.ParseSquare(square)
	if err != nil {
		return nil, err
	}

	var moves []string
	err = gs.withSession(gameID, func(s *Session) error {
		dests, err := s.state.Destinations(pos)
		if err != nil {
			return err
		}
		moves = make([]string, 0, len(dests))
		for _, d := range dests {
			moves = append(moves, d.String())
		}
		return nil
	})
	return moves, err
}

func (gs *GameService) MakeMove(gameID, fromSquare, toSquare string) (model.Snapshot, error) {
	from, err := model.ParseSquare(fromSquare)
	if err != nil {
		return model.Snapshot{}, err
	}
	to, err := model.ParseSquare(toSquare)
	if err != nil {
		return model.Snapshot{}, err
	}

	var snap model.Snapshot
	err = gs.withSession(gameID, func(s *Session) error {
		move, err := s.state.Play(from, to)
		if err != nil {
			return err
		}
		gs.log.Debug().Str("game", gameID).Str("move", move.String()).Msg("move played")
		snap = gs.publish(s)
		return nil
	})
	return snap, err
}

// AIMove searches for the side to move and plays the chosen move. depth zero
// selects the game's depth. The search is bounded by the configured timeout;
// an aborted search leaves the game unchanged.
func (gs *GameService) AIMove(ctx context.Context, gameID string, depth int) (AIMoveResult, error) {
	var out AIMoveResult
	err := gs.withSession(gameID, func(s *Session) error {
		if s.state.Status().IsOver() {
			return model.ErrGameAlreadyOver
		}
		result, err := gs.engineMove(ctx, s, depth)
		if err != nil {
			return err
		}
		out = AIMoveResult{Search: result, Snapshot: gs.publish(s)}
		return nil
	})
	return out, err
}

// MakeMoveWithReply plays from -> to and, unless that ends the game, answers
// with an engine move at the game's depth. Both moves happen under one lock; if
// the search fails the human move is taken back too. Reply is nil when the game
// ended on the human move.
func (gs *GameService) MakeMoveWithReply(ctx context.Context, gameID, fromSquare, toSquare string) (ReplyResult, error) {
	from, err := model.ParseSquare(fromSquare)
	if err != nil {
		return ReplyResult{}, err
	}
	to, err := model.ParseSquare(toSquare)
	if err != nil {
		return ReplyResult{}, err
	}

	var out ReplyResult
	err = gs.withSession(gameID, func(s *Session) error {
		move, err := s.state.Play(from, to)
		if err != nil {
			return err
		}
		gs.log.Debug().Str("game", gameID).Str("move", move.String()).Msg("move played")

		if !s.state.Status().IsOver() {
			result, err := gs.engineMove(ctx, s, 0)
			if err != nil {
				if uerr := s.state.Undo(); uerr != nil {
					return uerr
				}
				return err
			}
			out.Reply = &result
		}
		out.Snapshot = gs.publish(s)
		return nil
	})
	return out, err
}

// engineMove runs a bounded search on the session and applies the result. The
// caller holds s.mu.
func (gs *GameService) engineMove(ctx context.Context, s *Session, depth int) (engine.Result, error) {
	d := gs.clampDepth(depth, s.depth)

	if gs.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gs.cfg.SearchTimeout)
		defer cancel()
	}

	result, err := gs.searcher.ChooseMove(ctx, s.state, d, s.state.SideToMove())
	if err != nil {
		return engine.Result{}, fmt.Errorf("search aborted: %w", err)
	}
	if err := s.state.Apply(result.Move); err != nil {
		return engine.Result{}, err
	}

	gs.log.Info().
		Str("game", s.ID).
		Str("move", result.Move.String()).
		Int("score", result.Score).
		Int("depth", d).
		Int("nodes", result.Nodes).
		Dur("elapsed", result.Elapsed).
		Msg("engine moved")
	return result, nil
}

// UndoMove takes back the most recent ply.
func (gs *GameService) UndoMove(gameID string) (model.Snapshot, error) {
	var snap model.Snapshot
	err := gs.withSession(gameID, func(s *Session) error {
		if err := s.state.Undo(); err != nil {
			return err
		}
		snap = gs.publish(s)
		return nil
	})
	return snap, err
}

func (gs *GameService) DeleteGame(gameID string) error {
	if err := gs.gameManager.RemoveGame(gameID); err != nil {
		return err
	}
	gs.log.Info().Str("game", gameID).Msg("game deleted")
	return nil
}

// RegisterConnection subscribes sub to the game's state feed and sends it the
// current state.
func (gs *GameService) RegisterConnection(gameID, clientID string, sub Subscriber) error {
	return gs.withSession(gameID, func(s *Session) error {
		s.hub.register(clientID, sub)
		gs.log.Debug().Str("game", gameID).Str("client", clientID).Int("subscribers", s.hub.size()).Msg("subscriber registered")
		return s.hub.send(clientID, stateMessage(s.state.Snapshot()))
	})
}

func (gs *GameService) UnregisterConnection(gameID, clientID string, sub Subscriber) {
	session, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	session.hub.unregister(clientID, sub)
}

// SendState re-sends the current state to one subscriber.
func (gs *GameService) SendState(gameID, clientID string) error {
	return gs.withSession(gameID, func(s *Session) error {
		return s.hub.send(clientID, stateMessage(s.state.Snapshot()))
	})
}

// publish snapshots the session and queues it for subscribers. The caller holds
// s.mu, so subscribers see updates in order; the writes happen off the lock.
func (gs *GameService) publish(s *Session) model.Snapshot {
	snap := s.state.Snapshot()
	s.hub.broadcast(stateMessage(snap))
	return snap
}

func stateMessage(snap model.Snapshot) ws.Message {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, snap)
	if err != nil {
		// a Snapshot always marshals
		panic(err)
	}
	return msg
}
