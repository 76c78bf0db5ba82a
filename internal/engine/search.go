package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/model"
	"github.com/rs/zerolog"
)

const (
	// MateScore is the magnitude of a forced mate; shorter mates score higher.
	MateScore = 1_000_000
	infinity  = MateScore + 1

	// the context is polled once per pollInterval nodes
	pollInterval = 1024
)

type Result struct {
	Move    model.Move
	Score   int
	Depth   int
	Nodes   int
	Pruned  int
	Elapsed time.Duration
}

type Option func(*Searcher)

func WithEvaluator(e Evaluator) Option {
	return func(s *Searcher) {
		s.eval = e
	}
}

// WithPruning toggles alpha-beta cutoffs. Disabled, the search is plain minimax.
func WithPruning(enabled bool) Option {
	return func(s *Searcher) {
		s.pruning = enabled
	}
}

// WithQuiescence extends every leaf with up to plies capture-only plies. The side
// to move may stand pat on the static evaluation instead of capturing.
func WithQuiescence(plies int) Option {
	return func(s *Searcher) {
		s.quiescence = max(0, plies)
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Searcher) {
		s.log = log
	}
}

// Searcher holds search settings only; it keeps no per-game state and can be
// shared between games.
type Searcher struct {
	eval       Evaluator
	pruning    bool
	quiescence int
	log        zerolog.Logger
}

func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{
		eval:    MaterialEvaluator{},
		pruning: true,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChooseMove searches depth plies ahead for color, which must be the side to
// move. The state is explored with Apply/Undo and is left exactly as it was
// found, also when ctx is cancelled.
func (se *Searcher) ChooseMove(ctx context.Context, state *model.GameState, depth int, color model.Color) (Result, error) {
	if depth < 1 {
		return Result{}, fmt.Errorf("%w: search depth %d", model.ErrInvalidQuery, depth)
	}
	if color != state.SideToMove() {
		return Result{}, fmt.Errorf("%w: %s is not to move", model.ErrInvalidQuery, color)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if state.Status().IsOver() {
		return Result{}, fmt.Errorf("%w: game is %s", model.ErrNoLegalMove, state.Status().Kind)
	}
	moves := state.LegalMoves(color)
	if len(moves) == 0 {
		return Result{}, model.ErrNoLegalMove
	}

	start := time.Now()
	w := &walker{
		ctx:        ctx,
		state:      state,
		color:      color,
		eval:       se.eval,
		pruning:    se.pruning,
		quiescence: se.quiescence,
	}
	best := Result{Score: -infinity, Depth: depth}
	alpha, beta := -infinity, infinity
	for _, m := range moves {
		if err := state.Apply(m); err != nil {
			return Result{}, err
		}
		score, err := w.search(depth-1, 1, alpha, beta)
		if uerr := state.Undo(); uerr != nil {
			return Result{}, uerr
		}
		if err != nil {
			return Result{}, err
		}
		if score > best.Score {
			best.Score = score
			best.Move = m
		}
		if score > alpha {
			alpha = score
		}
	}
	best.Nodes = w.nodes
	best.Pruned = w.pruned
	best.Elapsed = time.Since(start)

	se.log.Debug().
		Str("color", color.String()).
		Int("depth", depth).
		Int("quiescence", se.quiescence).
		Str("move", best.Move.String()).
		Int("score", best.Score).
		Int("nodes", best.Nodes).
		Int("pruned", best.Pruned).
		Dur("elapsed", best.Elapsed).
		Msg("search finished")
	return best, nil
}

type walker struct {
	ctx        context.Context
	state      *model.GameState
	color      model.Color
	eval       Evaluator
	pruning    bool
	quiescence int
	nodes      int
	pruned     int
}

// search returns the minimax value of the current node for w.color. Nodes where
// w.color is to move maximize, the others minimize. Below depth 0 only captures
// are searched, down to -w.quiescence, with the static evaluation as a floor
// for the side to move.
func (w *walker) search(depth, ply, alpha, beta int) (int, error) {
	w.nodes++
	if w.nodes%pollInterval == 0 {
		if err := w.ctx.Err(); err != nil {
			return 0, err
		}
	}

	switch st := w.state.Status(); st.Kind {
	case model.Checkmate:
		if st.Winner == w.color {
			return MateScore - ply, nil
		}
		return -(MateScore - ply), nil
	case model.Stalemate, model.DrawOther:
		return 0, nil
	}

	side := w.state.SideToMove()
	maximizing := side == w.color
	best := infinity
	if maximizing {
		best = -infinity
	}

	var moves []model.Move
	if depth > 0 {
		moves = w.state.LegalMoves(side)
	} else {
		stand := w.eval.Evaluate(w.state, w.color)
		if depth <= -w.quiescence {
			return stand, nil
		}
		best = stand
		if maximizing {
			alpha = max(alpha, best)
		} else {
			beta = min(beta, best)
		}
		if w.pruning && alpha >= beta {
			return best, nil
		}
		moves = captures(w.state.LegalMoves(side))
	}

	for i, m := range moves {
		if err := w.state.Apply(m); err != nil {
			return 0, err
		}
		score, err := w.search(depth-1, ply+1, alpha, beta)
		if uerr := w.state.Undo(); uerr != nil {
			return 0, uerr
		}
		if err != nil {
			return 0, err
		}
		if maximizing {
			best = max(best, score)
			alpha = max(alpha, best)
		} else {
			best = min(best, score)
			beta = min(beta, best)
		}
		if w.pruning && alpha >= beta {
			w.pruned += len(moves) - i - 1
			break
		}
	}
	return best, nil
}

func captures(moves []model.Move) []model.Move {
	out := moves[:0]
	for _, m := range moves {
		if m.IsCapture() {
			out = append(out, m)
		}
	}
	return out
}
