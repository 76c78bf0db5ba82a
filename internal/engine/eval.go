package engine

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/minichess-backend/internal/model"
)

// Evaluator scores a position from perspective's point of view, in centipawns.
type Evaluator interface {
	Evaluate(s *model.GameState, perspective model.Color) int
}

var pieceValues = map[model.PieceKind]int{
	model.Pawn:   100,
	model.Knight: 300,
	model.Bishop: 300,
	model.Rook:   500,
	model.Queen:  900,
	model.King:   0, // both kings are always on the board
}

func PieceValue(k model.PieceKind) int {
	return pieceValues[k]
}

// MaterialEvaluator is the signed material balance.
type MaterialEvaluator struct{}

func (MaterialEvaluator) Evaluate(s *model.GameState, perspective model.Color) int {
	b := s.Board()
	score := 0
	for row := 0; row < model.Rows; row++ {
		for col := 0; col < model.Cols; col++ {
			p := b[row][col]
			if p.IsZero() {
				continue
			}
			if p.Color == perspective {
				score += pieceValues[p.Kind]
			} else {
				score -= pieceValues[p.Kind]
			}
		}
	}
	return score
}

// Square bonuses from White's side of the board; Black reads them mirrored.
var squareBonus = map[model.PieceKind][model.Rows][model.Cols]int{
	model.Pawn: {
		{0, 0, 0, 0, 0},
		{50, 50, 50, 50, 50},
		{20, 20, 30, 20, 20},
		{10, 10, 20, 10, 10},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	},
	model.Knight: {
		{0, 10, 20, 10, 0},
		{10, 20, 40, 20, 10},
		{20, 30, 50, 30, 20},
		{20, 30, 50, 30, 20},
		{10, 20, 40, 20, 10},
		{0, 10, 20, 10, 0},
	},
	model.Bishop: {
		{0, 10, 20, 10, 0},
		{10, 20, 30, 20, 10},
		{10, 30, 40, 30, 10},
		{10, 30, 40, 30, 10},
		{10, 20, 30, 20, 10},
		{0, 10, 20, 10, 0},
	},
	model.Rook: {
		{20, 30, 30, 30, 20},
		{30, 40, 40, 40, 30},
		{10, 20, 20, 20, 10},
		{10, 20, 20, 20, 10},
		{10, 20, 20, 20, 10},
		{0, 0, 0, 0, 0},
	},
	model.Queen: {
		{20, 30, 30, 30, 20},
		{30, 40, 40, 40, 30},
		{20, 30, 30, 30, 20},
		{20, 30, 30, 30, 20},
		{10, 20, 20, 20, 10},
		{0, 10, 20, 10, 0},
	},
	model.King: {
		{-30, -40, -40, -40, -30},
		{-40, -50, -50, -50, -40},
		{-40, -50, -50, -50, -40},
		{-40, -50, -50, -50, -40},
		{-30, -40, -40, -40, -30},
		{0, 0, 0, 0, 0},
	},
}

// PositionalEvaluator adds square bonuses to the material balance.
type PositionalEvaluator struct{}

func (PositionalEvaluator) Evaluate(s *model.GameState, perspective model.Color) int {
	b := s.Board()
	score := 0
	for row := 0; row < model.Rows; row++ {
		for col := 0; col < model.Cols; col++ {
			p := b[row][col]
			if p.IsZero() {
				continue
			}
			tableRow := row
			if p.Color == model.Black {
				tableRow = model.Rows - 1 - row
			}
			value := pieceValues[p.Kind] + squareBonus[p.Kind][tableRow][col]
			if p.Color == perspective {
				score += value
			} else {
				score -= value
			}
		}
	}
	return score
}

const (
	cornerKingPenalty  = 200
	doubledPawnPenalty = 50
	mobilityWeight     = 10
)

// MobilityEvaluator extends PositionalEvaluator with a penalty for a king on a
// corner square, a penalty for each pawn with a friendly pawn directly ahead of
// it, and a bonus per legal move more than the opponent has.
type MobilityEvaluator struct{}

func (MobilityEvaluator) Evaluate(s *model.GameState, perspective model.Color) int {
	score := PositionalEvaluator{}.Evaluate(s, perspective)

	b := s.Board()
	for row := 0; row < model.Rows; row++ {
		for col := 0; col < model.Cols; col++ {
			p := b[row][col]
			penalty := 0
			switch p.Kind {
			case model.King:
				if (row == 0 || row == model.Rows-1) && (col == 0 || col == model.Cols-1) {
					penalty = cornerKingPenalty
				}
			case model.Pawn:
				ahead := row - 1
				if p.Color == model.Black {
					ahead = row + 1
				}
				if ahead >= 0 && ahead < model.Rows && b[ahead][col] == (model.Piece{Color: p.Color, Kind: model.Pawn}) {
					penalty = doubledPawnPenalty
				}
			}
			if p.Color == perspective {
				score -= penalty
			} else {
				score += penalty
			}
		}
	}

	own := len(s.LegalMoves(perspective))
	theirs := len(s.LegalMoves(perspective.Opponent()))
	return score + mobilityWeight*(own-theirs)
}

// EvaluatorByName maps a configuration value to an evaluator.
func EvaluatorByName(name string) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "material":
		return MaterialEvaluator{}, nil
	case "positional":
		return PositionalEvaluator{}, nil
	case "mobility":
		return MobilityEvaluator{}, nil
	}
	return nil, fmt.Errorf("unknown evaluator %q", name)
}
