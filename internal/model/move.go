package model

import "fmt"

// Move is produced by the generator and consumed by Apply. Captured is the zero
// Piece for quiet moves and Promotion is empty unless a pawn reaches the far rank.
type Move struct {
	From      Position
	To        Position
	Captured  Piece
	IsCastle  bool
	Promotion PieceKind
}

func (m Move) IsCapture() bool {
	return !m.Captured.IsZero()
}

func (m Move) String() string {
	s := fmt.Sprintf("%s%s", m.From, m.To)
	if m.Promotion != "" {
		s += string(m.Promotion)
	}
	return s
}

type CastleSide int

const (
	Queenside CastleSide = iota
	Kingside
)

// CastlingRights are flags that only ever flip from false to true during a game.
type CastlingRights struct {
	KingMoved          bool
	QueensideRookMoved bool
	KingsideRookMoved  bool
}

func (cr CastlingRights) rookMoved(side CastleSide) bool {
	if side == Queenside {
		return cr.QueensideRookMoved
	}
	return cr.KingsideRookMoved
}

func (cr *CastlingRights) markRookMoved(side CastleSide) {
	if side == Queenside {
		cr.QueensideRookMoved = true
	} else {
		cr.KingsideRookMoved = true
	}
}

var castleSides = [2]CastleSide{Queenside, Kingside}

func kingHome(c Color) Position {
	return Position{Row: c.homeRow(), Col: Cols - 1}
}

// rookHome is the corner a castling rook starts from. On a five-file board the
// kingside corner is the king's own square, so kingside castling never arises.
func rookHome(c Color, side CastleSide) Position {
	if side == Queenside {
		return Position{Row: c.homeRow(), Col: 0}
	}
	return Position{Row: c.homeRow(), Col: Cols - 1}
}

// castleSideOf reports which rook home pos is for color c, if any.
func castleSideOf(c Color, pos Position) (CastleSide, bool) {
	for _, side := range castleSides {
		if rookHome(c, side) == pos {
			return side, true
		}
	}
	return Queenside, false
}

// castleRookMove gives the rook relocation for a castling king move.
func castleRookMove(m Move) (from, to Position) {
	row := m.From.Row
	if m.To.Col < m.From.Col {
		return Position{Row: row, Col: 0}, Position{Row: row, Col: m.To.Col + 1}
	}
	return Position{Row: row, Col: Cols - 1}, Position{Row: row, Col: m.To.Col - 1}
}
