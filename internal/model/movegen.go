package model

import "fmt"

var (
	rookDirs   = []Position{{Row: 1, Col: 0}, {Row: -1, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: -1}}
	bishopDirs = []Position{{Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: -1, Col: -1}}
	knightDirs = []Position{{Row: 2, Col: 1}, {Row: 2, Col: -1}, {Row: -2, Col: 1}, {Row: -2, Col: -1}, {Row: 1, Col: 2}, {Row: 1, Col: -2}, {Row: -1, Col: 2}, {Row: -1, Col: -2}}
	kingDirs   = []Position{{Row: 1, Col: 0}, {Row: -1, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: -1}, {Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: -1, Col: -1}}
)

// PseudoLegalMoves returns the candidate moves of the side-to-move piece on pos,
// without regard to the mover's king safety.
func (s *GameState) PseudoLegalMoves(pos Position) ([]Move, error) {
	piece, err := s.ownPieceAt(pos)
	if err != nil {
		return nil, err
	}
	return s.pseudoMoves(pos, piece, nil), nil
}

func (s *GameState) ownPieceAt(pos Position) (Piece, error) {
	if !pos.OnBoard() {
		return Piece{}, fmt.Errorf("%w: %v", ErrOutOfBounds, pos)
	}
	piece, ok := s.board.PieceAt(pos)
	if !ok {
		return Piece{}, fmt.Errorf("%w: no piece on %s", ErrInvalidQuery, pos)
	}
	if piece.Color != s.sideToMove {
		return Piece{}, fmt.Errorf("%w: %s is not %s's piece", ErrInvalidQuery, pos, s.sideToMove)
	}
	return piece, nil
}

// pseudoMoves appends the candidates of piece on pos to dst.
func (s *GameState) pseudoMoves(pos Position, piece Piece, dst []Move) []Move {
	switch piece.Kind {
	case Pawn:
		return s.pawnMoves(pos, piece, dst)
	case Knight:
		return s.stepMoves(pos, piece, knightDirs, dst)
	case Bishop:
		return s.slideMoves(pos, piece, bishopDirs, dst)
	case Rook:
		return s.slideMoves(pos, piece, rookDirs, dst)
	case Queen:
		dst = s.slideMoves(pos, piece, rookDirs, dst)
		return s.slideMoves(pos, piece, bishopDirs, dst)
	case King:
		dst = s.stepMoves(pos, piece, kingDirs, dst)
		return s.castleMoves(pos, piece, dst)
	}
	return dst
}

func (s *GameState) pawnMoves(pos Position, piece Piece, dst []Move) []Move {
	dir := piece.Color.forward()
	promotion := PieceKind("")
	if pos.Row+dir == piece.Color.promotionRow() {
		promotion = Queen
	}
	ahead := Position{Row: pos.Row + dir, Col: pos.Col}
	if ahead.OnBoard() && s.board.IsEmpty(ahead) {
		dst = append(dst, Move{From: pos, To: ahead, Promotion: promotion})
	}
	for _, side := range []int{-1, 1} {
		target := Position{Row: pos.Row + dir, Col: pos.Col + side}
		if !target.OnBoard() {
			continue
		}
		if victim, ok := s.board.PieceAt(target); ok && victim.Color != piece.Color {
			dst = append(dst, Move{From: pos, To: target, Captured: victim, Promotion: promotion})
		}
	}
	return dst
}

func (s *GameState) stepMoves(pos Position, piece Piece, dirs []Position, dst []Move) []Move {
	for _, dir := range dirs {
		target := pos.add(dir)
		if !target.OnBoard() {
			continue
		}
		victim, ok := s.board.PieceAt(target)
		if ok && victim.Color == piece.Color {
			continue
		}
		dst = append(dst, Move{From: pos, To: target, Captured: victim})
	}
	return dst
}

func (s *GameState) slideMoves(pos Position, piece Piece, dirs []Position, dst []Move) []Move {
	for _, dir := range dirs {
		for target := pos.add(dir); target.OnBoard(); target = target.add(dir) {
			victim, ok := s.board.PieceAt(target)
			if !ok {
				dst = append(dst, Move{From: pos, To: target})
				continue
			}
			if victim.Color != piece.Color {
				dst = append(dst, Move{From: pos, To: target, Captured: victim})
			}
			break
		}
	}
	return dst
}

// castleMoves adds castling candidates. Attacked-square conditions are checked by
// the legality filter.
func (s *GameState) castleMoves(pos Position, king Piece, dst []Move) []Move {
	rights := s.castling[king.Color]
	if rights.KingMoved || pos != kingHome(king.Color) {
		return dst
	}
	for _, side := range castleSides {
		rook := rookHome(king.Color, side)
		if rook == pos || rights.rookMoved(side) {
			continue
		}
		if p, ok := s.board.PieceAt(rook); !ok || p != (Piece{Color: king.Color, Kind: Rook}) {
			continue
		}
		step := 1
		if rook.Col < pos.Col {
			step = -1
		}
		if abs(rook.Col-pos.Col) < 3 {
			continue
		}
		clear := true
		for col := pos.Col + step; col != rook.Col; col += step {
			if !s.board.IsEmpty(Position{Row: pos.Row, Col: col}) {
				clear = false
				break
			}
		}
		if clear {
			dst = append(dst, Move{From: pos, To: Position{Row: pos.Row, Col: pos.Col + 2*step}, IsCastle: true})
		}
	}
	return dst
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
