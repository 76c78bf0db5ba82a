package model

// IsSquareAttacked reports whether any piece of color by could move to pos.
// Pawns attack along their capture diagonals only.
func (s *GameState) IsSquareAttacked(pos Position, by Color) bool {
	attackedBySlider := func(dirs []Position, kinds ...PieceKind) bool {
		for _, dir := range dirs {
			for target := pos.add(dir); target.OnBoard(); target = target.add(dir) {
				p, ok := s.board.PieceAt(target)
				if !ok {
					continue
				}
				if p.Color == by {
					for _, k := range kinds {
						if p.Kind == k {
							return true
						}
					}
				}
				break
			}
		}
		return false
	}
	attackedByStepper := func(dirs []Position, kind PieceKind) bool {
		for _, dir := range dirs {
			target := pos.add(dir)
			if !target.OnBoard() {
				continue
			}
			if p, ok := s.board.PieceAt(target); ok && p.Color == by && p.Kind == kind {
				return true
			}
		}
		return false
	}

	if attackedBySlider(rookDirs, Rook, Queen) || attackedBySlider(bishopDirs, Bishop, Queen) {
		return true
	}
	if attackedByStepper(knightDirs, Knight) || attackedByStepper(kingDirs, King) {
		return true
	}
	// a pawn of color by on (r, c) attacks (r+forward, c±1)
	row := pos.Row - by.forward()
	for _, col := range []int{pos.Col - 1, pos.Col + 1} {
		from := Position{Row: row, Col: col}
		if !from.OnBoard() {
			continue
		}
		if p, ok := s.board.PieceAt(from); ok && p.Color == by && p.Kind == Pawn {
			return true
		}
	}
	return false
}

func (s *GameState) IsInCheck(c Color) bool {
	return s.IsSquareAttacked(s.kings[c], c.Opponent())
}

// LegalMovesFrom returns the legal moves of the side-to-move piece on pos.
func (s *GameState) LegalMovesFrom(pos Position) ([]Move, error) {
	piece, err := s.ownPieceAt(pos)
	if err != nil {
		return nil, err
	}
	if s.status.IsOver() {
		return []Move{}, nil
	}
	return s.filterLegal(s.pseudoMoves(pos, piece, nil), piece.Color), nil
}

// LegalMoves returns every legal move of color c in board order.
func (s *GameState) LegalMoves(c Color) []Move {
	moves := []Move{}
	var buf []Move
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			p := s.board[row][col]
			if p.IsZero() || p.Color != c {
				continue
			}
			buf = s.pseudoMoves(Position{Row: row, Col: col}, p, buf[:0])
			for _, m := range buf {
				if s.isLegal(m, c) {
					moves = append(moves, m)
				}
			}
		}
	}
	return moves
}

// Destinations returns the target squares of the legal moves from pos.
func (s *GameState) Destinations(pos Position) ([]Position, error) {
	moves, err := s.LegalMovesFrom(pos)
	if err != nil {
		return nil, err
	}
	dests := make([]Position, 0, len(moves))
	for _, m := range moves {
		dests = append(dests, m.To)
	}
	return dests, nil
}

func (s *GameState) filterLegal(pseudo []Move, mover Color) []Move {
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		if s.isLegal(m, mover) {
			legal = append(legal, m)
		}
	}
	return legal
}

func (s *GameState) hasLegalMove(c Color) bool {
	var buf []Move
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			p := s.board[row][col]
			if p.IsZero() || p.Color != c {
				continue
			}
			buf = s.pseudoMoves(Position{Row: row, Col: col}, p, buf[:0])
			for _, m := range buf {
				if s.isLegal(m, c) {
					return true
				}
			}
		}
	}
	return false
}

// isLegal plays m on the live state and takes it back.
func (s *GameState) isLegal(m Move, mover Color) bool {
	if m.IsCastle {
		opp := mover.Opponent()
		transit := Position{Row: m.From.Row, Col: (m.From.Col + m.To.Col) / 2}
		if s.IsSquareAttacked(m.From, opp) || s.IsSquareAttacked(transit, opp) {
			return false
		}
	}
	s.makeMove(m)
	safe := !s.IsInCheck(mover)
	s.unmakeMove()
	return safe
}
