package model

import (
	"fmt"
	"strings"
)

type StatusKind int

const (
	InProgress StatusKind = iota
	Checkmate
	Stalemate
	DrawOther
)

func (k StatusKind) String() string {
	switch k {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawOther:
		return "draw"
	}
	return "in_progress"
}

// Status is the terminal classification of a position. Winner is only meaningful
// for Checkmate.
type Status struct {
	Kind   StatusKind
	Winner Color
}

func (s Status) IsOver() bool {
	return s.Kind != InProgress
}

// historyEntry holds what Undo needs beyond the Move itself.
type historyEntry struct {
	move     Move
	mover    Piece
	castling [2]CastlingRights
	status   Status
}

// GameState is a single game. It is not safe for concurrent use: callers serialize
// every operation, including read-only queries, because the legality filter
// temporarily mutates the position.
type GameState struct {
	board      Board
	sideToMove Color
	castling   [2]CastlingRights
	kings      [2]Position
	history    []historyEntry
	status     Status
}

func NewGameState() *GameState {
	s := &GameState{
		board:      NewBoard(),
		sideToMove: White,
		history:    make([]historyEntry, 0, 64),
	}
	s.kings[White] = kingHome(White)
	s.kings[Black] = kingHome(Black)
	return s
}

// NewGameStateFromBoard builds a game from an arbitrary position. Each side must
// have exactly one king. Castling rights are granted where king and rook still
// stand on their home squares.
func NewGameStateFromBoard(b Board, sideToMove Color) (*GameState, error) {
	s := &GameState{
		board:      b,
		sideToMove: sideToMove,
		history:    make([]historyEntry, 0, 64),
	}
	var found [2]int
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			p := b[row][col]
			if p.Kind == King {
				found[p.Color]++
				s.kings[p.Color] = Position{Row: row, Col: col}
			}
		}
	}
	for _, c := range []Color{White, Black} {
		if found[c] != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvalidQuery, c, found[c])
		}
		cr := &s.castling[c]
		cr.KingMoved = s.kings[c] != kingHome(c)
		for _, side := range castleSides {
			home := rookHome(c, side)
			if p, ok := b.PieceAt(home); !ok || p != (Piece{Color: c, Kind: Rook}) {
				cr.markRookMoved(side)
			}
		}
	}
	if s.IsInCheck(sideToMove.Opponent()) {
		return nil, fmt.Errorf("%w: side not to move is in check", ErrInvalidQuery)
	}
	s.status = s.classify()
	return s, nil
}

// ParseLayout reads "<ranks> <side>", e.g. "rnbqk/ppppp/5/5/PPPPP/RNBQK w".
// The side defaults to White when omitted.
func ParseLayout(layout string) (*GameState, error) {
	fields := strings.Fields(layout)
	if len(fields) == 0 || len(fields) > 2 {
		return nil, fmt.Errorf("%w: malformed layout %q", ErrInvalidQuery, layout)
	}
	b, err := ParseBoard(fields[0])
	if err != nil {
		return nil, err
	}
	side := White
	if len(fields) == 2 {
		if side, err = ParseColor(fields[1]); err != nil {
			return nil, err
		}
	}
	return NewGameStateFromBoard(b, side)
}

func (s *GameState) Layout() string {
	return s.board.String() + " " + s.sideToMove.String()
}

// Board returns a copy; mutating it never affects the game.
func (s *GameState) Board() Board {
	return s.board.Clone()
}

func (s *GameState) SideToMove() Color {
	return s.sideToMove
}

func (s *GameState) Castling(c Color) CastlingRights {
	return s.castling[c]
}

func (s *GameState) KingPosition(c Color) Position {
	return s.kings[c]
}

func (s *GameState) Status() Status {
	return s.status
}

func (s *GameState) MoveCount() int {
	return len(s.history)
}

func (s *GameState) History() []Move {
	moves := make([]Move, len(s.history))
	for i, h := range s.history {
		moves[i] = h.move
	}
	return moves
}

func (s *GameState) LastMove() (Move, bool) {
	if len(s.history) == 0 {
		return Move{}, false
	}
	return s.history[len(s.history)-1].move, true
}

// PieceAt is the bounds-checked form of Board.PieceAt.
func (s *GameState) PieceAt(pos Position) (Piece, bool, error) {
	if !pos.OnBoard() {
		return Piece{}, false, fmt.Errorf("%w: %v", ErrOutOfBounds, pos)
	}
	p, ok := s.board.PieceAt(pos)
	return p, ok, nil
}

// Clone returns an independent deep copy, history included.
func (s *GameState) Clone() *GameState {
	c := *s
	c.history = make([]historyEntry, len(s.history), cap(s.history))
	copy(c.history, s.history)
	return &c
}

// Apply executes m, which must come from the legality filter; it is not
// re-validated. Status is reclassified for the new side to move.
func (s *GameState) Apply(m Move) error {
	if s.status.IsOver() {
		return ErrGameAlreadyOver
	}
	s.makeMove(m)
	s.status = s.classify()
	return nil
}

// Play looks up the legal move from -> to and applies it.
func (s *GameState) Play(from, to Position) (Move, error) {
	if s.status.IsOver() {
		return Move{}, ErrGameAlreadyOver
	}
	if !to.OnBoard() {
		return Move{}, fmt.Errorf("%w: %v", ErrOutOfBounds, to)
	}
	moves, err := s.LegalMovesFrom(from)
	if err != nil {
		return Move{}, err
	}
	for _, m := range moves {
		if m.To == to {
			s.makeMove(m)
			s.status = s.classify()
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %s to %s", ErrIllegalMove, from, to)
}

// Undo reverts the most recent Apply exactly.
func (s *GameState) Undo() error {
	if len(s.history) == 0 {
		return ErrNothingToUndo
	}
	s.unmakeMove()
	return nil
}

func (s *GameState) makeMove(m Move) {
	mover := s.board[m.From.Row][m.From.Col]
	s.history = append(s.history, historyEntry{
		move:     m,
		mover:    mover,
		castling: s.castling,
		status:   s.status,
	})

	placed := mover
	if m.Promotion != "" {
		placed.Kind = m.Promotion
	}
	s.board.set(m.From, Piece{})
	s.board.set(m.To, placed)

	switch mover.Kind {
	case King:
		s.kings[mover.Color] = m.To
		s.castling[mover.Color].KingMoved = true
		if m.IsCastle {
			rookFrom, rookTo := castleRookMove(m)
			s.board.set(rookTo, s.board[rookFrom.Row][rookFrom.Col])
			s.board.set(rookFrom, Piece{})
			if side, ok := castleSideOf(mover.Color, rookFrom); ok {
				s.castling[mover.Color].markRookMoved(side)
			}
		}
	case Rook:
		if side, ok := castleSideOf(mover.Color, m.From); ok {
			s.castling[mover.Color].markRookMoved(side)
		}
	}
	if m.Captured.Kind == Rook {
		if side, ok := castleSideOf(m.Captured.Color, m.To); ok {
			s.castling[m.Captured.Color].markRookMoved(side)
		}
	}

	s.sideToMove = s.sideToMove.Opponent()
}

func (s *GameState) unmakeMove() {
	last := len(s.history) - 1
	h := s.history[last]
	s.history = s.history[:last]
	m := h.move

	s.board.set(m.From, h.mover)
	s.board.set(m.To, m.Captured)
	if h.mover.Kind == King {
		s.kings[h.mover.Color] = m.From
		if m.IsCastle {
			rookFrom, rookTo := castleRookMove(m)
			s.board.set(rookFrom, s.board[rookTo.Row][rookTo.Col])
			s.board.set(rookTo, Piece{})
		}
	}
	s.castling = h.castling
	s.status = h.status
	s.sideToMove = s.sideToMove.Opponent()
}

// classify evaluates the terminal status for the side to move.
func (s *GameState) classify() Status {
	if !s.hasLegalMove(s.sideToMove) {
		if s.IsInCheck(s.sideToMove) {
			return Status{Kind: Checkmate, Winner: s.sideToMove.Opponent()}
		}
		return Status{Kind: Stalemate}
	}
	if s.onlyKingsLeft() {
		return Status{Kind: DrawOther}
	}
	return Status{Kind: InProgress}
}

func (s *GameState) onlyKingsLeft() bool {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if p := s.board[row][col]; !p.IsZero() && p.Kind != King {
				return false
			}
		}
	}
	return true
}
