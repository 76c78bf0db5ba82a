package model

import (
	"errors"
	"reflect"
	"testing"
)

func mustLayout(t *testing.T, layout string) *GameState {
	t.Helper()
	s, err := ParseLayout(layout)
	if err != nil {
		t.Fatalf("ParseLayout(%q) error = %v", layout, err)
	}
	return s
}

func sq(t *testing.T, s string) Position {
	t.Helper()
	pos, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q) error = %v", s, err)
	}
	return pos
}

func destinations(moves []Move) []Position {
	out := make([]Position, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.To)
	}
	return out
}

func TestInitialPosition(t *testing.T) {
	s := NewGameState()
	if got, want := s.Layout(), "rnbqk/ppppp/5/5/PPPPP/RNBQK w"; got != want {
		t.Fatalf("Layout() = %q, want %q", got, want)
	}
	if s.KingPosition(White) != (Position{Row: 5, Col: 4}) || s.KingPosition(Black) != (Position{Row: 0, Col: 4}) {
		t.Fatalf("king cache = %v/%v", s.KingPosition(White), s.KingPosition(Black))
	}
	if got := len(s.LegalMoves(White)); got != 7 {
		t.Fatalf("len(LegalMoves(White)) = %d, want 7", got)
	}
	if s.Status().IsOver() {
		t.Fatalf("initial status = %v, want in progress", s.Status())
	}
}

func TestPawnFromInitialPosition(t *testing.T) {
	s := NewGameState()
	moves, err := s.LegalMovesFrom(Position{Row: 4, Col: 2})
	if err != nil {
		t.Fatalf("LegalMovesFrom error = %v", err)
	}
	want := []Position{{Row: 3, Col: 2}}
	if got := destinations(moves); !reflect.DeepEqual(got, want) {
		t.Fatalf("pawn destinations = %v, want %v", got, want)
	}
}

func TestPseudoLegalMovesStayOnBoardAndOffOwnPieces(t *testing.T) {
	layouts := []string{
		"rnbqk/ppppp/5/5/PPPPP/RNBQK w",
		"rnbqk/ppppp/5/5/PPPPP/RNBQK b",
		"r3k/1p1p1/2Q2/1N1B1/P3P/R3K w",
		"r3k/1p1p1/2Q2/1N1B1/P3P/R3K b",
	}
	for _, layout := range layouts {
		s := mustLayout(t, layout)
		for row := 0; row < Rows; row++ {
			for col := 0; col < Cols; col++ {
				pos := Position{Row: row, Col: col}
				p, ok := s.board.PieceAt(pos)
				if !ok || p.Color != s.SideToMove() {
					continue
				}
				moves, err := s.PseudoLegalMoves(pos)
				if err != nil {
					t.Fatalf("%s: PseudoLegalMoves(%s) error = %v", layout, pos, err)
				}
				seen := map[Position]bool{}
				for _, m := range moves {
					if !m.To.OnBoard() {
						t.Fatalf("%s: %v leaves the board", layout, m)
					}
					if c, ok := s.board.ColorAt(m.To); ok && c == p.Color {
						t.Fatalf("%s: %v lands on own piece", layout, m)
					}
					if seen[m.To] {
						t.Fatalf("%s: duplicate destination %s from %s", layout, m.To, pos)
					}
					seen[m.To] = true
				}
			}
		}
	}
}

func TestSlidingRaysStopAtFirstBlocker(t *testing.T) {
	s := mustLayout(t, "4k/5/1p3/5/1R1P1/K4 w")
	moves, err := s.PseudoLegalMoves(Position{Row: 4, Col: 1})
	if err != nil {
		t.Fatalf("PseudoLegalMoves error = %v", err)
	}
	want := []Position{{Row: 5, Col: 1}, {Row: 3, Col: 1}, {Row: 2, Col: 1}, {Row: 4, Col: 2}, {Row: 4, Col: 0}}
	if got := destinations(moves); !reflect.DeepEqual(got, want) {
		t.Fatalf("rook destinations = %v, want %v", got, want)
	}
	for _, m := range moves {
		if m.To == (Position{Row: 2, Col: 1}) && m.Captured != (Piece{Color: Black, Kind: Pawn}) {
			t.Fatalf("capture on b4 has Captured = %v", m.Captured)
		}
	}
}

func TestQueenIsRookPlusBishop(t *testing.T) {
	s := mustLayout(t, "3k1/5/2Q2/5/5/K4 w")
	moves, err := s.PseudoLegalMoves(Position{Row: 2, Col: 2})
	if err != nil {
		t.Fatalf("PseudoLegalMoves error = %v", err)
	}
	// 5 along the file, 4 along the rank, 8 on the diagonals
	if len(moves) != 17 {
		t.Fatalf("queen has %d moves, want 17: %v", len(moves), destinations(moves))
	}
}

func TestKnightAndKingSteps(t *testing.T) {
	s := mustLayout(t, "4k/5/5/5/5/N3K w")
	moves, _ := s.PseudoLegalMoves(Position{Row: 5, Col: 0})
	want := []Position{{Row: 3, Col: 1}, {Row: 4, Col: 2}}
	if got := destinations(moves); !reflect.DeepEqual(got, want) {
		t.Fatalf("knight destinations = %v, want %v", got, want)
	}
	moves, _ = s.PseudoLegalMoves(Position{Row: 5, Col: 4})
	want = []Position{{Row: 4, Col: 4}, {Row: 5, Col: 3}, {Row: 4, Col: 3}}
	if got := destinations(moves); !reflect.DeepEqual(got, want) {
		t.Fatalf("king destinations = %v, want %v", got, want)
	}
}

func TestGeneratorRejectsForeignAndEmptySquares(t *testing.T) {
	s := NewGameState()
	if _, err := s.LegalMovesFrom(Position{Row: 2, Col: 2}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("empty square error = %v, want ErrInvalidQuery", err)
	}
	if _, err := s.LegalMovesFrom(Position{Row: 1, Col: 2}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("black piece on white's turn error = %v, want ErrInvalidQuery", err)
	}
	if _, err := s.PseudoLegalMoves(Position{Row: 6, Col: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("off-board error = %v, want ErrOutOfBounds", err)
	}
}

func TestKingCannotStayOnAttackedFile(t *testing.T) {
	s := mustLayout(t, "k3r/5/5/5/5/4K w")
	if !s.IsInCheck(White) {
		t.Fatalf("white king should be in check from the rook")
	}
	moves, err := s.LegalMovesFrom(Position{Row: 5, Col: 4})
	if err != nil {
		t.Fatalf("LegalMovesFrom error = %v", err)
	}
	want := []Position{{Row: 5, Col: 3}, {Row: 4, Col: 3}}
	if got := destinations(moves); !reflect.DeepEqual(got, want) {
		t.Fatalf("king destinations = %v, want %v", got, want)
	}
	if _, err := s.Play(Position{Row: 5, Col: 4}, Position{Row: 4, Col: 4}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("Play onto attacked square error = %v, want ErrIllegalMove", err)
	}
}

func TestLegalMovesNeverLeaveKingAttacked(t *testing.T) {
	layouts := []string{
		"rnbqk/ppppp/5/5/PPPPP/RNBQK w",
		"k3r/5/5/5/5/4K w",
		"r3k/1p1p1/2Q2/1N1B1/P3P/R3K b",
		"4k/3b1/5/1B3/5/R3K w",
	}
	for _, layout := range layouts {
		s := mustLayout(t, layout)
		mover := s.SideToMove()
		for _, m := range s.LegalMoves(mover) {
			if err := s.Apply(m); err != nil {
				t.Fatalf("%s: Apply(%v) error = %v", layout, m, err)
			}
			if s.IsInCheck(mover) {
				t.Fatalf("%s: %v leaves own king attacked", layout, m)
			}
			if err := s.Undo(); err != nil {
				t.Fatalf("Undo error = %v", err)
			}
		}
		if got := s.Layout(); got != layout {
			t.Fatalf("layout after probing = %q, want %q", got, layout)
		}
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	// the white bishop on d2 shields the king on e1 from the black bishop on b4
	s := mustLayout(t, "k4/5/1b3/5/3B1/4K w")
	moves, err := s.LegalMovesFrom(Position{Row: 4, Col: 3})
	if err != nil {
		t.Fatalf("LegalMovesFrom error = %v", err)
	}
	for _, m := range moves {
		if m.To != (Position{Row: 3, Col: 2}) && m.To != (Position{Row: 2, Col: 1}) {
			t.Fatalf("pinned bishop may move to %s", m.To)
		}
	}
	if len(moves) != 2 {
		t.Fatalf("pinned bishop has %d moves, want 2", len(moves))
	}
}

func TestCheckmate(t *testing.T) {
	s := mustLayout(t, "k4/5/1QK2/5/5/5 w")
	if _, err := s.Play(sq(t, "b4"), sq(t, "b5")); err != nil {
		t.Fatalf("Play error = %v", err)
	}
	if !s.IsInCheck(Black) {
		t.Fatalf("black should be in check")
	}
	if got := s.LegalMoves(Black); len(got) != 0 {
		t.Fatalf("LegalMoves(Black) = %v, want none", got)
	}
	if got, want := s.Status(), (Status{Kind: Checkmate, Winner: White}); got != want {
		t.Fatalf("Status() = %v, want %v", got, want)
	}
	snap := s.Snapshot()
	if !snap.Status.GameOver || snap.Status.Winner == nil || *snap.Status.Winner != "w" {
		t.Fatalf("snapshot status = %+v", snap.Status)
	}
	if err := s.Apply(Move{From: sq(t, "a6"), To: sq(t, "a5")}); !errors.Is(err, ErrGameAlreadyOver) {
		t.Fatalf("Apply after mate error = %v, want ErrGameAlreadyOver", err)
	}
}

func TestStalemate(t *testing.T) {
	s := mustLayout(t, "k4/5/5/1Q3/5/4K w")
	if _, err := s.Play(sq(t, "b3"), sq(t, "b4")); err != nil {
		t.Fatalf("Play error = %v", err)
	}
	if s.IsInCheck(Black) {
		t.Fatalf("black should not be in check")
	}
	if got := s.LegalMoves(Black); len(got) != 0 {
		t.Fatalf("LegalMoves(Black) = %v, want none", got)
	}
	if got := s.Status().Kind; got != Stalemate {
		t.Fatalf("Status().Kind = %v, want stalemate", got)
	}
	if snap := s.Snapshot(); !snap.Status.GameOver || snap.Status.Winner != nil {
		t.Fatalf("snapshot status = %+v, want draw without winner", snap.Status)
	}
}

func TestBareKingsAreDrawn(t *testing.T) {
	s := mustLayout(t, "k4/5/5/5/5/4K w")
	if got := s.Status().Kind; got != DrawOther {
		t.Fatalf("Status().Kind = %v, want draw", got)
	}
}

func TestApplyUndoRestoresState(t *testing.T) {
	layouts := []string{
		"rnbqk/ppppp/5/5/PPPPP/RNBQK w",
		"rnbqk/ppppp/5/5/PPPPP/R3K w",
		"r3k/5/5/5/5/R3K w",
		"k4/2P2/5/5/5/4K w",
	}
	for _, layout := range layouts {
		s := mustLayout(t, layout)
		for _, m := range s.LegalMoves(s.SideToMove()) {
			before := s.Clone()
			if err := s.Apply(m); err != nil {
				t.Fatalf("Apply(%v) error = %v", m, err)
			}
			if err := s.Undo(); err != nil {
				t.Fatalf("Undo error = %v", err)
			}
			if s.board != before.board || s.sideToMove != before.sideToMove ||
				s.castling != before.castling || s.kings != before.kings ||
				s.status != before.status || len(s.history) != len(before.history) {
				t.Fatalf("%s: state after %v + Undo differs", layout, m)
			}
		}
	}
}

func TestCastling(t *testing.T) {
	s := mustLayout(t, "rnbqk/ppppp/5/5/PPPPP/R3K w")
	m, err := s.Play(sq(t, "e1"), sq(t, "c1"))
	if err != nil {
		t.Fatalf("Play castle error = %v", err)
	}
	if !m.IsCastle {
		t.Fatalf("move %v not flagged as castle", m)
	}
	if got, want := s.Layout(), "rnbqk/ppppp/5/5/PPPPP/2KR1 b"; got != want {
		t.Fatalf("Layout() = %q, want %q", got, want)
	}
	if got := s.KingPosition(White); got != sq(t, "c1") {
		t.Fatalf("king cache = %v, want c1", got)
	}
	if cr := s.Castling(White); !cr.KingMoved || !cr.QueensideRookMoved {
		t.Fatalf("castling rights = %+v", cr)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo error = %v", err)
	}
	if got, want := s.Layout(), "rnbqk/ppppp/5/5/PPPPP/R3K w"; got != want {
		t.Fatalf("Layout() after undo = %q, want %q", got, want)
	}
	if cr := s.Castling(White); cr.KingMoved || cr.QueensideRookMoved {
		t.Fatalf("castling rights after undo = %+v", cr)
	}
}

func TestCastlingRules(t *testing.T) {
	t.Run("transit square attacked", func(t *testing.T) {
		s := mustLayout(t, "4k/5/5/3r1/5/R3K w")
		pseudo, _ := s.PseudoLegalMoves(sq(t, "e1"))
		if !containsCastle(pseudo) {
			t.Fatalf("castle should be a pseudo-legal candidate")
		}
		legal, _ := s.LegalMovesFrom(sq(t, "e1"))
		if containsCastle(legal) {
			t.Fatalf("castle through an attacked square was allowed")
		}
	})
	t.Run("path blocked", func(t *testing.T) {
		s := mustLayout(t, "4k/5/5/5/5/RN2K w")
		pseudo, _ := s.PseudoLegalMoves(sq(t, "e1"))
		if containsCastle(pseudo) {
			t.Fatalf("castle with a piece in between was generated")
		}
	})
	t.Run("rook moved away and back", func(t *testing.T) {
		s := mustLayout(t, "4k/5/5/5/5/R3K w")
		for _, step := range [][2]string{{"a1", "a2"}, {"e6", "d6"}, {"a2", "a1"}, {"d6", "e6"}} {
			if _, err := s.Play(sq(t, step[0]), sq(t, step[1])); err != nil {
				t.Fatalf("Play(%s,%s) error = %v", step[0], step[1], err)
			}
		}
		pseudo, _ := s.PseudoLegalMoves(sq(t, "e1"))
		if containsCastle(pseudo) {
			t.Fatalf("castle allowed after the rook moved")
		}
	})
	t.Run("rook captured on home square", func(t *testing.T) {
		s := mustLayout(t, "r3k/5/5/5/5/R3K w")
		if _, err := s.Play(sq(t, "a1"), sq(t, "a6")); err != nil {
			t.Fatalf("Play error = %v", err)
		}
		if !s.Castling(Black).QueensideRookMoved || !s.Castling(White).QueensideRookMoved {
			t.Fatalf("rights = %+v / %+v", s.Castling(White), s.Castling(Black))
		}
	})
}

func containsCastle(moves []Move) bool {
	for _, m := range moves {
		if m.IsCastle {
			return true
		}
	}
	return false
}

func TestPromotion(t *testing.T) {
	s := mustLayout(t, "k4/2P2/5/5/5/4K w")
	m, err := s.Play(sq(t, "c5"), sq(t, "c6"))
	if err != nil {
		t.Fatalf("Play error = %v", err)
	}
	if m.Promotion != Queen {
		t.Fatalf("Promotion = %q, want Q", m.Promotion)
	}
	b := s.Board()
	if p, _ := b.PieceAt(sq(t, "c6")); p != (Piece{Color: White, Kind: Queen}) {
		t.Fatalf("c6 = %v, want white queen", p)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo error = %v", err)
	}
	b = s.Board()
	if p, _ := b.PieceAt(sq(t, "c5")); p != (Piece{Color: White, Kind: Pawn}) {
		t.Fatalf("c5 after undo = %v, want white pawn", p)
	}
}

func TestUndoOnFreshGame(t *testing.T) {
	if err := NewGameState().Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("Undo error = %v, want ErrNothingToUndo", err)
	}
}

func TestNewGameStateFromBoardValidation(t *testing.T) {
	for _, layout := range []string{
		"5/5/5/5/5/4K w",
		"kk3/5/5/5/5/4K w",
		"k3R/5/5/5/5/4K w",
	} {
		if _, err := ParseLayout(layout); !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("ParseLayout(%q) error = %v, want ErrInvalidQuery", layout, err)
		}
	}
}

func TestHistoryAndSnapshot(t *testing.T) {
	s := NewGameState()
	if _, err := s.Play(sq(t, "c2"), sq(t, "c3")); err != nil {
		t.Fatalf("Play error = %v", err)
	}
	if got := s.MoveCount(); got != 1 {
		t.Fatalf("MoveCount() = %d, want 1", got)
	}
	if h := s.History(); len(h) != 1 || h[0].From != sq(t, "c2") {
		t.Fatalf("History() = %v", h)
	}
	snap := s.Snapshot()
	if snap.CurrentPlayer != "b" || snap.LastMove == nil || snap.LastMove.To != "c3" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Board[3][2] == nil || *snap.Board[3][2] != (Piece{Color: White, Kind: Pawn}) {
		t.Fatalf("snapshot c3 = %v", snap.Board[3][2])
	}
	if snap.Board[4][2] != nil {
		t.Fatalf("snapshot c2 = %v, want empty", snap.Board[4][2])
	}
}
