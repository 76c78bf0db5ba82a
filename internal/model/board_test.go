package model

import (
	"errors"
	"testing"
)

func TestParseSquare(t *testing.T) {
	cases := map[string]Position{
		"a1": {Row: 5, Col: 0},
		"e6": {Row: 0, Col: 4},
		"c2": {Row: 4, Col: 2},
		"C3": {Row: 3, Col: 2},
	}
	for in, want := range cases {
		got, err := ParseSquare(in)
		if err != nil {
			t.Fatalf("ParseSquare(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseSquare(%q) = %v, want %v", in, got, want)
		}
		if !IsOnBoard(got) {
			t.Fatalf("IsOnBoard(%v) = false", got)
		}
	}

	for _, in := range []string{"", "f1", "a7", "a0", "zz", "a10"} {
		if _, err := ParseSquare(in); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("ParseSquare(%q) error = %v, want ErrOutOfBounds", in, err)
		}
	}
}

func TestPositionStringRoundTrip(t *testing.T) {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			pos := Position{Row: row, Col: col}
			got, err := ParseSquare(pos.String())
			if err != nil || got != pos {
				t.Fatalf("ParseSquare(%q) = (%v, %v), want %v", pos.String(), got, err, pos)
			}
		}
	}
}

func TestNewBoardLayout(t *testing.T) {
	b := NewBoard()
	if got, want := b.String(), "rnbqk/ppppp/5/5/PPPPP/RNBQK"; got != want {
		t.Fatalf("NewBoard().String() = %q, want %q", got, want)
	}
	if p, ok := b.PieceAt(Position{Row: 5, Col: 4}); !ok || p != (Piece{Color: White, Kind: King}) {
		t.Fatalf("PieceAt(5,4) = (%v, %v), want white king", p, ok)
	}
	if c, ok := b.ColorAt(Position{Row: 0, Col: 0}); !ok || c != Black {
		t.Fatalf("ColorAt(0,0) = (%v, %v), want black", c, ok)
	}
	if !b.IsEmpty(Position{Row: 2, Col: 2}) {
		t.Fatalf("IsEmpty(2,2) = false, want true")
	}
}

func TestParseBoardErrors(t *testing.T) {
	for _, layout := range []string{
		"rnbqk/ppppp/5/5/PPPPP",
		"rnbqk/ppppp/6/5/PPPPP/RNBQK",
		"rnbqk/ppppp/4/5/PPPPP/RNBQK",
		"rnbqk/ppxpp/5/5/PPPPP/RNBQK",
	} {
		if _, err := ParseBoard(layout); !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("ParseBoard(%q) error = %v, want ErrInvalidQuery", layout, err)
		}
	}
}

func TestBoardCloneIsIndependent(t *testing.T) {
	s := NewGameState()
	b := s.Board()
	b[0][0] = Piece{}
	fresh := s.Board()
	if p, ok := fresh.PieceAt(Position{Row: 0, Col: 0}); !ok || p.Kind != Rook {
		t.Fatalf("game board changed through a copy: %v", p)
	}
}

func TestPieceJSON(t *testing.T) {
	got, err := Piece{Color: Black, Kind: Knight}.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error = %v", err)
	}
	if string(got) != `["b","N"]` {
		t.Fatalf("MarshalJSON = %s, want [\"b\",\"N\"]", got)
	}
}
