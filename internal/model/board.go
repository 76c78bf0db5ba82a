package model

import (
	"fmt"
	"strings"
)

const (
	Rows = 6
	Cols = 5
)

type Color int

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "w"
	}
	return "b"
}

func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// ParseColor accepts "w"/"b" as well as "white"/"black".
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(s) {
	case "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	}
	return White, fmt.Errorf("%w: unknown color %q", ErrInvalidQuery, s)
}

// homeRow is the back rank of each color; pawns of that color advance away from it.
func (c Color) homeRow() int {
	if c == White {
		return Rows - 1
	}
	return 0
}

func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

func (c Color) promotionRow() int {
	return c.Opponent().homeRow()
}

type PieceKind string

const (
	Pawn   PieceKind = "P"
	Rook   PieceKind = "R"
	Knight PieceKind = "N"
	Bishop PieceKind = "B"
	Queen  PieceKind = "Q"
	King   PieceKind = "K"
)

func (k PieceKind) valid() bool {
	switch k {
	case Pawn, Rook, Knight, Bishop, Queen, King:
		return true
	}
	return false
}

// Piece is a value; the zero Piece marks an empty square.
type Piece struct {
	Color Color
	Kind  PieceKind
}

func (p Piece) IsZero() bool {
	return p.Kind == ""
}

// MarshalJSON encodes a piece as the ["w","K"] pair the board view uses.
func (p Piece) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`[%q,%q]`, p.Color.String(), string(p.Kind))), nil
}

// letter returns the layout letter: upper case for White, lower case for Black.
func (p Piece) letter() byte {
	b := string(p.Kind)[0]
	if p.Color == Black {
		return b + ('a' - 'A')
	}
	return b
}

type Position struct {
	Row int
	Col int
}

func (p Position) OnBoard() bool {
	return p.Row >= 0 && p.Row < Rows && p.Col >= 0 && p.Col < Cols
}

func (p Position) add(d Position) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

// String renders the square in algebraic form, e.g. (5,0) is "a1".
func (p Position) String() string {
	return fmt.Sprintf("%c%d", 'a'+p.Col, Rows-p.Row)
}

// ParseSquare is the inverse of Position.String.
func ParseSquare(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w: malformed square %q", ErrOutOfBounds, s)
	}
	pos := Position{Row: Rows - int(s[1]-'0'), Col: int(s[0] - 'a')}
	if s[1] < '0' || s[1] > '9' || !pos.OnBoard() {
		return Position{}, fmt.Errorf("%w: square %q", ErrOutOfBounds, s)
	}
	return pos, nil
}

// Board is a fixed 6x5 grid. It is a value: assignment copies every square.
type Board [Rows][Cols]Piece

func NewBoard() Board {
	var b Board
	back := [Cols]PieceKind{Rook, Knight, Bishop, Queen, King}
	for col := 0; col < Cols; col++ {
		b[0][col] = Piece{Color: Black, Kind: back[col]}
		b[1][col] = Piece{Color: Black, Kind: Pawn}
		b[Rows-2][col] = Piece{Color: White, Kind: Pawn}
		b[Rows-1][col] = Piece{Color: White, Kind: back[col]}
	}
	return b
}

func IsOnBoard(pos Position) bool {
	return pos.OnBoard()
}

// PieceAt reports the piece on pos. pos must be on the board.
func (b *Board) PieceAt(pos Position) (Piece, bool) {
	p := b[pos.Row][pos.Col]
	return p, !p.IsZero()
}

func (b *Board) IsEmpty(pos Position) bool {
	return b[pos.Row][pos.Col].IsZero()
}

func (b *Board) ColorAt(pos Position) (Color, bool) {
	p, ok := b.PieceAt(pos)
	return p.Color, ok
}

func (b *Board) Clone() Board {
	return *b
}

func (b *Board) set(pos Position, p Piece) {
	b[pos.Row][pos.Col] = p
}

// String renders the board in layout notation, without the side to move.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < Rows; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for col := 0; col < Cols; col++ {
			p := b[row][col]
			if p.IsZero() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}

// ParseBoard reads the rank part of a layout string, e.g. "rnbqk/ppppp/5/5/PPPPP/RNBQK".
func ParseBoard(layout string) (Board, error) {
	var b Board
	ranks := strings.Split(layout, "/")
	if len(ranks) != Rows {
		return b, fmt.Errorf("%w: layout has %d ranks, want %d", ErrInvalidQuery, len(ranks), Rows)
	}
	for row, rank := range ranks {
		col := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '1' && ch <= '9' {
				col += int(ch - '0')
				continue
			}
			if col >= Cols {
				return b, fmt.Errorf("%w: rank %d overflows", ErrInvalidQuery, row)
			}
			color := White
			upper := ch
			if ch >= 'a' && ch <= 'z' {
				color = Black
				upper = ch - ('a' - 'A')
			}
			kind := PieceKind(string(upper))
			if !kind.valid() {
				return b, fmt.Errorf("%w: unknown piece %q", ErrInvalidQuery, ch)
			}
			b[row][col] = Piece{Color: color, Kind: kind}
			col++
		}
		if col != Cols {
			return b, fmt.Errorf("%w: rank %d has %d files, want %d", ErrInvalidQuery, row, col, Cols)
		}
	}
	return b, nil
}
