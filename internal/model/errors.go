package model

import "errors"

var (
	ErrInvalidQuery    = errors.New("invalid query")
	ErrOutOfBounds     = errors.New("position out of bounds")
	ErrIllegalMove     = errors.New("illegal move")
	ErrNoLegalMove     = errors.New("no legal move")
	ErrGameAlreadyOver = errors.New("game already over")
	ErrNothingToUndo   = errors.New("nothing to undo")
)
