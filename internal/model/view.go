package model

// BoardView is the JSON form of a board: six rows of five cells, each null or a
// ["w","K"] pair.
type BoardView [Rows][Cols]*Piece

type StatusView struct {
	GameOver      bool    `json:"game_over"`
	Winner        *string `json:"winner"`
	CurrentPlayer string  `json:"current_player"`
	Result        string  `json:"result"`
	InCheck       bool    `json:"in_check"`
}

type SimpleMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Snapshot is a detached, serializable copy of a game.
type Snapshot struct {
	Board         BoardView   `json:"board"`
	CurrentPlayer string      `json:"current_player"`
	Status        StatusView  `json:"status"`
	MoveCount     int         `json:"move_count"`
	LastMove      *SimpleMove `json:"last_move"`
}

func NewBoardView(b Board) BoardView {
	var view BoardView
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if p := b[row][col]; !p.IsZero() {
				view[row][col] = &p
			}
		}
	}
	return view
}

func (s *GameState) Snapshot() Snapshot {
	current := s.sideToMove.String()
	status := StatusView{
		GameOver:      s.status.IsOver(),
		CurrentPlayer: current,
		Result:        s.status.Kind.String(),
		InCheck:       s.IsInCheck(s.sideToMove),
	}
	if s.status.Kind == Checkmate {
		winner := s.status.Winner.String()
		status.Winner = &winner
	}
	snap := Snapshot{
		Board:         NewBoardView(s.board),
		CurrentPlayer: current,
		Status:        status,
		MoveCount:     len(s.history),
	}
	if m, ok := s.LastMove(); ok {
		snap.LastMove = &SimpleMove{From: m.From.String(), To: m.To.String()}
	}
	return snap
}
