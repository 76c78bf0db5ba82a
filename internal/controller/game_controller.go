package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/benbeisheim/minichess-backend/internal/engine"
	"github.com/benbeisheim/minichess-backend/internal/model"
	"github.com/benbeisheim/minichess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type GameController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewGameController(gameService *service.GameService, log zerolog.Logger) *GameController {
	return &GameController{gameService: gameService, log: log}
}

// Routes mounts the REST endpoints on r.
func (gc *GameController) Routes(r fiber.Router) {
	r.Get("/health", gc.Health)
	r.Get("/new-game", gc.CreateGame)
	r.Get("/game/:gameId", gc.GetGameState)
	r.Delete("/game/:gameId", gc.DeleteGame)
	r.Get("/valid-moves/:gameId", gc.ValidMoves)
	r.Post("/move/:gameId", gc.MakeMove)
	r.Post("/ai-move/:gameId", gc.AIMove)
	r.Post("/undo/:gameId", gc.UndoMove)
}

type analysis struct {
	BestMove       [2][2]int `json:"best_move"`
	Score          int       `json:"score"`
	NodesEvaluated int       `json:"nodes_evaluated"`
	NodesPruned    int       `json:"nodes_pruned"`
	SearchTime     float64   `json:"search_time"`
	MaxDepth       int       `json:"max_depth"`
}

func newAnalysis(r engine.Result) analysis {
	return analysis{
		BestMove:       [2][2]int{{r.Move.From.Row, r.Move.From.Col}, {r.Move.To.Row, r.Move.To.Col}},
		Score:          r.Score,
		NodesEvaluated: r.Nodes,
		NodesPruned:    r.Pruned,
		SearchTime:     r.Elapsed.Seconds(),
		MaxDepth:       r.Depth,
	}
}

func (gc *GameController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	depth, err := queryDepth(c)
	if err != nil {
		return gc.fail(c, err)
	}

	gameID, snap, err := gc.gameService.CreateGame(depth)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"game_id": gameID,
		"board":   snap.Board,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	snap, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(snap)
}

func (gc *GameController) ValidMoves(c *fiber.Ctx) error {
	pos := c.Query("pos")
	if pos == "" {
		return gc.fail(c, fmt.Errorf("%w: pos is required", model.ErrInvalidQuery))
	}

	moves, err := gc.gameService.ValidMoves(c.Params("gameId"), pos)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{"moves": moves})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	from, to := c.Query("from_pos"), c.Query("to_pos")
	if from == "" || to == "" {
		return gc.failMove(c, fmt.Errorf("%w: from_pos and to_pos are required", model.ErrInvalidQuery))
	}

	if c.QueryBool("auto_reply", false) {
		res, err := gc.gameService.MakeMoveWithReply(c.UserContext(), c.Params("gameId"), from, to)
		if err != nil {
			return gc.failMove(c, err)
		}
		body := moveResponse(res.Snapshot)
		if res.Reply != nil {
			body["analysis"] = newAnalysis(*res.Reply)
			body["reply"] = simpleMove(res.Reply.Move)
		}
		return c.JSON(body)
	}

	snap, err := gc.gameService.MakeMove(c.Params("gameId"), from, to)
	if err != nil {
		return gc.failMove(c, err)
	}
	return c.JSON(moveResponse(snap))
}

func (gc *GameController) AIMove(c *fiber.Ctx) error {
	depth, err := queryDepth(c)
	if err != nil {
		return gc.failMove(c, err)
	}

	res, err := gc.gameService.AIMove(c.UserContext(), c.Params("gameId"), depth)
	if err != nil {
		return gc.failMove(c, err)
	}

	body := moveResponse(res.Snapshot)
	body["analysis"] = newAnalysis(res.Search)
	body["move"] = simpleMove(res.Search.Move)
	return c.JSON(body)
}

func (gc *GameController) UndoMove(c *fiber.Ctx) error {
	snap, err := gc.gameService.UndoMove(c.Params("gameId"))
	if err != nil {
		return gc.failMove(c, err)
	}
	return c.JSON(moveResponse(snap))
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Params("gameId")); err != nil {
		return gc.failMove(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func simpleMove(m model.Move) model.SimpleMove {
	return model.SimpleMove{From: m.From.String(), To: m.To.String()}
}

func moveResponse(snap model.Snapshot) fiber.Map {
	return fiber.Map{
		"success":        true,
		"board":          snap.Board,
		"current_player": snap.CurrentPlayer,
		"status":         snap.Status,
		"last_move":      snap.LastMove,
	}
}

// queryDepth reads the optional depth parameter. An absent depth returns zero;
// a present one must be at least 1.
func queryDepth(c *fiber.Ctx) (int, error) {
	raw := c.Query("depth")
	if raw == "" {
		return 0, nil
	}
	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: depth %q is not an integer", model.ErrInvalidQuery, raw)
	}
	if depth < 1 {
		return 0, fmt.Errorf("%w: depth must be at least 1, got %d", model.ErrInvalidQuery, depth)
	}
	return depth, nil
}

// statusFor maps service and rules errors onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound, "Game not found"
	case errors.Is(err, model.ErrInvalidQuery),
		errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrIllegalMove):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrGameAlreadyOver),
		errors.Is(err, model.ErrNoLegalMove),
		errors.Is(err, model.ErrNothingToUndo):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fiber.StatusServiceUnavailable, err.Error()
	}
	return fiber.StatusInternalServerError, err.Error()
}

func (gc *GameController) fail(c *fiber.Ctx, err error) error {
	status, msg := statusFor(err)
	gc.logFailure(c, status, err)
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// failMove is fail for mutating endpoints, which also report success.
func (gc *GameController) failMove(c *fiber.Ctx, err error) error {
	status, msg := statusFor(err)
	gc.logFailure(c, status, err)
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

func (gc *GameController) logFailure(c *fiber.Ctx, status int, err error) {
	event := gc.log.Debug()
	if status >= fiber.StatusInternalServerError {
		event = gc.log.Error()
	}
	event.Err(err).Str("path", c.Path()).Int("status", status).Msg("request failed")
}
