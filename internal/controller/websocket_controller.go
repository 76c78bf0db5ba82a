package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/minichess-backend/internal/middleware"
	"github.com/benbeisheim/minichess-backend/internal/service"
	"github.com/benbeisheim/minichess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log,
	}
}

// conn serializes writes to a websocket; broadcasts and replies from the read
// loop may otherwise interleave.
type conn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (sc *conn) WriteJSON(v interface{}) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.c.WriteJSON(v)
}

func (sc *conn) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.c.Close()
}

// HandleConnection serves the read-only state feed of one game.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals(middleware.LocalWSGameID).(string)
	clientID, _ := c.Locals(middleware.LocalWSClientID).(string)
	log := wsc.log.With().Str("game", gameID).Str("client", clientID).Logger()
	sub := &conn{c: c}

	if err := wsc.gameService.RegisterConnection(gameID, clientID, sub); err != nil {
		log.Warn().Err(err).Msg("failed to register connection")
		reply(log, sub, ws.NewErrorMessage(err.Error()))
		if err := sub.Close(); err != nil {
			log.Debug().Err(err).Msg("close failed")
		}
		return
	}
	log.Debug().Msg("websocket connected")

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("websocket closed")
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			reply(log, sub, ws.NewErrorMessage("malformed message"))
			continue
		}
		if err := wsc.handleMessage(gameID, clientID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("handle error")
			reply(log, sub, ws.NewErrorMessage(err.Error()))
		}
	}

	wsc.gameService.UnregisterConnection(gameID, clientID, sub)
}

// reply writes an error frame directly to the client. A failed write is only
// logged; the read loop notices the dead connection on its next read.
func reply(log zerolog.Logger, sub service.Subscriber, msg ws.Message) {
	if err := sub.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Str("type", string(msg.Type)).Msg("write failed")
	}
}

func (wsc *WebSocketController) handleMessage(gameID, clientID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeGetState:
		return wsc.gameService.SendState(gameID, clientID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
