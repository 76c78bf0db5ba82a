package main

import (
	"github.com/benbeisheim/minichess-backend/internal/config"
	"github.com/benbeisheim/minichess-backend/internal/controller"
	"github.com/benbeisheim/minichess-backend/internal/engine"
	"github.com/benbeisheim/minichess-backend/internal/middleware"
	"github.com/benbeisheim/minichess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

// newServer wires the services and routes. The returned func stops the session
// sweeper.
func newServer(cfg *config.Config, log zerolog.Logger) (*fiber.App, func(), error) {
	eval, err := engine.EvaluatorByName(cfg.Engine.Evaluator)
	if err != nil {
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "minichess-backend",
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.ClientIDHeader,
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(middleware.EnsureClientID())
	app.Use(middleware.RequestLogger(log.With().Str("component", "http").Logger()))

	// Initialize services
	searcher := engine.NewSearcher(
		engine.WithEvaluator(eval),
		engine.WithQuiescence(cfg.Engine.Quiescence),
		engine.WithLogger(log.With().Str("component", "engine").Logger()),
	)
	gameManager := service.NewGameManager(cfg.Session, log.With().Str("component", "sessions").Logger())
	gameService := service.NewGameService(gameManager, searcher, cfg.Engine, log)

	// Initialize controllers
	gameController := controller.NewGameController(gameService, log)
	wsController := controller.NewWebSocketController(gameService, log.With().Str("component", "ws").Logger())

	// Set up WebSocket routes
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	// Set up REST routes
	gameController.Routes(app)

	return app, gameManager.Close, nil
}
