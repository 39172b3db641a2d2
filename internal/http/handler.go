package http

import (
	"fmt"
	"strconv"
	"time"

	"minichess/internal/core"
	"minichess/internal/processor"
	"minichess/internal/service"
	"minichess/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func rateLimit(max int, expiration time.Duration, details string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   expiration,
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: details,
			})
		},
	})
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second, // Above the long-poll wait
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	api.Get("/health", h.Health)

	validateToken := TokenValidator(svc.ValidateToken)

	auth := api.Group("/auth")
	auth.Post("/register", rateLimit(5, time.Minute, "5 registrations per minute allowed"), h.RegisterHandler)
	auth.Post("/login", rateLimit(10, time.Minute, "10 login attempts per minute allowed"), h.LoginHandler)
	auth.Get("/me", AuthRequired(validateToken), h.GetCurrentUserHandler)

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(rateLimit(maxReq, time.Second, fmt.Sprintf("%d requests per second allowed", maxReq)))
	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/games", OptionalAuth(validateToken), h.CreateGame)
	api.Put("/games/:gameId/players", h.ConfigurePlayers)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Post("/games/:gameId/moves", OptionalAuth(validateToken), h.MakeMove)
	api.Get("/games/:gameId/moves", h.GetMoves)
	api.Post("/games/:gameId/undo", h.UndoMove)
	api.Get("/games/:gameId/board", h.GetBoard)
	api.Get("/games/:gameId/history", h.GetHistory)
	api.Get("/games/:gameId/ws", requireUpgrade, websocket.New(h.GameStream))

	return app
}

func invalidGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

func validationBypass(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: "validation bypass detected",
		Code:  core.ErrInternalError,
	})
}

// respond writes the processor result with status on success
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, status int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Pending {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(resp.Data)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}

// CreateGame creates a new game with specified player types and position
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, ok := validatedBody[core.CreateGameRequest](c)
	if !ok {
		return validationBypass(c)
	}

	cmd := processor.NewCreateGameCommand(*req)
	cmd.UserID, _ = c.Locals("userID").(string)

	return respond(c, h.proc.Execute(cmd), fiber.StatusCreated)
}

// ConfigurePlayers updates player configuration mid-game
func (h *HTTPHandler) ConfigurePlayers(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, ok := validatedBody[core.ConfigurePlayersRequest](c)
	if !ok {
		return validationBypass(c)
	}

	return respond(c, h.proc.Execute(processor.NewConfigurePlayersCommand(gameID, *req)), fiber.StatusOK)
}

// GetGame retrieves current game state. With wait=true it holds the request
// until the move count differs from moveCount, the state changes, or the
// wait times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	if c.Query("wait", "false") != "true" {
		return respond(c, h.proc.Execute(processor.NewGetGameCommand(gameID)), fiber.StatusOK)
	}

	moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
	if err != nil {
		moveCount = -1
	}

	g, err := h.svc.GetGame(gameID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "game not found",
			Code:  core.ErrGameNotFound,
		})
	}

	// Client is already behind
	if moveCount != g.MoveCount() {
		return respond(c, h.proc.Execute(processor.NewGetGameCommand(gameID)), fiber.StatusOK)
	}

	ctx := c.Context()
	notify, release := h.svc.RegisterWait(ctx, gameID, moveCount)
	defer release()

	select {
	case <-notify:
		return respond(c, h.proc.Execute(processor.NewGetGameCommand(gameID)), fiber.StatusOK)
	case <-ctx.Done():
		return nil
	}
}

// MakeMove submits a move, or "cccc" to let the computer play
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, ok := validatedBody[core.MoveRequest](c)
	if !ok {
		return validationBypass(c)
	}

	cmd := processor.NewMakeMoveCommand(gameID, *req)
	cmd.UserID, _ = c.Locals("userID").(string)

	return respond(c, h.proc.Execute(cmd), fiber.StatusOK)
}

// GetMoves lists legal moves, optionally only those from the square in ?from=
func (h *HTTPHandler) GetMoves(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	return respond(c, h.proc.Execute(processor.NewGetMovesCommand(gameID, c.Query("from"))), fiber.StatusOK)
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, ok := validatedBody[core.UndoRequest](c)
	if !ok {
		return validationBypass(c)
	}

	return respond(c, h.proc.Execute(processor.NewUndoMoveCommand(gameID, *req)), fiber.StatusOK)
}

// DeleteGame ends and cleans up a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	resp := h.proc.Execute(processor.NewDeleteGameCommand(gameID))
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	return respond(c, h.proc.Execute(processor.NewGetBoardCommand(gameID)), fiber.StatusOK)
}

// GetHistory returns the persisted moves of a game with engine statistics
func (h *HTTPHandler) GetHistory(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	moves, err := h.svc.GameMoves(gameID)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
			Error:   "history unavailable",
			Code:    core.ErrInternalError,
			Details: err.Error(),
		})
	}
	if moves == nil {
		moves = []storage.MoveRecord{}
	}

	return c.JSON(fiber.Map{
		"gameId": gameID,
		"moves":  moves,
	})
}
