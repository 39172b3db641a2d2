package http

import (
	"context"
	"log"

	"minichess/internal/core"
	"minichess/internal/processor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// requireUpgrade rejects plain HTTP requests to the stream endpoint
func requireUpgrade(c *fiber.Ctx) error {
	if !isValidUUID(c.Params("gameId")) {
		return invalidGameID(c)
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// GameStream pushes the game as JSON on connect and after every change until
// the client disconnects or the game is deleted. Incoming messages are
// ignored.
func (h *HTTPHandler) GameStream(conn *websocket.Conn) {
	gameID := conn.Params("gameId")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reads fail once the peer goes away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sentMoves, sentState := -1, ""
	for {
		resp := h.proc.Execute(processor.NewGetGameCommand(gameID))
		if !resp.Success {
			conn.WriteJSON(resp.Error)
			return
		}

		gr := resp.Data.(core.GameResponse)
		if len(gr.Moves) != sentMoves || gr.State != sentState {
			if err := conn.WriteJSON(gr); err != nil {
				return
			}
			sentMoves, sentState = len(gr.Moves), gr.State
		}

		if h.svc.ShuttingDown() {
			return
		}

		notify, release := h.svc.RegisterWait(ctx, gameID, sentMoves)

		// Re-check after registering so a change in between is not missed
		if g, err := h.svc.GetGame(gameID); err != nil || g.MoveCount() != sentMoves || g.State().String() != sentState {
			release()
			continue
		}

		select {
		case <-notify:
			release()
		case <-ctx.Done():
			release()
			log.Printf("Stream for game %s closed", gameID)
			return
		}
	}
}
