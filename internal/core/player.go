package core

import (
	"github.com/google/uuid"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota + 1
	PlayerComputer
)

// Player is the complete game entity with all state
type Player struct {
	ID         string     `json:"id"`
	Color      Color      `json:"color"`
	Type       PlayerType `json:"type"`
	Level      int        `json:"level,omitempty"`      // Only for computer, selects search depth
	SearchTime int        `json:"searchTime,omitempty"` // Only for computer, deadline in ms
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Type       PlayerType `json:"type" validate:"required,oneof=1 2"`
	Level      int        `json:"level,omitempty" validate:"omitempty,min=1,max=10"`
	SearchTime int        `json:"searchTime,omitempty" validate:"omitempty,min=100,max=10000"` // Processor sets the min value
}

// NewPlayer creates a Player from PlayerConfig
func NewPlayer(config PlayerConfig, color Color) *Player {
	player := &Player{
		ID:    uuid.New().String(),
		Color: color,
		Type:  config.Type,
	}

	if config.Type == PlayerComputer {
		player.Level = config.Level
		player.SearchTime = config.SearchTime
	}

	return player
}
