package core

import "github.com/lbekker/Boxes/internal/domain"

// PlayerState is the read-only view of a seated player.
type PlayerState struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
	PIndex   int           `json:"pIndex"`
	Score    int           `json:"score"`
}

// SpectatorState is the read-only view of a watcher.
type SpectatorState struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}

// RoomState is the full room snapshot shipped with every broadcast.
// There are no delta updates; clients always receive the whole picture.
type RoomState struct {
	ID         domain.RoomID      `json:"id"`
	Host       string             `json:"host"`
	Players    []PlayerState      `json:"players"`
	Spectators []SpectatorState   `json:"spectators"`
	HLines     [][]int            `json:"hLines"`
	VLines     [][]int            `json:"vLines"`
	Boxes      [][]int            `json:"boxes"`
	Turn       int                `json:"turn"`
	GameOver   bool               `json:"gameOver"`
	Config     domain.BoardConfig `json:"config"`
}

func copyGrid(src [][]int) [][]int {
	out := make([][]int, len(src))
	for r, row := range src {
		out[r] = make([]int, len(row))
		copy(out[r], row)
	}
	return out
}
