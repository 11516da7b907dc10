// Package game holds the pure dots-and-boxes board logic. No locking and
// no I/O here; the owning room serializes access.
package game

// EdgeKind selects one of the two edge grids.
type EdgeKind string

const (
	EdgeH EdgeKind = "h"
	EdgeV EdgeKind = "v"
)

// Cell addresses one box on the board.
type Cell struct {
	R int `json:"r"`
	C int `json:"c"`
}

// Board is the edge and box state of one game.
//
// H[r][c] with r in [0,rows], c in [0,cols) and V[r][c] with r in [0,rows),
// c in [0,cols] hold 0 for an unset edge or the pIndex of the player who
// drew it. Boxes[r][c] holds the pIndex of the owner once all four bounding
// edges are set; a box owner never changes afterwards.
type Board struct {
	Rows  int
	Cols  int
	H     [][]int
	V     [][]int
	Boxes [][]int
}

func NewBoard(rows, cols int) *Board {
	return &Board{
		Rows:  rows,
		Cols:  cols,
		H:     newGrid(rows+1, cols),
		V:     newGrid(rows, cols+1),
		Boxes: newGrid(rows, cols),
	}
}

func newGrid(rows, cols int) [][]int {
	g := make([][]int, rows)
	for r := range g {
		g[r] = make([]int, cols)
	}
	return g
}

// ApplyEdge marks an edge for player. It reports false without mutating
// anything when the coordinates are out of range for the edge kind or the
// edge is already owned; the caller must not advance the turn in that case.
func (b *Board) ApplyEdge(kind EdgeKind, r, c, player int) bool {
	switch kind {
	case EdgeH:
		if r < 0 || r > b.Rows || c < 0 || c >= b.Cols {
			return false
		}
		if b.H[r][c] != 0 {
			return false
		}
		b.H[r][c] = player
	case EdgeV:
		if r < 0 || r >= b.Rows || c < 0 || c > b.Cols {
			return false
		}
		if b.V[r][c] != 0 {
			return false
		}
		b.V[r][c] = player
	default:
		return false
	}
	return true
}

// SettleBoxes assigns every newly enclosed box to player and returns the
// settled cells. Call it once after each accepted edge, before the turn is
// handed over; an interior edge can close two boxes at once.
func (b *Board) SettleBoxes(player int) []Cell {
	var settled []Cell
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			if b.Boxes[r][c] != 0 {
				continue
			}
			if b.H[r][c] != 0 && b.H[r+1][c] != 0 && b.V[r][c] != 0 && b.V[r][c+1] != 0 {
				b.Boxes[r][c] = player
				settled = append(settled, Cell{R: r, C: c})
			}
		}
	}
	return settled
}

// Full reports whether every box is owned. Score bookkeeping is
// authoritative, so the sum of player scores stands in for a grid scan.
func (b *Board) Full(totalScore int) bool {
	return totalScore >= b.Rows*b.Cols
}
