package domain

// RoomID is the short human-typeable code players share to meet in a room.
type RoomID string

const (
	DefaultRows = 6
	DefaultCols = 6
)

// BoardConfig fixes the grid size of one room at creation time.
type BoardConfig struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func DefaultBoardConfig() BoardConfig {
	return BoardConfig{Rows: DefaultRows, Cols: DefaultCols}
}

func (c BoardConfig) Valid() bool {
	return c.Rows > 0 && c.Cols > 0
}
