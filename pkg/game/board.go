package game

import (
	"fmt"

	"github.com/cbodonnell/tycoon/pkg/game/constants"
	"github.com/cbodonnell/tycoon/pkg/game/types"
)

// BoardLayout selects how new rooms populate their board.
type BoardLayout string

const (
	BoardLayoutClassic BoardLayout = "classic"
	BoardLayoutSimple  BoardLayout = "simple"
)

func ParseBoardLayout(s string) (BoardLayout, error) {
	switch BoardLayout(s) {
	case BoardLayoutClassic, BoardLayoutSimple:
		return BoardLayout(s), nil
	default:
		return "", fmt.Errorf("unknown board layout: %s", s)
	}
}

// NewBoard returns a fresh, unowned board for the layout.
func NewBoard(layout BoardLayout) []types.Tile {
	if layout == BoardLayoutSimple {
		return SimpleBoard(constants.SimpleBoardSize)
	}
	return ClassicBoard()
}

var classicTiles = []struct {
	name string
	cost int
}{
	{"GO", 0},
	{"Mediterranean Avenue", 60},
	{"Community Chest", 0},
	{"Baltic Avenue", 60},
	{"Income Tax", 200},
	{"Reading Railroad", 200},
	{"Oriental Avenue", 100},
	{"Chance", 0},
	{"Vermont Avenue", 100},
	{"Connecticut Avenue", 120},
	{"Just Visiting / In Jail", 0},
	{"St. Charles Place", 140},
	{"Electric Company", 150},
	{"States Avenue", 140},
	{"Virginia Avenue", 160},
	{"Pennsylvania Railroad", 200},
	{"St. James Place", 180},
	{"Community Chest", 0},
	{"Tennessee Avenue", 180},
	{"New York Avenue", 200},
	{"Free Parking", 0},
	{"Kentucky Avenue", 220},
	{"Chance", 0},
	{"Indiana Avenue", 220},
	{"Illinois Avenue", 240},
	{"B&O Railroad", 200},
	{"Atlantic Avenue", 260},
	{"Ventnor Avenue", 260},
	{"Water Works", 150},
	{"Marvin Gardens", 280},
	{"Go To Jail", 0},
	{"Pacific Avenue", 300},
	{"North Carolina Avenue", 300},
	{"Community Chest", 0},
	{"Pennsylvania Avenue", 320},
	{"Short Line", 200},
	{"Chance", 0},
	{"Park Place", 350},
	{"Luxury Tax", 100},
	{"Boardwalk", 400},
}

// ClassicBoard returns the fixed 40-tile layout.
func ClassicBoard() []types.Tile {
	board := make([]types.Tile, len(classicTiles))
	for i, t := range classicTiles {
		board[i] = types.Tile{ID: i, Name: t.name, Cost: t.cost}
	}
	return board
}

// SimpleBoard generates size tiles with costs cycling through 12 price steps.
func SimpleBoard(size int) []types.Tile {
	board := make([]types.Tile, size)
	for i := range board {
		board[i] = types.Tile{
			ID:   i,
			Name: fmt.Sprintf("Tile %d", i),
			Cost: constants.SimpleBoardBaseCost + (i%12)*constants.SimpleBoardCostStep,
		}
	}
	return board
}
