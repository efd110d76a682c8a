package game

import (
	"github.com/google/uuid"

	"github.com/DavinciDreams/vscrabbleproject/internal/models"
)

// BoardSize is the board's width and height.
const BoardSize = 15

// CellType identifies a board cell's score multiplier, derived purely from
// its coordinates.
type CellType string

const (
	CellNormal       CellType = "normal"
	CellDoubleLetter CellType = "double_letter"
	CellTripleLetter CellType = "triple_letter"
	CellDoubleWord   CellType = "double_word"
	CellTripleWord   CellType = "triple_word"
	CellStart        CellType = "start"
)

var specialCells = buildSpecialCells()

func buildSpecialCells() map[models.Position]CellType {
	sets := map[CellType][]models.Position{
		CellTripleWord: {
			{X: 0, Y: 0}, {X: 7, Y: 0}, {X: 14, Y: 0},
			{X: 0, Y: 7}, {X: 14, Y: 7},
			{X: 0, Y: 14}, {X: 7, Y: 14}, {X: 14, Y: 14},
		},
		CellDoubleWord: {
			{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4},
			{X: 1, Y: 13}, {X: 2, Y: 12}, {X: 3, Y: 11}, {X: 4, Y: 10},
			{X: 10, Y: 4}, {X: 11, Y: 3}, {X: 12, Y: 2}, {X: 13, Y: 1},
			{X: 10, Y: 10}, {X: 11, Y: 11}, {X: 12, Y: 12}, {X: 13, Y: 13},
		},
		CellTripleLetter: {
			{X: 5, Y: 1}, {X: 9, Y: 1},
			{X: 1, Y: 5}, {X: 5, Y: 5}, {X: 9, Y: 5}, {X: 13, Y: 5},
			{X: 1, Y: 9}, {X: 5, Y: 9}, {X: 9, Y: 9}, {X: 13, Y: 9},
			{X: 5, Y: 13}, {X: 9, Y: 13},
		},
		CellDoubleLetter: {
			{X: 3, Y: 0}, {X: 11, Y: 0},
			{X: 6, Y: 2}, {X: 8, Y: 2},
			{X: 0, Y: 3}, {X: 7, Y: 3}, {X: 14, Y: 3},
			{X: 2, Y: 6}, {X: 6, Y: 6}, {X: 8, Y: 6}, {X: 12, Y: 6},
			{X: 3, Y: 7}, {X: 11, Y: 7},
			{X: 2, Y: 8}, {X: 6, Y: 8}, {X: 8, Y: 8}, {X: 12, Y: 8},
			{X: 0, Y: 11}, {X: 7, Y: 11}, {X: 14, Y: 11},
			{X: 6, Y: 12}, {X: 8, Y: 12},
			{X: 3, Y: 14}, {X: 11, Y: 14},
		},
		CellStart: {{X: 7, Y: 7}},
	}
	m := make(map[models.Position]CellType)
	for ct, positions := range sets {
		for _, pos := range positions {
			m[pos] = ct
		}
	}
	return m
}

// CellTypeAt returns the multiplier type for a coordinate pair.
func CellTypeAt(x, y int) CellType {
	if ct, ok := specialCells[models.Position{X: x, Y: y}]; ok {
		return ct
	}
	return CellNormal
}

// letterMultiplier is the per-tile letter multiplier for a cell type.
func letterMultiplier(ct CellType) int {
	switch ct {
	case CellDoubleLetter:
		return 2
	case CellTripleLetter:
		return 3
	default:
		return 1
	}
}

// wordMultiplier is the whole-word multiplier for a cell type. The start
// cell doubles the first word per standard rules.
func wordMultiplier(ct CellType) int {
	switch ct {
	case CellDoubleWord, CellStart:
		return 2
	case CellTripleWord:
		return 3
	default:
		return 1
	}
}

// Board is the 15x15 grid of placed tiles. A nil cell is empty.
type Board struct {
	cells [BoardSize][BoardSize]*models.PlacedTile
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// InBounds reports whether (x, y) addresses a real cell.
func InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// At returns the tile at (x, y), or nil for an empty or out-of-range cell.
func (b *Board) At(x, y int) *models.PlacedTile {
	if !InBounds(x, y) {
		return nil
	}
	return b.cells[y][x]
}

// Place stages a tile on an empty in-bounds cell and returns it. The tile
// starts unlocked; committing the move locks it.
func (b *Board) Place(t models.Tile, x, y int) (*models.PlacedTile, bool) {
	if !InBounds(x, y) || b.cells[y][x] != nil {
		return nil, false
	}
	pt := &models.PlacedTile{Tile: t, Position: models.Position{X: x, Y: y}, Locked: false}
	b.cells[y][x] = pt
	return pt, true
}

// Remove clears the cell at (x, y) if it holds an unlocked tile, returning
// the removed tile. Locked tiles are immutable.
func (b *Board) Remove(x, y int) (models.Tile, bool) {
	pt := b.At(x, y)
	if pt == nil || pt.Locked {
		return models.Tile{}, false
	}
	b.cells[y][x] = nil
	return pt.Tile, true
}

// LockedCount reports how many committed tiles sit on the board.
func (b *Board) LockedCount() int {
	count := 0
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if pt := b.cells[y][x]; pt != nil && pt.Locked {
				count++
			}
		}
	}
	return count
}

// FindTile locates an unlocked tile on the board by id.
func (b *Board) FindTile(tileID uuid.UUID) *models.PlacedTile {
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if pt := b.cells[y][x]; pt != nil && pt.ID == tileID && !pt.Locked {
				return pt
			}
		}
	}
	return nil
}

// Snapshot returns a deep copy of the grid for broadcasting.
func (b *Board) Snapshot() [][]*models.PlacedTile {
	grid := make([][]*models.PlacedTile, BoardSize)
	for y := 0; y < BoardSize; y++ {
		grid[y] = make([]*models.PlacedTile, BoardSize)
		for x := 0; x < BoardSize; x++ {
			if pt := b.cells[y][x]; pt != nil {
				cp := *pt
				grid[y][x] = &cp
			}
		}
	}
	return grid
}

// ScoreMove computes the score for a set of staged tiles: letter values with
// per-tile letter multipliers summed, then the highest word multiplier among
// the occupied cells applied to the sum.
func ScoreMove(staged []*models.PlacedTile) int {
	if len(staged) == 0 {
		return 0
	}
	sum := 0
	highestWord := 1
	for _, pt := range staged {
		ct := CellTypeAt(pt.Position.X, pt.Position.Y)
		sum += pt.Value * letterMultiplier(ct)
		if wm := wordMultiplier(ct); wm > highestWord {
			highestWord = wm
		}
	}
	return sum * highestWord
}
