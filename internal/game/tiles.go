package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/DavinciDreams/vscrabbleproject/internal/models"
)

// letterCounts is the standard per-letter tile distribution. The full bag
// holds 98 tiles including the two blanks.
var letterCounts = map[string]int{
	"A": 9, "B": 2, "C": 2, "D": 4, "E": 12, "F": 2, "G": 3, "H": 2, "I": 9,
	"J": 1, "K": 1, "L": 4, "M": 2, "N": 6, "O": 8, "P": 2, "Q": 1, "R": 6,
	"S": 4, "T": 6, "U": 4, "V": 2, "W": 2, "X": 1, "Y": 2, "Z": 1,
	models.Blank: 2,
}

// letterValues is the fixed point value per letter. Blanks score zero.
var letterValues = map[string]int{
	"A": 1, "B": 3, "C": 3, "D": 2, "E": 1, "F": 4, "G": 2, "H": 4, "I": 1,
	"J": 8, "K": 5, "L": 1, "M": 3, "N": 1, "O": 1, "P": 3, "Q": 10, "R": 1,
	"S": 1, "T": 1, "U": 1, "V": 4, "W": 4, "X": 8, "Y": 4, "Z": 10,
	models.Blank: 0,
}

// TotalTiles is the bag size produced by Fill.
const TotalTiles = 98

// RackSize is how many tiles each player holds under normal play.
const RackSize = 7

// LetterValue returns the point value for a letter, zero for blanks or
// anything unknown.
func LetterValue(letter string) int {
	return letterValues[letter]
}

// TileBag holds the shuffled pool of undrawn tiles for one room.
type TileBag struct {
	tiles []models.Tile
}

// NewTileBag builds a full 98-tile bag and shuffles it.
func NewTileBag() *TileBag {
	b := &TileBag{}
	b.Fill()
	return b
}

// Fill populates the bag with the fixed per-letter counts and applies a
// uniform shuffle. Any tiles previously in the bag are discarded.
func (b *TileBag) Fill() {
	tiles := make([]models.Tile, 0, TotalTiles)
	for letter, count := range letterCounts {
		for i := 0; i < count; i++ {
			id, _ := uuid.NewRandom()
			tiles = append(tiles, models.Tile{ID: id, Letter: letter, Value: letterValues[letter]})
		}
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	b.tiles = tiles
}

// Draw removes and returns up to n tiles from the front of the bag. It
// returns fewer than n (possibly none) once the bag runs dry; it never
// fails.
func (b *TileBag) Draw(n int) []models.Tile {
	if n <= 0 {
		return nil
	}
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	drawn := make([]models.Tile, n)
	copy(drawn, b.tiles[:n])
	b.tiles = b.tiles[n:]
	return drawn
}

// Remaining reports how many tiles are still undrawn.
func (b *TileBag) Remaining() int {
	return len(b.tiles)
}
