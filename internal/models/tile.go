package models

import "github.com/google/uuid"

// Blank is the letter used for the two zero-point wildcard tiles.
const Blank = "_"

// Tile is a single letter tile. A tile lives in exactly one of the bag, a
// player's rack, or a board cell at any moment.
type Tile struct {
	ID     uuid.UUID `json:"id"`
	Letter string    `json:"letter"`
	Value  int       `json:"value"`
}

// Position addresses a board cell, 0..14 on both axes.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PlacedTile is a tile sitting on the board. Locked becomes true when the
// move containing it is committed; locked tiles never move again.
type PlacedTile struct {
	Tile
	Position Position `json:"position"`
	Locked   bool     `json:"isLocked"`
}
