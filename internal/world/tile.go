package world

// TileType is the access class of a map cell. The ordering is load-bearing:
// anything strictly greater than Npc is walkable.
type TileType uint8

const (
	TileTerrain    TileType = 0
	TileNpc        TileType = 1
	TileMonster    TileType = 2
	TilePortal     TileType = 3
	TileItem       TileType = 4
	TileMarketSpot TileType = 5
	TileAvailable  TileType = 6
)

// Tile is one cell of a floor's coordinate grid.
type Tile struct {
	Access    TileType
	Elevation uint16
}

// Walkable reports whether a character may stand on the tile.
func (t Tile) Walkable() bool {
	return t.Access > TileNpc
}

// Floor is the rectangular tile grid of one map, row-major.
type Floor struct {
	Width  int32
	Height int32
	Tiles  []Tile
}

// NewFloor allocates an empty grid.
func NewFloor(width, height int32) *Floor {
	return &Floor{
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, int(width)*int(height)),
	}
}

// Tile returns the cell at (x, y), or false when out of bounds.
func (f *Floor) Tile(x, y uint16) (Tile, bool) {
	if f == nil || int32(x) >= f.Width || int32(y) >= f.Height {
		return Tile{}, false
	}
	return f.Tiles[int(y)*int(f.Width)+int(x)], true
}

// Set writes the cell at (x, y); out-of-bounds writes are dropped.
func (f *Floor) Set(x, y uint16, t Tile) {
	if int32(x) >= f.Width || int32(y) >= f.Height {
		return
	}
	f.Tiles[int(y)*int(f.Width)+int(x)] = t
}
