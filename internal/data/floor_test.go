package data

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coemu/server/internal/world"
)

func TestFloorRoundTrip(t *testing.T) {
	floor := world.NewFloor(8, 4)
	floor.Set(0, 0, world.Tile{Access: world.TileAvailable, Elevation: 5})
	floor.Set(7, 3, world.Tile{Access: world.TilePortal, Elevation: 900})
	floor.Set(3, 2, world.Tile{Access: world.TileNpc})

	var buf bytes.Buffer
	require.NoError(t, WriteFloor(&buf, floor))

	got, err := readFloor(&buf)
	require.NoError(t, err)
	assert.Equal(t, floor.Width, got.Width)
	assert.Equal(t, floor.Height, got.Height)
	assert.Equal(t, floor.Tiles, got.Tiles)
}

func TestFloorLoaderAt(t *testing.T) {
	dir := t.TempDir()
	floor := world.NewFloor(2, 2)
	for i := range floor.Tiles {
		floor.Tiles[i] = world.Tile{Access: world.TileAvailable, Elevation: 7}
	}
	var buf bytes.Buffer
	require.NoError(t, WriteFloor(&buf, floor))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "maps"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maps", "1010.floor"), buf.Bytes(), 0o644))

	load := FloorLoaderAt(dir)
	got, err := load(filepath.Join("maps", "1010.floor"))
	require.NoError(t, err)
	tile, ok := got.Tile(1, 1)
	require.True(t, ok)
	assert.Equal(t, uint16(7), tile.Elevation)
}

func TestFloorRejectsGarbage(t *testing.T) {
	_, err := readFloor(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 1, 0, 0, 0}))
	assert.Error(t, err)

	_, err = readFloor(bytes.NewReader([]byte{2, 0, 0, 0, 2, 0, 0, 0, 1}))
	assert.Error(t, err) // truncated tile data
}
