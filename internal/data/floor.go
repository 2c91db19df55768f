// Package data loads the server's on-disk world content: the compact floor
// files holding each map's tile grid. Conversion from the client's DMap
// format happens offline; the server only reads the compact form.
package data

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/coemu/server/internal/world"
)

// Compact floor file layout: width:i32 LE, height:i32 LE, then width*height
// tiles row-major, each access:u8 followed by elevation:u16 LE.

// LoadFloor reads one compact floor file.
func LoadFloor(path string) (*world.Floor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFloor(f)
}

// FloorLoaderAt returns a loader resolving floor paths under root. Maps
// store relative paths in the database.
func FloorLoaderAt(root string) world.FloorLoader {
	return func(path string) (*world.Floor, error) {
		return LoadFloor(filepath.Join(root, path))
	}
}

func readFloor(r io.Reader) (*world.Floor, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("read floor header: %w", err)
	}
	width := int32(binary.LittleEndian.Uint32(head[0:4]))
	height := int32(binary.LittleEndian.Uint32(head[4:8]))
	if width <= 0 || height <= 0 || width > 4096 || height > 4096 {
		return nil, fmt.Errorf("implausible floor size %dx%d", width, height)
	}

	floor := world.NewFloor(width, height)
	buf := make([]byte, int(width)*3)
	for y := int32(0); y < height; y++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read floor row %d: %w", y, err)
		}
		for x := int32(0); x < width; x++ {
			off := int(x) * 3
			floor.Set(uint16(x), uint16(y), world.Tile{
				Access:    world.TileType(buf[off]),
				Elevation: binary.LittleEndian.Uint16(buf[off+1 : off+3]),
			})
		}
	}
	return floor, nil
}

// WriteFloor writes a floor back in the compact format. Used by the offline
// conversion tooling and tests.
func WriteFloor(w io.Writer, floor *world.Floor) error {
	var head [8]byte
	binary.LittleEndian.PutUint32(head[0:4], uint32(floor.Width))
	binary.LittleEndian.PutUint32(head[4:8], uint32(floor.Height))
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	buf := make([]byte, int(floor.Width)*3)
	for y := int32(0); y < floor.Height; y++ {
		for x := int32(0); x < floor.Width; x++ {
			t, _ := floor.Tile(uint16(x), uint16(y))
			off := int(x) * 3
			buf[off] = byte(t.Access)
			binary.LittleEndian.PutUint16(buf[off+1:off+3], t.Elevation)
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
