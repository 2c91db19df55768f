package world

import (
	"fmt"
	"sync"
)

// MapData is a map's database row: identity, revive point, ambient flags.
type MapData struct {
	ID           uint32
	Path         string
	ReviveX      uint16
	ReviveY      uint16
	Flags        uint32
	Weather      uint32
	RebornMap    uint32
	Color        uint32
}

// PortalData links a source tile region to a destination map position.
type PortalData struct {
	ID        uint32
	FromMapID uint32
	FromX     uint16
	FromY     uint16
	ToMapID   uint32
	ToX       uint16
	ToY       uint16
}

// NpcData is a static NPC placed on a map.
type NpcData struct {
	ID    uint32
	Name  string
	Kind  uint16
	Look  uint16
	MapID uint32
	X     uint16
	Y     uint16
	Base  uint16
	Sort  uint16
}

// FloorLoader resolves a map's tile grid from its data path. The on-disk
// format lives behind this function so the world never touches files.
type FloorLoader func(path string) (*Floor, error)

// Map is one playable floor: its tile grid, the characters standing on it,
// its portals, and its static NPCs. Floors load lazily on first use.
type Map struct {
	data    MapData
	portals []PortalData
	npcs    []NpcData

	mu         sync.RWMutex
	floor      *Floor
	characters map[uint32]*Character

	load FloorLoader
}

func NewMap(data MapData, portals []PortalData, npcs []NpcData, load FloorLoader) *Map {
	return &Map{
		data:       data,
		portals:    portals,
		npcs:       npcs,
		characters: make(map[uint32]*Character),
		load:       load,
	}
}

func (m *Map) ID() uint32      { return m.data.ID }
func (m *Map) Flags() uint32   { return m.data.Flags }
func (m *Map) Weather() uint32 { return m.data.Weather }
func (m *Map) Data() MapData   { return m.data }
func (m *Map) Npcs() []NpcData { return m.npcs }

// RevivePoint is where characters return to on this map.
func (m *Map) RevivePoint() (uint16, uint16) {
	return m.data.ReviveX, m.data.ReviveY
}

// EnsureLoaded loads the floor on first use.
func (m *Map) EnsureLoaded() error {
	m.mu.RLock()
	loaded := m.floor != nil
	m.mu.RUnlock()
	if loaded {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.floor != nil {
		return nil
	}
	floor, err := m.load(m.data.Path)
	if err != nil {
		return fmt.Errorf("load floor %q: %w", m.data.Path, err)
	}
	m.floor = floor
	return nil
}

// Unload drops the floor grid; legal only with no occupants.
func (m *Map) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.characters) == 0 {
		m.floor = nil
	}
}

// Tile returns the tile at (x, y) with bounds checking. The floor must be
// loaded; an unloaded floor reads as out of bounds.
func (m *Map) Tile(x, y uint16) (Tile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.floor == nil {
		return Tile{}, false
	}
	return m.floor.Tile(x, y)
}

// PortalAt finds the portal covering (x, y). Portal tiles span a 3x3 region
// around the recorded origin, matching the client's map data.
func (m *Map) PortalAt(x, y uint16) (PortalData, bool) {
	for _, p := range m.portals {
		dx, dy := Delta(p.FromX, p.FromY, x, y)
		if dx <= 1 && dy <= 1 {
			return p, true
		}
	}
	return PortalData{}, false
}

// insertCharacter registers a character on the map.
func (m *Map) insertCharacter(c *Character) {
	m.mu.Lock()
	m.characters[c.ID()] = c
	m.mu.Unlock()
}

// removeCharacter drops a character from the map.
func (m *Map) removeCharacter(id uint32) {
	m.mu.Lock()
	delete(m.characters, id)
	m.mu.Unlock()
}

// Characters snapshots everyone on the map.
func (m *Map) Characters() []*Character {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Character, 0, len(m.characters))
	for _, c := range m.characters {
		out = append(out, c)
	}
	return out
}

// OccupantCount returns how many characters stand on the map.
func (m *Map) OccupantCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.characters)
}

// SampleElevation walks the line from start towards start+delta and checks
// every sampled tile's elevation against the limit. Used to catch wall
// jumps before committing a long movement.
func (m *Map) SampleElevation(startX, startY uint16, deltaX, deltaY int32, distance uint32, maxElevation uint16) bool {
	if distance == 0 {
		return true
	}
	for i := uint32(0); i < distance; i++ {
		x := uint16(int32(startX) + int32(i)*deltaX/int32(distance))
		y := uint16(int32(startY) + int32(i)*deltaY/int32(distance))
		tile, ok := m.Tile(x, y)
		if !ok {
			return false
		}
		if !WithinElevation(tile.Elevation, maxElevation) {
			return false
		}
	}
	return true
}
