package world

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrMapNotFound reports a map id with no loaded map.
	ErrMapNotFound = errors.New("world: map not found")
	// ErrCharacterNotFound reports a character id not in the registry.
	ErrCharacterNotFound = errors.New("world: character not found")
)

// World is the process-wide registry of maps and live characters. Maps are
// registered at boot from the database; characters come and go with their
// connections. Constructed once at startup and handed to handlers — never a
// package global.
type World struct {
	mu         sync.RWMutex
	maps       map[uint32]*Map
	characters map[uint32]*Character

	log *zap.Logger
}

func NewWorld(log *zap.Logger) *World {
	return &World{
		maps:       make(map[uint32]*Map),
		characters: make(map[uint32]*Character),
		log:        log,
	}
}

// AddMap registers a map at boot.
func (w *World) AddMap(m *Map) {
	w.mu.Lock()
	w.maps[m.ID()] = m
	w.mu.Unlock()
}

// Map finds a registered map.
func (w *World) Map(id uint32) (*Map, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	m, ok := w.maps[id]
	return m, ok
}

// Character finds a live character by id.
func (w *World) Character(id uint32) (*Character, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.characters[id]
	return c, ok
}

// CharacterCount returns how many characters are online.
func (w *World) CharacterCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.characters)
}

// Attach places a character on a map: it leaves any previous map, lands on
// the target, and takes the destination tile's elevation. Re-attaching to
// the same place is a no-op beyond refreshing the elevation. The floor is
// loaded on first use.
func (w *World) Attach(c *Character, mapID uint32) error {
	target, ok := w.Map(mapID)
	if !ok {
		return ErrMapNotFound
	}
	if err := target.EnsureLoaded(); err != nil {
		return err
	}

	prevMapID, x, y := c.Position()
	if prev, ok := w.Map(prevMapID); ok && prevMapID != mapID {
		prev.removeCharacter(c.ID())
	}

	target.insertCharacter(c)
	c.SetPosition(mapID, x, y)
	if tile, ok := target.Tile(x, y); ok {
		c.SetElevation(tile.Elevation)
	}

	w.mu.Lock()
	w.characters[c.ID()] = c
	w.mu.Unlock()
	return nil
}

// Detach removes a character from its map and the registry. Called from the
// character's own connection task on disconnect.
func (w *World) Detach(id uint32) {
	w.mu.Lock()
	c, ok := w.characters[id]
	delete(w.characters, id)
	w.mu.Unlock()
	if !ok {
		return
	}
	mapID, _, _ := c.Position()
	if m, found := w.Map(mapID); found {
		m.removeCharacter(id)
	}
}

// Tile is a bounds-checked tile lookup across the registry.
func (w *World) Tile(mapID uint32, x, y uint16) (Tile, bool) {
	m, ok := w.Map(mapID)
	if !ok {
		return Tile{}, false
	}
	return m.Tile(x, y)
}

// Teleport moves a character to a new map position: observers on the old
// map see it leave and the new surroundings are linked. Nothing is sent to
// the teleporting character's own client here.
func (w *World) Teleport(c *Character, mapID uint32, x, y uint16) error {
	target, ok := w.Map(mapID)
	if !ok {
		return ErrMapNotFound
	}
	if err := target.EnsureLoaded(); err != nil {
		return err
	}
	tile, ok := target.Tile(x, y)
	if !ok {
		return ErrMapNotFound
	}

	c.Screen().RemoveFromObservers()
	prevMapID, _, _ := c.Position()
	if prev, found := w.Map(prevMapID); found {
		prev.removeCharacter(c.ID())
	}

	c.SetPosition(mapID, x, y)
	c.SetElevation(tile.Elevation)
	target.insertCharacter(c)
	c.Screen().LoadSurroundings(target)

	w.log.Debug("character teleported",
		zap.Uint32("character", c.ID()),
		zap.Uint32("map", mapID),
		zap.Uint16("x", x),
		zap.Uint16("y", y),
	)
	return nil
}
