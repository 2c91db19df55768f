package world

import (
	"sync"

	"github.com/coemu/server/internal/msg"
)

// Screen is a character's interest set: the other characters it currently
// observes, and which observe it back. The mutual-visibility invariant is
// kept by always inserting and removing in pairs. Each screen's set has its
// own lock; pair updates take the two locks one at a time, never nested.
type Screen struct {
	owner *Character

	mu      sync.Mutex
	members map[uint32]*Character
}

func newScreen(owner *Character) *Screen {
	return &Screen{
		owner:   owner,
		members: make(map[uint32]*Character),
	}
}

// Contains reports whether the character id is in the owner's screen.
func (s *Screen) Contains(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[id]
	return ok
}

// Len returns the observer count.
func (s *Screen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

func (s *Screen) add(c *Character) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[c.ID()]; ok {
		return false
	}
	s.members[c.ID()] = c
	return true
}

func (s *Screen) drop(id uint32) (*Character, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.members[id]
	if ok {
		delete(s.members, id)
	}
	return c, ok
}

// snapshot copies the member list so callers can iterate without holding
// the lock across sends.
func (s *Screen) snapshot() []*Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Character, 0, len(s.members))
	for _, c := range s.members {
		out = append(out, c)
	}
	return out
}

// Insert adds the observer to the owner's screen and the owner to the
// observer's, returning true when the pair was newly linked.
func (s *Screen) Insert(observer *Character) bool {
	if !s.add(observer) {
		return false
	}
	observer.Screen().add(s.owner)
	return true
}

// Remove unlinks the pair without telling either client; used when a
// character walks out of range and the final movement packet lets the
// client despawn it on its own.
func (s *Screen) Remove(id uint32) bool {
	observer, ok := s.drop(id)
	if !ok {
		return false
	}
	observer.Screen().drop(s.owner.ID())
	return true
}

// Delete drops the character from the owner's screen and tells the owner's
// client to remove the entity, via the leave-map action.
func (s *Screen) Delete(id uint32) bool {
	other, ok := s.drop(id)
	if !ok {
		return false
	}
	_, x, y := other.Position()
	m := msg.NewAction(id, PackXY(x, y), uint16(other.Direction()), msg.ActionLeaveMap)
	s.owner.Owner().TrySend(m.PacketID(), m.Marshal())
	return true
}

// RemoveFromObservers force-removes the owner from every observer's screen
// (each observing client gets the leave-map action) and clears the owner's
// own set. Called on teleport and on disconnect.
func (s *Screen) RemoveFromObservers() {
	for _, observer := range s.snapshot() {
		observer.Screen().Delete(s.owner.ID())
		s.drop(observer.ID())
	}
}

// LoadSurroundings scans the owner's map after a teleport and links every
// character within screen distance, exchanging spawns with each.
func (s *Screen) LoadSurroundings(m *Map) {
	me := s.owner
	_, myX, myY := me.Position()
	for _, observer := range m.Characters() {
		if observer.ID() == me.ID() {
			continue
		}
		_, ox, oy := observer.Position()
		if !InScreen(myX, myY, ox, oy) {
			continue
		}
		if s.Insert(observer) {
			me.ExchangeSpawnPackets(observer)
		}
	}
}

// SendMovement distributes one movement step. Characters inside the new
// screen distance are linked (with a spawn exchange) or forwarded the
// movement packet; characters that fell out of range are unlinked and get
// the packet one last time so their client can despawn the owner.
func (s *Screen) SendMovement(m *Map, pkt msg.Outgoing) {
	me := s.owner
	_, myX, myY := me.Position()
	id, body := pkt.PacketID(), pkt.Marshal()
	for _, observer := range m.Characters() {
		if observer.ID() == me.ID() {
			continue
		}
		_, ox, oy := observer.Position()
		if InScreen(myX, myY, ox, oy) {
			if s.Insert(observer) {
				me.ExchangeSpawnPackets(observer)
			} else {
				observer.Owner().TrySend(id, body)
			}
		} else if s.Remove(observer.ID()) {
			observer.Owner().TrySend(id, body)
		}
	}
}

// Broadcast queues a packet to every observer, no visibility filtering.
func (s *Screen) Broadcast(pkt msg.Outgoing) {
	id, body := pkt.PacketID(), pkt.Marshal()
	for _, observer := range s.snapshot() {
		observer.Owner().TrySend(id, body)
	}
}
