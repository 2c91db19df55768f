// Package world holds the in-memory game world: maps and their tile grids,
// the characters standing on them, and each character's screen (the set of
// other characters it currently observes).
package world

// Entity identifiers are partitioned into ranges; the range alone tells what
// kind of entity an id refers to.
const (
	NpcIDMin     uint32 = 1
	DynNpcIDMin  uint32 = 100_001
	DynNpcIDMax  uint32 = 199_999
	MonsterIDMin uint32 = 400_001
	MonsterIDMax uint32 = 499_999
	PetIDMin     uint32 = 500_001
	PetIDMax     uint32 = 599_999
	NpcIDMax     uint32 = 700_000
	CallPetIDMin uint32 = 700_001
	CallPetIDMax uint32 = 799_999
	CharIDMin    uint32 = 1_000_000
	CharIDMax    uint32 = 10_000_000
)

func IsNpc(id uint32) bool        { return id >= NpcIDMin && id <= NpcIDMax }
func IsTerrainNpc(id uint32) bool { return id >= DynNpcIDMin && id <= DynNpcIDMax }
func IsMonster(id uint32) bool    { return id >= MonsterIDMin && id <= MonsterIDMax }
func IsPet(id uint32) bool        { return id >= PetIDMin && id <= PetIDMax }
func IsCallPet(id uint32) bool    { return id >= CallPetIDMin && id <= CallPetIDMax }
func IsCharacter(id uint32) bool  { return id >= CharIDMin && id <= CharIDMax }

// Walk offsets per direction 0..7, counter-clockwise from south.
var (
	WalkXCoords = [8]int8{0, -1, -1, -1, 0, 1, 1, 1}
	WalkYCoords = [8]int8{1, 1, 0, -1, -1, -1, 0, 1}
)

// Creation-time hair styles the client accepts.
var HairStyles = [12]uint16{10, 11, 13, 14, 15, 24, 30, 35, 37, 38, 39, 40}
