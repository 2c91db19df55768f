package msg

import "github.com/coemu/server/internal/net/packet"

// Body meshes the client may pick at creation.
const (
	BodyAgileMale      uint16 = 1003
	BodyMuscularMale   uint16 = 1004
	BodyAgileFemale    uint16 = 2001
	BodyMuscularFemale uint16 = 2002
)

// Base classes the client may pick at creation.
const (
	ClassTrojan  uint16 = 10
	ClassWarrior uint16 = 20
	ClassArcher  uint16 = 40
	ClassTaoist  uint16 = 100
)

// ValidBody reports whether mesh is one of the four creation bodies.
func ValidBody(mesh uint16) bool {
	switch mesh {
	case BodyAgileMale, BodyMuscularMale, BodyAgileFemale, BodyMuscularFemale:
		return true
	}
	return false
}

// ValidClass reports whether class is one of the four base classes.
func ValidClass(class uint16) bool {
	switch class {
	case ClassTrojan, ClassWarrior, ClassArcher, ClassTaoist:
		return true
	}
	return false
}

// Register is the character creation request, gated by the creation token
// handed out when a connect finds no character on the account.
type Register struct {
	Username      string
	CharacterName string
	Password      string
	Mesh          uint16
	Class         uint16
	Token         uint32
}

func (m *Register) PacketID() uint16 { return IDRegister }

func (m *Register) Unmarshal(r *packet.Reader) error {
	m.Username = r.ReadFixedString(16)
	m.CharacterName = r.ReadFixedString(16)
	m.Password = r.ReadPassword()
	m.Mesh = r.ReadU16()
	m.Class = r.ReadU16()
	m.Token = r.ReadU32()
	return r.Err()
}
