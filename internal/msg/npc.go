package msg

import "github.com/coemu/server/internal/net/packet"

// NpcActionKind is the client's intent when interacting with an NPC.
type NpcActionKind uint16

const (
	NpcActivate          NpcActionKind = 0
	NpcAdd               NpcActionKind = 1
	NpcLeaveMap          NpcActionKind = 2
	NpcDelete            NpcActionKind = 3
	NpcChangePosition    NpcActionKind = 4
	NpcCancelInteraction NpcActionKind = 255
)

// Npc is the client asking to interact with an NPC in its screen.
type Npc struct {
	NpcID  uint32
	Data   uint32
	Action NpcActionKind
	Kind   uint16
}

func (m *Npc) PacketID() uint16 { return IDNpc }

func (m *Npc) Unmarshal(r *packet.Reader) error {
	m.NpcID = r.ReadU32()
	m.Data = r.ReadU32()
	m.Action = NpcActionKind(r.ReadU16())
	m.Kind = r.ReadU16()
	return r.Err()
}

// NpcInfo spawns an NPC in the client's screen. The name rides the trailing
// string list and is only present when HasName is set.
type NpcInfo struct {
	ID      uint32
	X       uint16
	Y       uint16
	Look    uint16
	Kind    uint16
	Sort    uint16
	HasName bool
	Name    string
}

func (m *NpcInfo) PacketID() uint16 { return IDNpcInfo }

func (m *NpcInfo) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.ID)
	w.WriteU16(m.X)
	w.WriteU16(m.Y)
	w.WriteU16(m.Look)
	w.WriteU16(m.Kind)
	w.WriteU16(m.Sort)
	if m.HasName {
		w.WriteU8(1)
		w.WriteString(m.Name)
	} else {
		w.WriteU8(0)
	}
	return w.Bytes()
}

// DialogAction tags one line of an NPC dialog exchange.
type DialogAction uint8

const (
	DialogText   DialogAction = 1
	DialogLink   DialogAction = 2
	DialogEdit   DialogAction = 3
	DialogAvatar DialogAction = 4
	DialogList   DialogAction = 5
	DialogCreate DialogAction = 100
	DialogAnswer DialogAction = 101
	DialogTaskID DialogAction = 102
)

// TaskDialog is one step of an NPC dialog. A full dialog is a sequence:
// text, then options or an edit box, then the avatar, then a create marker.
type TaskDialog struct {
	TaskID   uint32
	Avatar   uint16
	OptionID uint8
	Action   DialogAction
	Messages []string
}

func (m *TaskDialog) PacketID() uint16 { return IDTaskDialog }

func (m *TaskDialog) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.TaskID)
	w.WriteU16(m.Avatar)
	w.WriteU8(m.OptionID)
	w.WriteU8(uint8(m.Action))
	w.WriteStringList(m.Messages)
	return w.Bytes()
}

func (m *TaskDialog) Unmarshal(r *packet.Reader) error {
	m.TaskID = r.ReadU32()
	m.Avatar = r.ReadU16()
	m.OptionID = r.ReadU8()
	m.Action = DialogAction(r.ReadU8())
	m.Messages = r.ReadStringList()
	return r.Err()
}

// Dialog builds the packet sequence for a complete NPC dialog: one text
// line, any options/edits, an avatar, and the closing create marker.
type Dialog struct {
	steps []*TaskDialog
}

// NewDialog starts a dialog with its text, chunked to the client's line
// limit.
func NewDialog(text string) *Dialog {
	d := &Dialog{}
	for len(text) > MaxDialogText {
		d.steps = append(d.steps, &TaskDialog{OptionID: 255, Action: DialogText, Messages: []string{text[:MaxDialogText]}})
		text = text[MaxDialogText:]
	}
	d.steps = append(d.steps, &TaskDialog{OptionID: 255, Action: DialogText, Messages: []string{text}})
	return d
}

// WithOption adds a clickable option.
func (d *Dialog) WithOption(optionID uint8, text string) *Dialog {
	if len(text) > MaxDialogText {
		text = text[:MaxDialogText]
	}
	d.steps = append(d.steps, &TaskDialog{OptionID: optionID, Action: DialogLink, Messages: []string{text}})
	return d
}

// WithEdit adds an input box option.
func (d *Dialog) WithEdit(optionID uint8, prompt string) *Dialog {
	if len(prompt) > MaxDialogText {
		prompt = prompt[:MaxDialogText]
	}
	d.steps = append(d.steps, &TaskDialog{OptionID: optionID, Action: DialogEdit, Messages: []string{prompt}})
	return d
}

// Build closes the dialog with the avatar and create marker and returns the
// packets in send order.
func (d *Dialog) Build(avatar uint16) []*TaskDialog {
	steps := append(d.steps,
		&TaskDialog{Avatar: avatar, OptionID: 255, Action: DialogAvatar},
		&TaskDialog{OptionID: 255, Action: DialogCreate},
	)
	return steps
}
