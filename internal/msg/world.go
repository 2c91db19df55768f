package msg

import (
	"time"

	"github.com/coemu/server/internal/net/packet"
)

// WeatherKind drives the client's ambient weather effect.
type WeatherKind uint32

const (
	WeatherNone        WeatherKind = 1
	WeatherRain        WeatherKind = 2
	WeatherSnow        WeatherKind = 3
	WeatherRainWind    WeatherKind = 4
	WeatherAutumnLeave WeatherKind = 5
	WeatherBlossom     WeatherKind = 7
)

// Weather sets the map's weather after entering or teleporting.
type Weather struct {
	Kind      WeatherKind
	Intensity uint32
	Direction uint32
	Color     uint32
}

func (m *Weather) PacketID() uint16 { return IDWeather }

func (m *Weather) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(uint32(m.Kind))
	w.WriteU32(m.Intensity)
	w.WriteU32(m.Direction)
	w.WriteU32(m.Color)
	return w.Bytes()
}

// NewWeather builds a weather packet with the default white color.
func NewWeather(kind WeatherKind, intensity, direction uint32) *Weather {
	return &Weather{Kind: kind, Intensity: intensity, Direction: direction, Color: 0x00FFFFFF}
}

// MapInfo announces the map the character just landed on; uid differs from
// the map id only for instanced copies.
type MapInfo struct {
	UID   uint32
	MapID uint32
	Flags uint32
}

func (m *MapInfo) PacketID() uint16 { return IDMapInfo }

func (m *MapInfo) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(m.UID)
	w.WriteU32(m.MapID)
	w.WriteU32(m.Flags)
	return w.Bytes()
}

// DataAction selects what the data packet carries.
type DataAction uint32

const (
	DataSetServerTime DataAction = 0
)

// Data synchronizes the client's clock with the server. The year is offset
// by 1900 and the month by one, the way the client's C runtime expects.
type Data struct {
	Action DataAction
	Year   int32
	Month  int32
	Day    int32
	Hour   int32
	Minute int32
	Second int32
}

func (m *Data) PacketID() uint16 { return IDData }

func (m *Data) Marshal() []byte {
	w := packet.NewWriter()
	w.WriteU32(uint32(m.Action))
	w.WriteI32(m.Year)
	w.WriteI32(m.Month)
	w.WriteI32(m.Day)
	w.WriteI32(m.Hour)
	w.WriteI32(m.Minute)
	w.WriteI32(m.Second)
	return w.Bytes()
}

// ServerTime captures now as a server-time data packet.
func ServerTime(now time.Time) *Data {
	utc := now.UTC()
	return &Data{
		Action: DataSetServerTime,
		Year:   int32(utc.Year() - 1900),
		Month:  int32(utc.Month() - 1),
		Day:    int32(utc.Day()),
		Hour:   int32(utc.Hour()),
		Minute: int32(utc.Minute()),
		Second: int32(utc.Second()),
	}
}
