package persist

import "context"

// MapRow mirrors the maps table.
type MapRow struct {
	ID           uint32
	Path         string
	RevivePointX uint16
	RevivePointY uint16
	Flags        uint32
	Weather      uint32
	RebornMap    uint32
	Color        uint32
}

// PortalRow mirrors the portals table.
type PortalRow struct {
	ID        uint32
	FromMapID uint32
	FromX     uint16
	FromY     uint16
	ToMapID   uint32
	ToX       uint16
	ToY       uint16
}

// NpcRow mirrors the npcs table.
type NpcRow struct {
	ID           uint32
	Name         string
	Kind         uint16
	Look         uint16
	MapID        uint32
	X            uint16
	Y            uint16
	Base         uint16
	Sort         uint16
	Level        uint16
	Life         uint32
	Defense      uint16
	MagicDefense uint16
}

// WorldRepo loads the static world content at boot: maps, their portals,
// and their NPC placements.
type WorldRepo struct {
	db *DB
}

func NewWorldRepo(db *DB) *WorldRepo {
	return &WorldRepo{db: db}
}

// Maps loads every map row.
func (r *WorldRepo) Maps(ctx context.Context) ([]MapRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, path, revive_point_x, revive_point_y, flags, weather,
		        reborn_map, color
		 FROM maps`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MapRow
	for rows.Next() {
		var m MapRow
		if err := rows.Scan(&m.ID, &m.Path, &m.RevivePointX, &m.RevivePointY,
			&m.Flags, &m.Weather, &m.RebornMap, &m.Color); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PortalsByMap loads a map's portals.
func (r *WorldRepo) PortalsByMap(ctx context.Context, mapID uint32) ([]PortalRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, from_map_id, from_x, from_y, to_map_id, to_x, to_y
		 FROM portals WHERE from_map_id = $1`, mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PortalRow
	for rows.Next() {
		var p PortalRow
		if err := rows.Scan(&p.ID, &p.FromMapID, &p.FromX, &p.FromY,
			&p.ToMapID, &p.ToX, &p.ToY); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// NpcsByMap loads a map's static NPCs.
func (r *WorldRepo) NpcsByMap(ctx context.Context, mapID uint32) ([]NpcRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, kind, look, map_id, x, y, base, sort, level, life,
		        defense, magic_defense
		 FROM npcs WHERE map_id = $1`, mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NpcRow
	for rows.Next() {
		var n NpcRow
		if err := rows.Scan(&n.ID, &n.Name, &n.Kind, &n.Look, &n.MapID,
			&n.X, &n.Y, &n.Base, &n.Sort, &n.Level, &n.Life,
			&n.Defense, &n.MagicDefense); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
