package persist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// CharacterRow mirrors the characters table.
type CharacterRow struct {
	ID        uint32
	AccountID uint32
	RealmID   uint32
	Name      string
	Mesh      uint32
	Avatar    uint16
	HairStyle uint16
	Silver    uint64
	CPs       uint64
	Class     uint16
	PrevClass uint16
	Rebirths  uint16
	Level     uint16
	Exp       uint64
	MapID     uint32
	X         uint16
	Y         uint16
	Virtue    uint16
	Str       uint16
	Agi       uint16
	Vit       uint16
	Spi       uint16
	AttrPts   uint16
	HP        uint16
	MP        uint16
	KillPts   uint16
}

const characterColumns = `id, account_id, realm_id, name, mesh, avatar, hair_style,
	silver, cps, class, prev_class, rebirths, level, exp, map_id, x, y,
	virtue, str, agi, vit, spi, attr_pts, hp, mp, kill_pts`

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func scanCharacter(row pgx.Row) (*CharacterRow, error) {
	c := &CharacterRow{}
	err := row.Scan(
		&c.ID, &c.AccountID, &c.RealmID, &c.Name, &c.Mesh, &c.Avatar,
		&c.HairStyle, &c.Silver, &c.CPs, &c.Class, &c.PrevClass, &c.Rebirths,
		&c.Level, &c.Exp, &c.MapID, &c.X, &c.Y, &c.Virtue, &c.Str, &c.Agi,
		&c.Vit, &c.Spi, &c.AttrPts, &c.HP, &c.MP, &c.KillPts,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindByAccount loads the character on an account, or nil when the account
// has not created one yet.
func (r *CharacterRepo) FindByAccount(ctx context.Context, accountID uint32) (*CharacterRow, error) {
	return scanCharacter(r.db.Pool.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE account_id = $1`, accountID))
}

// FindByID loads a character by id.
func (r *CharacterRepo) FindByID(ctx context.Context, id uint32) (*CharacterRow, error) {
	return scanCharacter(r.db.Pool.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
}

// NameTaken reports whether a character name is already in use.
func (r *CharacterRepo) NameTaken(ctx context.Context, name string) (bool, error) {
	var taken bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM characters WHERE name = $1)`, name,
	).Scan(&taken)
	return taken, err
}

// Create inserts a new character and returns its id.
func (r *CharacterRepo) Create(ctx context.Context, c *CharacterRow) (uint32, error) {
	var id uint32
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters
			(account_id, realm_id, name, mesh, avatar, hair_style, silver,
			 cps, class, map_id, x, y, str, agi, vit, spi, hp, mp)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		 RETURNING id`,
		c.AccountID, c.RealmID, c.Name, c.Mesh, c.Avatar, c.HairStyle,
		c.Silver, c.CPs, c.Class, c.MapID, c.X, c.Y,
		c.Str, c.Agi, c.Vit, c.Spi, c.HP, c.MP,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SavePosition persists where the character last stood.
func (r *CharacterRepo) SavePosition(ctx context.Context, id, mapID uint32, x, y uint16) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET map_id = $2, x = $3, y = $4 WHERE id = $1`,
		id, mapID, x, y)
	return err
}
