package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// RealmRow is a registered game server: the public address clients connect
// to and the private address the auth server transfers through.
type RealmRow struct {
	ID        uint32
	Name      string
	GameIP    string
	GamePort  uint16
	RPCIP     string
	RPCPort   uint16
	CreatedAt time.Time
}

type RealmRepo struct {
	db *DB
}

func NewRealmRepo(db *DB) *RealmRepo {
	return &RealmRepo{db: db}
}

// FindByName loads a realm, or nil when none is registered under the name.
func (r *RealmRepo) FindByName(ctx context.Context, name string) (*RealmRow, error) {
	row := &RealmRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, game_ip, game_port, rpc_ip, rpc_port, created_at
		 FROM realms WHERE name = $1`, name,
	).Scan(
		&row.ID, &row.Name, &row.GameIP, &row.GamePort,
		&row.RPCIP, &row.RPCPort, &row.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
