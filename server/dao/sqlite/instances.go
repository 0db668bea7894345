package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dgould/grotto/server/dao"
	"github.com/google/uuid"
)

func NewInstancesDBConn(file string) (*InstancesDB, error) {
	repo := &InstancesDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init(false)
}

type InstancesDB struct {
	db *sql.DB
}

func (repo *InstancesDB) init(fk bool) error {
	stmt := `CREATE TABLE IF NOT EXISTS instances (
		id TEXT NOT NULL PRIMARY KEY,
		game_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES games(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		player_name TEXT NOT NULL,
		state TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *InstancesDB) Create(ctx context.Context, inst dao.Instance) (dao.Instance, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Instance{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO instances (id, game_id, player_name, state, created, modified) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Instance{}, wrapDBError(err)
	}
	now := time.Now()

	_, err = stmt.ExecContext(ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(inst.GameID),
		inst.PlayerName,
		convertToDB_ByteSlice(inst.State),
		convertToDB_Time(now),
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Instance{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *InstancesDB) GetAll(ctx context.Context) ([]dao.Instance, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, game_id, player_name, state, created, modified FROM instances ORDER BY id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *InstancesDB) GetAllByGame(ctx context.Context, gameID uuid.UUID) ([]dao.Instance, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, game_id, player_name, state, created, modified FROM instances WHERE game_id=? ORDER BY id;`,
		convertToDB_UUID(gameID),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	return repo.scanRows(rows)
}

func (repo *InstancesDB) scanRows(rows *sql.Rows) ([]dao.Instance, error) {
	var all []dao.Instance

	for rows.Next() {
		var inst dao.Instance
		var id string
		var gameID string
		var encState string
		var created int64
		var modified int64
		err := rows.Scan(
			&id,
			&gameID,
			&inst.PlayerName,
			&encState,
			&created,
			&modified,
		)

		if err != nil {
			return nil, wrapDBError(err)
		}

		if err := convertFromDB_UUID(id, &inst.ID); err != nil {
			return all, err
		}
		if err := convertFromDB_UUID(gameID, &inst.GameID); err != nil {
			return all, err
		}
		if err := convertFromDB_ByteSlice(encState, &inst.State); err != nil {
			return all, fmt.Errorf("stored state for %s is invalid: %w", inst.ID.String(), err)
		}
		convertFromDB_Time(created, &inst.Created)
		convertFromDB_Time(modified, &inst.Modified)

		all = append(all, inst)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *InstancesDB) Update(ctx context.Context, id uuid.UUID, inst dao.Instance) (dao.Instance, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE instances SET id=?, game_id=?, player_name=?, state=?, created=?, modified=? WHERE id=?;`,
		convertToDB_UUID(inst.ID),
		convertToDB_UUID(inst.GameID),
		inst.PlayerName,
		convertToDB_ByteSlice(inst.State),
		convertToDB_Time(inst.Created),
		convertToDB_Time(time.Now()),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Instance{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Instance{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Instance{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, inst.ID)
}

func (repo *InstancesDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Instance, error) {
	inst := dao.Instance{
		ID: id,
	}
	var gameID string
	var encState string
	var created int64
	var modified int64

	row := repo.db.QueryRowContext(ctx, `SELECT game_id, player_name, state, created, modified FROM instances WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(
		&gameID,
		&inst.PlayerName,
		&encState,
		&created,
		&modified,
	)

	if err != nil {
		return inst, wrapDBError(err)
	}

	if err := convertFromDB_UUID(gameID, &inst.GameID); err != nil {
		return inst, err
	}
	if err := convertFromDB_ByteSlice(encState, &inst.State); err != nil {
		return inst, fmt.Errorf("stored state for %s is invalid: %w", inst.ID.String(), err)
	}
	convertFromDB_Time(created, &inst.Created)
	convertFromDB_Time(modified, &inst.Modified)

	return inst, nil
}

func (repo *InstancesDB) Delete(ctx context.Context, id uuid.UUID) (dao.Instance, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM instances WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *InstancesDB) Close() error {
	return repo.db.Close()
}
