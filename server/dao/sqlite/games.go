package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dgould/grotto/server/dao"
	"github.com/google/uuid"
)

func NewGamesDBConn(file string) (*GamesDB, error) {
	repo := &GamesDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init()
}

type GamesDB struct {
	db *sql.DB
}

func (repo *GamesDB) init() error {
	// data_id points into the worlds DB file, so it can never be an FK.
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS games (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		version TEXT NOT NULL,
		data_id TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *GamesDB) Create(ctx context.Context, g dao.Game) (dao.Game, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Game{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO games (id, name, description, version, data_id, created, modified) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Game{}, wrapDBError(err)
	}
	now := time.Now()

	_, err = stmt.ExecContext(ctx,
		convertToDB_UUID(newUUID),
		g.Name,
		g.Description,
		g.Version,
		convertToDB_UUID(g.DataID),
		convertToDB_Time(now),
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Game{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *GamesDB) GetAll(ctx context.Context) ([]dao.Game, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, name, description, version, data_id, created, modified FROM games ORDER BY id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Game

	for rows.Next() {
		var g dao.Game
		var id string
		var dataID string
		var created int64
		var modified int64
		err = rows.Scan(
			&id,
			&g.Name,
			&g.Description,
			&g.Version,
			&dataID,
			&created,
			&modified,
		)

		if err != nil {
			return nil, wrapDBError(err)
		}

		if err := convertFromDB_UUID(id, &g.ID); err != nil {
			return all, err
		}
		if err := convertFromDB_UUID(dataID, &g.DataID); err != nil {
			return all, err
		}
		convertFromDB_Time(created, &g.Created)
		convertFromDB_Time(modified, &g.Modified)

		all = append(all, g)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *GamesDB) Update(ctx context.Context, id uuid.UUID, g dao.Game) (dao.Game, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE games SET id=?, name=?, description=?, version=?, data_id=?, created=?, modified=? WHERE id=?;`,
		convertToDB_UUID(g.ID),
		g.Name,
		g.Description,
		g.Version,
		convertToDB_UUID(g.DataID),
		convertToDB_Time(g.Created),
		convertToDB_Time(time.Now()),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Game{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Game{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Game{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, g.ID)
}

func (repo *GamesDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Game, error) {
	g := dao.Game{
		ID: id,
	}
	var dataID string
	var created int64
	var modified int64

	row := repo.db.QueryRowContext(ctx, `SELECT name, description, version, data_id, created, modified FROM games WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(
		&g.Name,
		&g.Description,
		&g.Version,
		&dataID,
		&created,
		&modified,
	)

	if err != nil {
		return g, wrapDBError(err)
	}

	if err := convertFromDB_UUID(dataID, &g.DataID); err != nil {
		return g, err
	}
	convertFromDB_Time(created, &g.Created)
	convertFromDB_Time(modified, &g.Modified)

	return g, nil
}

func (repo *GamesDB) Delete(ctx context.Context, id uuid.UUID) (dao.Game, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, convertToDB_UUID(id))
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

func (repo *GamesDB) Close() error {
	return repo.db.Close()
}
