package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dgould/grotto/server/dao"
	"github.com/google/uuid"
)

func NewWorldDatasDBConn(file string) (*WorldDatasDB, error) {
	repo := &WorldDatasDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init()
}

type WorldDatasDB struct {
	db *sql.DB
}

func (repo *WorldDatasDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS worlds (
		id TEXT NOT NULL PRIMARY KEY,
		data TEXT NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	return nil
}

func (repo *WorldDatasDB) Create(ctx context.Context, wd dao.WorldData) (dao.WorldData, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.WorldData{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO worlds (id, data) VALUES (?, ?)`)
	if err != nil {
		return dao.WorldData{}, wrapDBError(err)
	}

	_, err = stmt.ExecContext(ctx, convertToDB_UUID(newUUID), convertToDB_ByteSlice(wd.Data))
	if err != nil {
		return dao.WorldData{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *WorldDatasDB) GetByID(ctx context.Context, id uuid.UUID) (dao.WorldData, error) {
	wd := dao.WorldData{
		ID: id,
	}
	var data string

	row := repo.db.QueryRowContext(ctx, `SELECT data FROM worlds WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(
		&data,
	)

	if err != nil {
		return wd, wrapDBError(err)
	}

	err = convertFromDB_ByteSlice(data, &wd.Data)
	if err != nil {
		return wd, fmt.Errorf("stored data for %s is invalid: %w", wd.ID.String(), err)
	}

	return wd, nil
}

func (repo *WorldDatasDB) Delete(ctx context.Context, id uuid.UUID) (dao.WorldData, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM worlds WHERE id = ?`, convertToDB_UUID(id))
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

func (repo *WorldDatasDB) Close() error {
	return repo.db.Close()
}
