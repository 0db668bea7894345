package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dgould/grotto/server/dao"
	"github.com/google/uuid"
)

func NewCommandsDBConn(file string) (*CommandsDB, error) {
	repo := &CommandsDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init(false)
}

type CommandsDB struct {
	db *sql.DB
}

func (repo *CommandsDB) init(fk bool) error {
	stmt := `CREATE TABLE IF NOT EXISTS commands (
		id TEXT NOT NULL PRIMARY KEY,
		instance_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES instances(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		input TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *CommandsDB) Create(ctx context.Context, c dao.Command) (dao.Command, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Command{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO commands (id, instance_id, input, created) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return dao.Command{}, wrapDBError(err)
	}

	_, err = stmt.ExecContext(ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(c.InstanceID),
		c.Input,
		convertToDB_Time(time.Now()),
	)
	if err != nil {
		return dao.Command{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *CommandsDB) GetAllByInstance(ctx context.Context, instanceID uuid.UUID) ([]dao.Command, error) {
	// oldest first; break Created ties with ID so the order is stable
	rows, err := repo.db.QueryContext(ctx, `SELECT id, input, created FROM commands WHERE instance_id=? ORDER BY created, id;`,
		convertToDB_UUID(instanceID),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Command

	for rows.Next() {
		c := dao.Command{
			InstanceID: instanceID,
		}
		var id string
		var created int64
		err = rows.Scan(
			&id,
			&c.Input,
			&created,
		)

		if err != nil {
			return nil, wrapDBError(err)
		}

		if err := convertFromDB_UUID(id, &c.ID); err != nil {
			return all, err
		}
		convertFromDB_Time(created, &c.Created)

		all = append(all, c)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *CommandsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	c := dao.Command{
		ID: id,
	}
	var instanceID string
	var created int64

	row := repo.db.QueryRowContext(ctx, `SELECT instance_id, input, created FROM commands WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(
		&instanceID,
		&c.Input,
		&created,
	)

	if err != nil {
		return c, wrapDBError(err)
	}

	if err := convertFromDB_UUID(instanceID, &c.InstanceID); err != nil {
		return c, err
	}
	convertFromDB_Time(created, &c.Created)

	return c, nil
}

func (repo *CommandsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM commands WHERE id = ?`, convertToDB_UUID(id))
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

func (repo *CommandsDB) Close() error {
	return repo.db.Close()
}
