// Package sqlite provides an implementation of dao.Store backed by SQLite
// database files on disk. The main entities live in one file and the bulk
// world definition blobs live in another so that backing up or clearing one
// does not require touching the other.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgould/grotto/server/dao"
	"modernc.org/sqlite"
)

type store struct {
	dbFilename       string
	worldsDBFilename string

	db       *sql.DB
	worldsDB *sql.DB

	games     *GamesDB
	worlds    *WorldDatasDB
	instances *InstancesDB
	commands  *CommandsDB
}

func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename:       "data.db",
		worldsDBFilename: "worlds.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)
	worldsFileName := filepath.Join(storageDir, st.worldsDBFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}
	st.worldsDB, err = sql.Open("sqlite", worldsFileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.worlds = &WorldDatasDB{db: st.worldsDB}
	if err := st.worlds.init(); err != nil {
		return nil, err
	}

	st.games = &GamesDB{db: st.db}
	if err := st.games.init(); err != nil {
		return nil, err
	}

	st.instances = &InstancesDB{db: st.db}
	if err := st.instances.init(true); err != nil {
		return nil, err
	}

	st.commands = &CommandsDB{db: st.db}
	if err := st.commands.init(true); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *store) Games() dao.GameRepository {
	return s.games
}

func (s *store) Worlds() dao.WorldDataRepository {
	return s.worlds
}

func (s *store) Instances() dao.InstanceRepository {
	return s.instances
}

func (s *store) Commands() dao.CommandRepository {
	return s.commands
}

func (s *store) Close() error {
	worldsDBErr := s.worldsDB.Close()
	mainDBErr := s.db.Close()

	var err error
	if worldsDBErr != nil {
		err = fmt.Errorf("%s: %w", s.worldsDBFilename, worldsDBErr)
	}
	if mainDBErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally: %s: %w", err.Error(), s.dbFilename, mainDBErr)
		} else {
			err = fmt.Errorf("%s: %w", s.dbFilename, mainDBErr)
		}
	}
	return err
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
