// Package inmem provides an entirely in-memory implementation of dao.Store.
// Nothing is persisted anywhere; when the store is closed, all data in it is
// gone. It is primarily useful for tests and for quickly standing up a server
// without a database.
package inmem

import (
	"fmt"

	"github.com/dgould/grotto/server/dao"
)

type store struct {
	games     *InMemoryGamesRepository
	worlds    *InMemoryWorldDataRepository
	instances *InMemoryInstancesRepository
	commands  *InMemoryCommandsRepository
}

func NewDatastore() dao.Store {
	instances := NewInstancesRepository()
	return &store{
		games:     NewGamesRepository(),
		worlds:    NewWorldDataRepository(),
		instances: instances,
		commands:  NewCommandsRepository(instances),
	}
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
	var err error
	var nextErr error

	nextErr = s.games.Close()
	if nextErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, %w", err, nextErr)
		} else {
			err = nextErr
		}
	}
	nextErr = s.worlds.Close()
	if nextErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, %w", err, nextErr)
		} else {
			err = nextErr
		}
	}
	nextErr = s.instances.Close()
	if nextErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, %w", err, nextErr)
		} else {
			err = nextErr
		}
	}
	nextErr = s.commands.Close()
	if nextErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, %w", err, nextErr)
		} else {
			err = nextErr
		}
	}

	return err
}
