package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgould/grotto/internal/util"
	"github.com/dgould/grotto/server/dao"
	"github.com/google/uuid"
)

func NewInstancesRepository() *InMemoryInstancesRepository {
	return &InMemoryInstancesRepository{
		instances:     make(map[uuid.UUID]dao.Instance),
		byGameIDIndex: make(map[uuid.UUID][]uuid.UUID),
	}
}

type InMemoryInstancesRepository struct {
	mtx           sync.RWMutex
	instances     map[uuid.UUID]dao.Instance
	byGameIDIndex map[uuid.UUID][]uuid.UUID
}

func (imir *InMemoryInstancesRepository) Close() error {
	return nil
}

func (imir *InMemoryInstancesRepository) Create(ctx context.Context, inst dao.Instance) (dao.Instance, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Instance{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()

	inst.ID = newUUID
	inst.Created = now
	inst.Modified = now

	imir.mtx.Lock()
	defer imir.mtx.Unlock()

	imir.instances[inst.ID] = inst

	gameInsts := imir.byGameIDIndex[inst.GameID]
	gameInsts = append(gameInsts, inst.ID)
	imir.byGameIDIndex[inst.GameID] = gameInsts

	return inst, nil
}

func (imir *InMemoryInstancesRepository) GetAll(ctx context.Context) ([]dao.Instance, error) {
	imir.mtx.RLock()
	defer imir.mtx.RUnlock()

	all := make([]dao.Instance, len(imir.instances))

	i := 0
	for k := range imir.instances {
		all[i] = imir.instances[k]
		i++
	}

	all = util.SortBy(all, func(l, r dao.Instance) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imir *InMemoryInstancesRepository) GetAllByGame(ctx context.Context, gameID uuid.UUID) ([]dao.Instance, error) {
	imir.mtx.RLock()
	defer imir.mtx.RUnlock()

	byGame := imir.byGameIDIndex[gameID]

	all := make([]dao.Instance, len(byGame))

	for i := range byGame {
		all[i] = imir.instances[byGame[i]]
	}

	all = util.SortBy(all, func(l, r dao.Instance) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imir *InMemoryInstancesRepository) Update(ctx context.Context, id uuid.UUID, inst dao.Instance) (dao.Instance, error) {
	imir.mtx.Lock()
	defer imir.mtx.Unlock()

	existing, ok := imir.instances[id]
	if !ok {
		return dao.Instance{}, dao.ErrNotFound
	}

	// check for conflicts on this table only
	// (inmem does not support enforcement of foreign keys)
	if inst.ID != id {
		// that's okay but we need to check it
		if _, ok := imir.instances[inst.ID]; ok {
			return dao.Instance{}, dao.ErrConstraintViolation
		}
	}

	inst.Modified = time.Now()

	imir.instances[inst.ID] = inst
	if inst.ID != id {
		delete(imir.instances, id)

		// also update it in the index slice if we are not about to remove it
		if existing.GameID == inst.GameID {
			byGame := imir.byGameIDIndex[existing.GameID]
			pos := util.SliceIndexOf(id, byGame)
			if pos < 0 {
				return dao.Instance{}, fmt.Errorf("DB ASSERTION FAILURE: missing index entry for game %s to instance %s", existing.GameID, existing.ID)
			}
			byGame[pos] = inst.ID
			imir.byGameIDIndex[existing.GameID] = byGame
		}
	}

	if inst.GameID != existing.GameID {
		// if we're modifying the game, we must remove it from old index
		// entry and put it into another.
		byGame := imir.byGameIDIndex[existing.GameID]
		updated := util.SliceRemove(existing.ID, byGame)
		imir.byGameIDIndex[existing.GameID] = updated
		if len(updated) < 1 {
			delete(imir.byGameIDIndex, existing.GameID)
		}

		newByGame := imir.byGameIDIndex[inst.GameID]
		newByGame = append(newByGame, inst.ID)
		imir.byGameIDIndex[inst.GameID] = newByGame
	}

	return inst, nil
}

func (imir *InMemoryInstancesRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Instance, error) {
	imir.mtx.RLock()
	defer imir.mtx.RUnlock()

	inst, ok := imir.instances[id]
	if !ok {
		return dao.Instance{}, dao.ErrNotFound
	}

	return inst, nil
}

func (imir *InMemoryInstancesRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Instance, error) {
	imir.mtx.Lock()
	defer imir.mtx.Unlock()

	inst, ok := imir.instances[id]
	if !ok {
		return dao.Instance{}, dao.ErrNotFound
	}

	byGame := imir.byGameIDIndex[inst.GameID]
	updated := util.SliceRemove(inst.ID, byGame)
	imir.byGameIDIndex[inst.GameID] = updated
	if len(updated) < 1 {
		delete(imir.byGameIDIndex, inst.GameID)
	}
	delete(imir.instances, inst.ID)

	return inst, nil
}
