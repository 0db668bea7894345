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

func NewGamesRepository() *InMemoryGamesRepository {
	return &InMemoryGamesRepository{
		games:       make(map[uuid.UUID]dao.Game),
		byNameIndex: make(map[string]uuid.UUID),
	}
}

type InMemoryGamesRepository struct {
	mtx         sync.RWMutex
	games       map[uuid.UUID]dao.Game
	byNameIndex map[string]uuid.UUID
}

func (imgr *InMemoryGamesRepository) Close() error {
	return nil
}

func (imgr *InMemoryGamesRepository) Create(ctx context.Context, g dao.Game) (dao.Game, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Game{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	// make sure it's not already in the DB
	if _, ok := imgr.byNameIndex[g.Name]; ok {
		return dao.Game{}, dao.ErrConstraintViolation
	}

	now := time.Now()

	g.ID = newUUID
	g.Created = now
	g.Modified = now

	imgr.games[g.ID] = g
	imgr.byNameIndex[g.Name] = g.ID

	return g, nil
}

func (imgr *InMemoryGamesRepository) GetAll(ctx context.Context) ([]dao.Game, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	all := make([]dao.Game, len(imgr.games))

	i := 0
	for k := range imgr.games {
		all[i] = imgr.games[k]
		i++
	}

	all = util.SortBy(all, func(l, r dao.Game) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imgr *InMemoryGamesRepository) Update(ctx context.Context, id uuid.UUID, g dao.Game) (dao.Game, error) {
	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	existing, ok := imgr.games[id]
	if !ok {
		return dao.Game{}, dao.ErrNotFound
	}

	// check for conflicts on this table only
	// (inmem does not support enforcement of foreign keys)
	if g.Name != existing.Name {
		// that's okay but we need to check it
		if _, ok := imgr.byNameIndex[g.Name]; ok {
			return dao.Game{}, dao.ErrConstraintViolation
		}
	} else if g.ID != id {
		// that's okay but we need to check it
		if _, ok := imgr.games[g.ID]; ok {
			return dao.Game{}, dao.ErrConstraintViolation
		}
	}

	g.Modified = time.Now()

	imgr.games[g.ID] = g
	imgr.byNameIndex[g.Name] = g.ID
	if g.ID != id {
		delete(imgr.games, id)
	}
	if g.Name != existing.Name {
		delete(imgr.byNameIndex, existing.Name)
	}

	return g, nil
}

func (imgr *InMemoryGamesRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Game, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	g, ok := imgr.games[id]
	if !ok {
		return dao.Game{}, dao.ErrNotFound
	}

	return g, nil
}

func (imgr *InMemoryGamesRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Game, error) {
	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	g, ok := imgr.games[id]
	if !ok {
		return dao.Game{}, dao.ErrNotFound
	}

	delete(imgr.byNameIndex, g.Name)
	delete(imgr.games, g.ID)

	return g, nil
}
