package inmem

import (
	"context"
	"fmt"
	"sync"

	"github.com/dgould/grotto/server/dao"
	"github.com/google/uuid"
)

func NewWorldDataRepository() *InMemoryWorldDataRepository {
	return &InMemoryWorldDataRepository{
		worlds: make(map[uuid.UUID]dao.WorldData),
	}
}

type InMemoryWorldDataRepository struct {
	mtx    sync.RWMutex
	worlds map[uuid.UUID]dao.WorldData
}

func (imwr *InMemoryWorldDataRepository) Close() error {
	return nil
}

func (imwr *InMemoryWorldDataRepository) Create(ctx context.Context, wd dao.WorldData) (dao.WorldData, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.WorldData{}, fmt.Errorf("could not generate ID: %w", err)
	}

	wd.ID = newUUID

	imwr.mtx.Lock()
	defer imwr.mtx.Unlock()

	// copy the data so a caller reusing its buffer can't mutate the stored
	// row
	stored := dao.WorldData{
		ID:   wd.ID,
		Data: make([]byte, len(wd.Data)),
	}
	copy(stored.Data, wd.Data)

	imwr.worlds[stored.ID] = stored

	return wd, nil
}

func (imwr *InMemoryWorldDataRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.WorldData, error) {
	imwr.mtx.RLock()
	defer imwr.mtx.RUnlock()

	wd, ok := imwr.worlds[id]
	if !ok {
		return dao.WorldData{}, dao.ErrNotFound
	}

	return wd, nil
}

func (imwr *InMemoryWorldDataRepository) Delete(ctx context.Context, id uuid.UUID) (dao.WorldData, error) {
	imwr.mtx.Lock()
	defer imwr.mtx.Unlock()

	wd, ok := imwr.worlds[id]
	if !ok {
		return dao.WorldData{}, dao.ErrNotFound
	}

	delete(imwr.worlds, id)

	return wd, nil
}
