package inmem

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgould/grotto/internal/util"
	"github.com/dgould/grotto/server/dao"
	"github.com/google/uuid"
)

// NewCommandsRepository creates a new Commands repo. If instRepo is provided,
// Create() checks that the referenced instance exists.
func NewCommandsRepository(instRepo dao.InstanceRepository) *InMemoryCommandsRepository {
	return &InMemoryCommandsRepository{
		instRepo:      instRepo,
		coms:          make(map[uuid.UUID]dao.Command),
		byInstIDIndex: make(map[uuid.UUID][]uuid.UUID),
	}
}

type InMemoryCommandsRepository struct {
	mtx           sync.RWMutex
	coms          map[uuid.UUID]dao.Command
	instRepo      dao.InstanceRepository
	byInstIDIndex map[uuid.UUID][]uuid.UUID
}

func (imcr *InMemoryCommandsRepository) Close() error {
	return nil
}

func (imcr *InMemoryCommandsRepository) Create(ctx context.Context, c dao.Command) (dao.Command, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Command{}, fmt.Errorf("could not generate ID: %w", err)
	}

	c.ID = newUUID
	c.Created = time.Now()

	if imcr.instRepo != nil {
		_, err := imcr.instRepo.GetByID(ctx, c.InstanceID)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				return dao.Command{}, dao.ErrConstraintViolation
			} else {
				return dao.Command{}, err
			}
		}
	}

	imcr.mtx.Lock()
	defer imcr.mtx.Unlock()

	imcr.coms[c.ID] = c

	instComs := imcr.byInstIDIndex[c.InstanceID]
	instComs = append(instComs, c.ID)
	imcr.byInstIDIndex[c.InstanceID] = instComs

	return c, nil
}

func (imcr *InMemoryCommandsRepository) GetAllByInstance(ctx context.Context, instanceID uuid.UUID) ([]dao.Command, error) {
	imcr.mtx.RLock()
	defer imcr.mtx.RUnlock()

	byInst := imcr.byInstIDIndex[instanceID]

	all := make([]dao.Command, len(byInst))

	for i := range byInst {
		all[i] = imcr.coms[byInst[i]]
	}

	// oldest first; break Created ties with ID so the order is stable
	all = util.SortBy(all, func(l, r dao.Command) bool {
		if l.Created.Equal(r.Created) {
			return l.ID.String() < r.ID.String()
		}
		return l.Created.Before(r.Created)
	})

	return all, nil
}

func (imcr *InMemoryCommandsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	imcr.mtx.RLock()
	defer imcr.mtx.RUnlock()

	c, ok := imcr.coms[id]
	if !ok {
		return dao.Command{}, dao.ErrNotFound
	}

	return c, nil
}

func (imcr *InMemoryCommandsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	imcr.mtx.Lock()
	defer imcr.mtx.Unlock()

	c, ok := imcr.coms[id]
	if !ok {
		return dao.Command{}, dao.ErrNotFound
	}

	byInst := imcr.byInstIDIndex[c.InstanceID]
	updated := util.SliceRemove(c.ID, byInst)
	imcr.byInstIDIndex[c.InstanceID] = updated
	if len(updated) < 1 {
		delete(imcr.byInstIDIndex, c.InstanceID)
	}

	delete(imcr.coms, c.ID)

	return c, nil
}
