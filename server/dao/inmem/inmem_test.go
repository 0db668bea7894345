package inmem

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgould/grotto/server/dao"
)

// The server hits the store from one goroutine per request, so the repos have
// to tolerate interleaved writes and reads on the same tables.
func Test_Datastore_concurrentAccess(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	store := NewDatastore()
	defer store.Close()

	game, err := store.Games().Create(ctx, dao.Game{Name: "Shared Game"})
	if !assert.NoError(err) {
		return
	}
	inst, err := store.Instances().Create(ctx, dao.Instance{GameID: game.ID, PlayerName: "Rose"})
	if !assert.NoError(err) {
		return
	}

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)

	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := store.Games().Create(ctx, dao.Game{Name: fmt.Sprintf("game-%d-%d", i, j)}); err != nil {
					errs <- err
					return
				}
				if _, err := store.Instances().Create(ctx, dao.Instance{GameID: game.ID, PlayerName: "Dave"}); err != nil {
					errs <- err
					return
				}
				if _, err := store.Commands().Create(ctx, dao.Command{InstanceID: inst.ID, Input: "look"}); err != nil {
					errs <- err
					return
				}
				if _, err := store.Games().GetAll(ctx); err != nil {
					errs <- err
					return
				}
				if _, err := store.Instances().GetAllByGame(ctx, game.ID); err != nil {
					errs <- err
					return
				}
				if _, err := store.Commands().GetAllByInstance(ctx, inst.ID); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(err)
	}

	games, err := store.Games().GetAll(ctx)
	assert.NoError(err)
	assert.Len(games, workers*perWorker+1)

	insts, err := store.Instances().GetAllByGame(ctx, game.ID)
	assert.NoError(err)
	assert.Len(insts, workers*perWorker+1)

	coms, err := store.Commands().GetAllByInstance(ctx, inst.ID)
	assert.NoError(err)
	assert.Len(coms, workers*perWorker)
}
