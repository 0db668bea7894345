// Package server provides an HTTP REST server that hosts Grotto games for
// multiple players at once. Clients register game definitions, start running
// instances of them, and submit turn input; every accepted turn is persisted
// so instances survive a server restart.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dgould/grotto/internal/fortune"
	"github.com/dgould/grotto/internal/game"
	"github.com/dgould/grotto/internal/gdf"
	"github.com/dgould/grotto/internal/version"
	"github.com/dgould/grotto/server/dao"
	"github.com/dgould/grotto/server/serr"
)

// GrottoServer is an HTTP REST server that provides Grotto games and
// associated resources. The zero-value of a GrottoServer should not be used
// directly; call New() to get one ready for use.
type GrottoServer struct {
	router   chi.Router
	db       dao.Store
	engine   *game.Engine
	fortunes *fortune.Provider

	// worlds caches parsed game worlds by game ID. A World is immutable once
	// validated so cached entries can back any number of instances.
	worlds *lru.Cache[uuid.UUID, *game.World]
}

// New creates a new GrottoServer ready to serve requests, connected to the
// persistence layer the config specifies.
func New(cfg Config) (*GrottoServer, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, err
	}

	worldCache, err := lru.New[uuid.UUID, *game.World](cfg.WorldCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create world cache: %w", err)
	}

	gs := &GrottoServer{
		db:       db,
		worlds:   worldCache,
		fortunes: fortune.New(),
	}

	gs.engine = game.NewEngine(
		game.WithFortunes(gs.fortunes),
		game.WithVersion(version.Version),
		game.WithGameLister(gs),
	)

	gs.router = newRouter(gs)

	return gs, nil
}

// ServeForever begins listening on the given address and port for HTTP REST
// client requests. If address is kept as "", it will default to "localhost". If
// port is less than 1, it will default to 8080.
func (gs *GrottoServer) ServeForever(address string, port int) {
	if address == "" {
		address = "localhost"
	}
	if port < 1 {
		port = 8080
	}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	log.Printf("INFO  Listening on %s", listenAddress)
	log.Fatalf("FATAL %v", http.ListenAndServe(listenAddress, gs.router))
}

// ServeHTTP makes the server usable as a plain http.Handler, for callers that
// manage their own listener.
func (gs *GrottoServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	gs.router.ServeHTTP(w, req)
}

// Close releases the persistence layer.
func (gs *GrottoServer) Close() error {
	return gs.db.Close()
}

// ListGames returns the catalog of playable games for the game-selection
// console command. Errors reading the catalog leave it empty; the player just
// sees no games on offer.
func (gs *GrottoServer) ListGames() []game.GameInfo {
	all, err := gs.db.Games().GetAll(context.Background())
	if err != nil {
		log.Printf("WARN  could not list games: %v", err)
		return nil
	}

	infos := make([]game.GameInfo, len(all))
	for i := range all {
		infos[i] = game.GameInfo{
			ID:          all[i].ID.String(),
			Name:        all[i].Name,
			Description: all[i].Description,
		}
	}
	return infos
}

// CreateGame registers a new game built from the given world definition data.
// The data is fully parsed and validated before anything is stored. Returns
// the created game.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the world data does not
// parse or validate, it will match serr.ErrBadWorldData. If a game with that
// name already exists, it will match serr.ErrAlreadyExists. If the error
// occured due to an unexpected problem with the DB, it will match serr.ErrDB.
func (gs *GrottoServer) CreateGame(ctx context.Context, name, description, gameVersion string, data []byte) (dao.Game, error) {
	if name == "" {
		return dao.Game{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	world, err := gdf.ParseWorldData(data)
	if err != nil {
		return dao.Game{}, serr.New(err.Error(), serr.ErrBadWorldData)
	}

	wd, err := gs.db.Worlds().Create(ctx, dao.WorldData{Data: data})
	if err != nil {
		return dao.Game{}, serr.WrapDB("could not store world data", err)
	}

	g := dao.Game{
		Name:        name,
		Description: description,
		Version:     gameVersion,
		DataID:      wd.ID,
	}
	if g.Description == "" {
		g.Description = world.Description
	}

	created, err := gs.db.Games().Create(ctx, g)
	if err != nil {
		// don't leave the world data orphaned
		if _, delErr := gs.db.Worlds().Delete(ctx, wd.ID); delErr != nil {
			log.Printf("WARN  could not clean up world data %s: %v", wd.ID, delErr)
		}

		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.Game{}, serr.New("a game with that name already exists", serr.ErrAlreadyExists)
		}
		return dao.Game{}, serr.WrapDB("could not create game", err)
	}

	gs.worlds.Add(created.ID, world)

	return created, nil
}

// GetAllGames returns all games currently registered.
func (gs *GrottoServer) GetAllGames(ctx context.Context) ([]dao.Game, error) {
	all, err := gs.db.Games().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("could not get games", err)
	}
	return all, nil
}

// GetGame returns the game with the given ID.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no game with
// that ID exists, or serr.ErrDB on an unexpected problem with the DB.
func (gs *GrottoServer) GetGame(ctx context.Context, id uuid.UUID) (dao.Game, error) {
	g, err := gs.db.Games().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Game{}, serr.ErrNotFound
		}
		return dao.Game{}, serr.WrapDB("could not get game", err)
	}
	return g, nil
}

// DeleteGame deletes the game with the given ID along with its world data and
// all of its instances. It returns the game just after it was deleted.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no game with
// that ID exists, or serr.ErrDB on an unexpected problem with the DB.
func (gs *GrottoServer) DeleteGame(ctx context.Context, id uuid.UUID) (dao.Game, error) {
	insts, err := gs.db.Instances().GetAllByGame(ctx, id)
	if err != nil && !errors.Is(err, dao.ErrNotFound) {
		return dao.Game{}, serr.WrapDB("could not get game instances", err)
	}

	g, err := gs.db.Games().Delete(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Game{}, serr.ErrNotFound
		}
		return dao.Game{}, serr.WrapDB("could not delete game", err)
	}

	// instance rows cascade with the game where the DB supports it, but the
	// engine registry and world blob must be cleaned up here either way
	for i := range insts {
		gs.engine.Remove(insts[i].ID)
		if _, err := gs.db.Instances().Delete(ctx, insts[i].ID); err != nil && !errors.Is(err, dao.ErrNotFound) {
			log.Printf("WARN  could not delete instance %s of deleted game: %v", insts[i].ID, err)
		}
	}
	if _, err := gs.db.Worlds().Delete(ctx, g.DataID); err != nil && !errors.Is(err, dao.ErrNotFound) {
		log.Printf("WARN  could not delete world data %s of deleted game: %v", g.DataID, err)
	}
	gs.worlds.Remove(id)

	return g, nil
}

// GetAllInstances returns all running instances, of every game.
func (gs *GrottoServer) GetAllInstances(ctx context.Context) ([]dao.Instance, error) {
	all, err := gs.db.Instances().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("could not get instances", err)
	}
	return all, nil
}

// GetGameInstances returns all instances of the game with the given ID.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no game with
// that ID exists, or serr.ErrDB on an unexpected problem with the DB.
func (gs *GrottoServer) GetGameInstances(ctx context.Context, gameID uuid.UUID) ([]dao.Instance, error) {
	if _, err := gs.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	all, err := gs.db.Instances().GetAllByGame(ctx, gameID)
	if err != nil {
		return nil, serr.WrapDB("could not get instances", err)
	}
	return all, nil
}

// StartInstance creates a new running instance of the given game for the given
// player and persists its initial state. If playerName is blank the world's
// default player name is used.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no game with
// that ID exists, or serr.ErrDB on an unexpected problem with the DB.
func (gs *GrottoServer) StartInstance(ctx context.Context, gameID uuid.UUID, playerName string) (dao.Instance, error) {
	g, err := gs.GetGame(ctx, gameID)
	if err != nil {
		return dao.Instance{}, err
	}

	world, err := gs.worldForGame(ctx, g)
	if err != nil {
		return dao.Instance{}, err
	}

	// build the instance first so the persisted row gets its real starting
	// state, then re-key it to the row's ID before the engine adopts it
	inst, err := game.NewInstance(world, playerName)
	if err != nil {
		return dao.Instance{}, serr.New("could not start instance", err)
	}

	snap := inst.Snapshot()
	state, err := snap.MarshalBinary()
	if err != nil {
		return dao.Instance{}, serr.New("could not encode instance state", err)
	}

	row, err := gs.db.Instances().Create(ctx, dao.Instance{
		GameID:     gameID,
		PlayerName: snap.PlayerName,
		State:      state,
	})
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.Instance{}, serr.New("game no longer exists", serr.ErrNotFound)
		}
		return dao.Instance{}, serr.WrapDB("could not create instance", err)
	}

	adopted, err := game.RestoreInstance(world, row.ID, snap)
	if err != nil {
		return dao.Instance{}, serr.New("could not register instance", err)
	}
	gs.engine.Adopt(adopted)

	return row, nil
}

// GetInstance returns the instance with the given ID.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no instance
// with that ID exists, or serr.ErrDB on an unexpected problem with the DB.
func (gs *GrottoServer) GetInstance(ctx context.Context, id uuid.UUID) (dao.Instance, error) {
	inst, err := gs.db.Instances().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Instance{}, serr.ErrNotFound
		}
		return dao.Instance{}, serr.WrapDB("could not get instance", err)
	}
	return inst, nil
}

// DeleteInstance removes the instance with the given ID from the engine and
// from persistence, along with its command history. It returns the instance
// just after it was deleted.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no instance
// with that ID exists, or serr.ErrDB on an unexpected problem with the DB.
func (gs *GrottoServer) DeleteInstance(ctx context.Context, id uuid.UUID) (dao.Instance, error) {
	row, err := gs.db.Instances().Delete(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Instance{}, serr.ErrNotFound
		}
		return dao.Instance{}, serr.WrapDB("could not delete instance", err)
	}

	gs.engine.Remove(id)

	coms, err := gs.db.Commands().GetAllByInstance(ctx, id)
	if err == nil {
		for i := range coms {
			if _, err := gs.db.Commands().Delete(ctx, coms[i].ID); err != nil && !errors.Is(err, dao.ErrNotFound) {
				log.Printf("WARN  could not delete command %s of deleted instance: %v", coms[i].ID, err)
			}
		}
	}

	return row, nil
}

// SubmitMove processes one turn of input against the instance with the given
// ID and returns the result. If the instance is not currently registered with
// the engine, it is restored from its persisted state first. The new state is
// persisted after the move, and gameplay moves the engine accepted are
// recorded in the instance's command history.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no instance
// with that ID exists, serr.ErrBadWorldData if the persisted state cannot be
// restored, or serr.ErrDB on an unexpected problem with the DB.
func (gs *GrottoServer) SubmitMove(ctx context.Context, id uuid.UUID, req MoveRequest) (game.GameMoveResult, error) {
	inst, ok := gs.engine.Instance(id)
	if !ok {
		var err error
		inst, err = gs.restoreInstance(ctx, id)
		if err != nil {
			return game.GameMoveResult{}, err
		}
	}

	useClassic := inst.ClassicMode()
	if req.ClassicMode != nil {
		useClassic = *req.ClassicMode
	}
	useScroll := inst.ScrollMode()
	if req.ScrollMode != nil {
		useScroll = *req.ScrollMode
	}

	turnsBefore := inst.Turns()

	result, err := gs.engine.ProcessMove(game.GameMove{
		InstanceID:       id,
		Move:             req.Input,
		IsConsoleCommand: req.Console,
		UseClassicMode:   useClassic,
		UseScrollMode:    useScroll,
	})
	if err != nil {
		return game.GameMoveResult{}, serr.New("could not process move", err)
	}

	snap := inst.Snapshot()
	state, err := snap.MarshalBinary()
	if err != nil {
		return result, serr.New("could not encode instance state", err)
	}

	row, err := gs.db.Instances().GetByID(ctx, id)
	if err != nil {
		return result, serr.WrapDB("could not get instance for save", err)
	}
	row.State = state
	if _, err := gs.db.Instances().Update(ctx, id, row); err != nil {
		return result, serr.WrapDB("could not save instance state", err)
	}

	// only moves the engine accepted as a game turn join the history
	if inst.Turns() > turnsBefore {
		_, err := gs.db.Commands().Create(ctx, dao.Command{
			InstanceID: id,
			Input:      req.Input,
		})
		if err != nil {
			log.Printf("WARN  could not record command for instance %s: %v", id, err)
		}
	}

	return result, nil
}

// GetHistory returns the persisted command history of the instance with the
// given ID, oldest first.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no instance
// with that ID exists, or serr.ErrDB on an unexpected problem with the DB.
func (gs *GrottoServer) GetHistory(ctx context.Context, id uuid.UUID) ([]dao.Command, error) {
	if _, err := gs.GetInstance(ctx, id); err != nil {
		return nil, err
	}

	coms, err := gs.db.Commands().GetAllByInstance(ctx, id)
	if err != nil {
		return nil, serr.WrapDB("could not get commands", err)
	}
	return coms, nil
}

// restoreInstance rebuilds a registered engine instance from its persisted
// state, such as after a server restart.
func (gs *GrottoServer) restoreInstance(ctx context.Context, id uuid.UUID) (*game.Instance, error) {
	row, err := gs.GetInstance(ctx, id)
	if err != nil {
		return nil, err
	}

	g, err := gs.GetGame(ctx, row.GameID)
	if err != nil {
		return nil, err
	}

	world, err := gs.worldForGame(ctx, g)
	if err != nil {
		return nil, err
	}

	var snap game.Snapshot
	if err := snap.UnmarshalBinary(row.State); err != nil {
		return nil, serr.New("persisted instance state is invalid", err, serr.ErrBadWorldData)
	}

	inst, err := game.RestoreInstance(world, row.ID, snap)
	if err != nil {
		return nil, serr.New("persisted instance state is invalid", err, serr.ErrBadWorldData)
	}

	gs.engine.Adopt(inst)
	return inst, nil
}

// worldForGame returns the parsed world of the given game, from cache when
// possible.
func (gs *GrottoServer) worldForGame(ctx context.Context, g dao.Game) (*game.World, error) {
	if world, ok := gs.worlds.Get(g.ID); ok {
		return world, nil
	}

	wd, err := gs.db.Worlds().GetByID(ctx, g.DataID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, serr.New("world data for game is missing", serr.ErrNotFound)
		}
		return nil, serr.WrapDB("could not get world data", err)
	}

	world, err := gdf.ParseWorldData(wd.Data)
	if err != nil {
		return nil, serr.New("stored world data is invalid", err, serr.ErrBadWorldData)
	}

	gs.worlds.Add(g.ID, world)
	return world, nil
}
