package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dgould/grotto/server/serr"
)

const testWorldToml = `
format = "GROTTO"
type = "DATA"

[world]
name = "Test Grotto"
description = "A tiny cave."
start = 1
player = "Tester"

[[room]]
number = 1
name = "Cave Entrance"
description = "A dank opening in the rock."

[room.exits]
north = 2

[[room]]
number = 2
name = "Great Hall"
description = "A vaulted chamber."
points = 10

[room.exits]
south = 1

[[item]]
name = "Brass Lamp"
description = "A tarnished old lamp."
location = 1
`

func newTestServer(t *testing.T) *GrottoServer {
	t.Helper()

	gs, err := New(Config{DB: Database{Type: DatabaseInMemory}})
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	t.Cleanup(func() {
		gs.Close()
	})

	return gs
}

func Test_CreateGame(t *testing.T) {
	assert := assert.New(t)
	gs := newTestServer(t)
	ctx := context.Background()

	g, err := gs.CreateGame(ctx, "caves", "", "1.0.0", []byte(testWorldToml))
	if !assert.NoError(err) {
		return
	}

	assert.Equal("caves", g.Name)
	assert.Equal("1.0.0", g.Version)
	// blank description falls back to the world's own
	assert.Equal("A tiny cave.", g.Description)
	assert.NotEqual(uuid.UUID{}, g.DataID)

	// duplicate name is refused
	_, err = gs.CreateGame(ctx, "caves", "", "1.0.1", []byte(testWorldToml))
	assert.ErrorIs(err, serr.ErrAlreadyExists)

	// invalid world data is refused before anything is stored
	_, err = gs.CreateGame(ctx, "broken", "", "1.0.0", []byte(`format = "TUNA"`))
	assert.ErrorIs(err, serr.ErrBadWorldData)

	all, err := gs.GetAllGames(ctx)
	assert.NoError(err)
	assert.Len(all, 1)
}

func Test_DeleteGame(t *testing.T) {
	assert := assert.New(t)
	gs := newTestServer(t)
	ctx := context.Background()

	g, err := gs.CreateGame(ctx, "caves", "", "1.0.0", []byte(testWorldToml))
	if !assert.NoError(err) {
		return
	}
	inst, err := gs.StartInstance(ctx, g.ID, "Rose")
	if !assert.NoError(err) {
		return
	}

	_, err = gs.DeleteGame(ctx, g.ID)
	assert.NoError(err)

	_, err = gs.GetGame(ctx, g.ID)
	assert.ErrorIs(err, serr.ErrNotFound)
	_, err = gs.GetInstance(ctx, inst.ID)
	assert.ErrorIs(err, serr.ErrNotFound)

	_, err = gs.DeleteGame(ctx, g.ID)
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_StartInstance_and_SubmitMove(t *testing.T) {
	assert := assert.New(t)
	gs := newTestServer(t)
	ctx := context.Background()

	g, err := gs.CreateGame(ctx, "caves", "", "1.0.0", []byte(testWorldToml))
	if !assert.NoError(err) {
		return
	}

	inst, err := gs.StartInstance(ctx, g.ID, "Rose")
	if !assert.NoError(err) {
		return
	}
	assert.Equal("Rose", inst.PlayerName)
	assert.Equal(g.ID, inst.GameID)
	assert.NotEmpty(inst.State)

	// unknown game refused
	_, err = gs.StartInstance(ctx, uuid.New(), "Rose")
	assert.ErrorIs(err, serr.ErrNotFound)

	result, err := gs.SubmitMove(ctx, inst.ID, MoveRequest{Input: "n"})
	if !assert.NoError(err) {
		return
	}
	assert.Equal("Great Hall", result.RoomName)
	assert.Equal("You head north.", result.RoomMessage)

	// unparseable gameplay input gets a diagnostic, not an error, and does
	// not join the history
	result, err = gs.SubmitMove(ctx, inst.ID, MoveRequest{Input: "frobnicate"})
	assert.NoError(err)
	assert.Contains(result.RoomMessage, `"frobnicate"`)

	// console moves are processed but never recorded as gameplay
	result, err = gs.SubmitMove(ctx, inst.ID, MoveRequest{Input: "/help"})
	assert.NoError(err)
	assert.NotEmpty(result.ConsoleOutput)

	coms, err := gs.GetHistory(ctx, inst.ID)
	assert.NoError(err)
	if assert.Len(coms, 1) {
		assert.Equal("n", coms[0].Input)
	}

	_, err = gs.GetHistory(ctx, uuid.New())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_SubmitMove_restoresFromPersistence(t *testing.T) {
	assert := assert.New(t)
	gs := newTestServer(t)
	ctx := context.Background()

	g, err := gs.CreateGame(ctx, "caves", "", "1.0.0", []byte(testWorldToml))
	if !assert.NoError(err) {
		return
	}
	inst, err := gs.StartInstance(ctx, g.ID, "Rose")
	if !assert.NoError(err) {
		return
	}
	_, err = gs.SubmitMove(ctx, inst.ID, MoveRequest{Input: "n"})
	if !assert.NoError(err) {
		return
	}

	// drop the live instance; the next move must come back from the persisted
	// state, in the room the player left off in
	gs.engine.Remove(inst.ID)

	result, err := gs.SubmitMove(ctx, inst.ID, MoveRequest{Input: "s"})
	if !assert.NoError(err) {
		return
	}
	assert.Equal("Cave Entrance", result.RoomName)
	assert.Equal("You head south.", result.RoomMessage)

	coms, err := gs.GetHistory(ctx, inst.ID)
	assert.NoError(err)
	assert.Len(coms, 2)
}

func Test_DeleteInstance(t *testing.T) {
	assert := assert.New(t)
	gs := newTestServer(t)
	ctx := context.Background()

	g, err := gs.CreateGame(ctx, "caves", "", "1.0.0", []byte(testWorldToml))
	if !assert.NoError(err) {
		return
	}
	inst, err := gs.StartInstance(ctx, g.ID, "Rose")
	if !assert.NoError(err) {
		return
	}
	_, err = gs.SubmitMove(ctx, inst.ID, MoveRequest{Input: "n"})
	assert.NoError(err)

	deleted, err := gs.DeleteInstance(ctx, inst.ID)
	assert.NoError(err)
	assert.Equal(inst.ID, deleted.ID)

	_, err = gs.GetInstance(ctx, inst.ID)
	assert.ErrorIs(err, serr.ErrNotFound)
	_, err = gs.SubmitMove(ctx, inst.ID, MoveRequest{Input: "n"})
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_ListGames(t *testing.T) {
	assert := assert.New(t)
	gs := newTestServer(t)
	ctx := context.Background()

	assert.Empty(gs.ListGames())

	g, err := gs.CreateGame(ctx, "caves", "deep ones", "1.0.0", []byte(testWorldToml))
	if !assert.NoError(err) {
		return
	}

	infos := gs.ListGames()
	if assert.Len(infos, 1) {
		assert.Equal(g.ID.String(), infos[0].ID)
		assert.Equal("caves", infos[0].Name)
		assert.Equal("deep ones", infos[0].Description)
	}
}

func Test_HTTP_roundTrip(t *testing.T) {
	assert := assert.New(t)
	gs := newTestServer(t)

	srv := httptest.NewServer(gs)
	defer srv.Close()

	postJSON := func(uri string, body interface{}) *http.Response {
		data, err := json.Marshal(body)
		if !assert.NoError(err) {
			t.FailNow()
		}
		resp, err := http.Post(srv.URL+uri, "application/json", bytes.NewReader(data))
		if !assert.NoError(err) {
			t.FailNow()
		}
		return resp
	}

	// register a game
	resp := postJSON("/api/v1/games", GameCreateRequest{
		Name: "caves",
		Data: testWorldToml,
	})
	assert.Equal(http.StatusCreated, resp.StatusCode)
	var gameResp GameModel
	assert.NoError(json.NewDecoder(resp.Body).Decode(&gameResp))
	resp.Body.Close()
	assert.NotEmpty(gameResp.ID)

	// start an instance of it
	resp = postJSON("/api/v1/instances", InstanceCreateRequest{
		GameID:     gameResp.ID,
		PlayerName: "Rose",
	})
	assert.Equal(http.StatusCreated, resp.StatusCode)
	var instResp InstanceModel
	assert.NoError(json.NewDecoder(resp.Body).Decode(&instResp))
	resp.Body.Close()

	// play a turn
	resp = postJSON("/api/v1/instances/"+instResp.ID+"/moves", MoveRequest{Input: "n"})
	assert.Equal(http.StatusOK, resp.StatusCode)
	var moveResp MoveResponseModel
	assert.NoError(json.NewDecoder(resp.Body).Decode(&moveResp))
	resp.Body.Close()
	assert.Equal("Great Hall", moveResp.RoomName)
	assert.Equal("You head north.", moveResp.RoomMessage)

	// history shows the turn
	getResp, err := http.Get(srv.URL + "/api/v1/instances/" + instResp.ID + "/commands")
	if !assert.NoError(err) {
		return
	}
	assert.Equal(http.StatusOK, getResp.StatusCode)
	var coms []CommandModel
	assert.NoError(json.NewDecoder(getResp.Body).Decode(&coms))
	getResp.Body.Close()
	if assert.Len(coms, 1) {
		assert.Equal("n", coms[0].Input)
	}

	// bad body is a 400
	resp = postJSON("/api/v1/games", map[string]string{"name": "empty"})
	assert.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// unknown instance is a 404
	resp = postJSON("/api/v1/instances/"+uuid.NewString()+"/moves", MoveRequest{Input: "n"})
	assert.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// version info is served
	getResp, err = http.Get(srv.URL + "/api/v1/info")
	if !assert.NoError(err) {
		return
	}
	assert.Equal(http.StatusOK, getResp.StatusCode)
	var info InfoModel
	assert.NoError(json.NewDecoder(getResp.Body).Decode(&info))
	getResp.Body.Close()
	assert.NotEmpty(info.Version.Engine)
	assert.NotEmpty(info.Version.Server)
	assert.NotEmpty(info.Fortune)
}
