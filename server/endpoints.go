package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgould/grotto/internal/game"
	"github.com/dgould/grotto/internal/version"
	"github.com/dgould/grotto/server/dao"
	"github.com/dgould/grotto/server/serr"
)

// GET /info: get version info on the server and engine, plus the fortune of
// the day.
func (gs *GrottoServer) epGetInfo(req *http.Request) EndpointResult {
	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Engine = version.Current
	resp.Fortune = gs.fortunes.TimeBased().Text

	return jsonOK(resp, "version info reported")
}

// POST /games: register a new game from uploaded world definition data.
func (gs *GrottoServer) epCreateGame(req *http.Request) EndpointResult {
	var createGame GameCreateRequest
	if err := parseJSON(req, &createGame); err != nil {
		return jsonBadRequest(err.Error(), err.Error())
	}
	if createGame.Name == "" {
		return jsonBadRequest("name: property is empty or missing from request", "empty name")
	}
	if createGame.Data == "" {
		return jsonBadRequest("data: property is empty or missing from request", "empty world data")
	}

	g, err := gs.CreateGame(req.Context(), createGame.Name, createGame.Description, createGame.Version, []byte(createGame.Data))
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return jsonConflict("A game with that name already exists", "game %q already exists", createGame.Name)
		} else if errors.Is(err, serr.ErrBadWorldData) || errors.Is(err, serr.ErrBadArgument) {
			return jsonBadRequest(err.Error(), err.Error())
		}
		return jsonInternalServerError(err.Error())
	}

	return jsonCreated(daoGameToModel(g), "game %q (%s) created", g.Name, g.ID)
}

// GET /games: get all registered games.
func (gs *GrottoServer) epGetAllGames(req *http.Request) EndpointResult {
	all, err := gs.GetAllGames(req.Context())
	if err != nil {
		return jsonInternalServerError(err.Error())
	}

	resp := make([]GameModel, len(all))
	for i := range all {
		resp[i] = daoGameToModel(all[i])
	}

	return jsonOK(resp, "%d games returned", len(resp))
}

// GET /games/{id}: get a registered game.
func (gs *GrottoServer) epGetGame(req *http.Request) EndpointResult {
	id, res, ok := requireIDParam(req)
	if !ok {
		return res
	}

	g, err := gs.GetGame(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound("no game with ID %s", id)
		}
		return jsonInternalServerError(err.Error())
	}

	return jsonOK(daoGameToModel(g), "game %s returned", g.ID)
}

// DELETE /games/{id}: delete a registered game and all its instances.
func (gs *GrottoServer) epDeleteGame(req *http.Request) EndpointResult {
	id, res, ok := requireIDParam(req)
	if !ok {
		return res
	}

	g, err := gs.DeleteGame(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound("no game with ID %s", id)
		}
		return jsonInternalServerError(err.Error())
	}

	return jsonNoContent("game %q (%s) deleted", g.Name, g.ID)
}

// GET /games/{id}/instances: get all instances of a game.
func (gs *GrottoServer) epGetGameInstances(req *http.Request) EndpointResult {
	id, res, ok := requireIDParam(req)
	if !ok {
		return res
	}

	all, err := gs.GetGameInstances(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound("no game with ID %s", id)
		}
		return jsonInternalServerError(err.Error())
	}

	resp := make([]InstanceModel, len(all))
	for i := range all {
		resp[i] = daoInstanceToModel(all[i])
	}

	return jsonOK(resp, "%d instances of game %s returned", len(resp), id)
}

// POST /instances: start a new instance of a game.
func (gs *GrottoServer) epCreateInstance(req *http.Request) EndpointResult {
	var createInst InstanceCreateRequest
	if err := parseJSON(req, &createInst); err != nil {
		return jsonBadRequest(err.Error(), err.Error())
	}
	if createInst.GameID == "" {
		return jsonBadRequest("game_id: property is empty or missing from request", "empty game_id")
	}
	gameID, err := uuid.Parse(createInst.GameID)
	if err != nil {
		return jsonBadRequest("game_id: not a valid UUID", "bad game_id %q", createInst.GameID)
	}

	inst, err := gs.StartInstance(req.Context(), gameID, createInst.PlayerName)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound("no game with ID %s", gameID)
		} else if errors.Is(err, serr.ErrBadArgument) {
			return jsonBadRequest(err.Error(), err.Error())
		}
		return jsonInternalServerError(err.Error())
	}

	return jsonCreated(daoInstanceToModel(inst), "instance %s of game %s created for player %q", inst.ID, inst.GameID, inst.PlayerName)
}

// GET /instances: get all running instances.
func (gs *GrottoServer) epGetAllInstances(req *http.Request) EndpointResult {
	all, err := gs.GetAllInstances(req.Context())
	if err != nil {
		return jsonInternalServerError(err.Error())
	}

	resp := make([]InstanceModel, len(all))
	for i := range all {
		resp[i] = daoInstanceToModel(all[i])
	}

	return jsonOK(resp, "%d instances returned", len(resp))
}

// GET /instances/{id}: get a running instance.
func (gs *GrottoServer) epGetInstance(req *http.Request) EndpointResult {
	id, res, ok := requireIDParam(req)
	if !ok {
		return res
	}

	inst, err := gs.GetInstance(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound("no instance with ID %s", id)
		}
		return jsonInternalServerError(err.Error())
	}

	return jsonOK(daoInstanceToModel(inst), "instance %s returned", inst.ID)
}

// DELETE /instances/{id}: end a running instance.
func (gs *GrottoServer) epDeleteInstance(req *http.Request) EndpointResult {
	id, res, ok := requireIDParam(req)
	if !ok {
		return res
	}

	inst, err := gs.DeleteInstance(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound("no instance with ID %s", id)
		}
		return jsonInternalServerError(err.Error())
	}

	return jsonNoContent("instance %s of player %q deleted", inst.ID, inst.PlayerName)
}

// POST /instances/{id}/moves: submit one turn of input to an instance.
func (gs *GrottoServer) epSubmitMove(req *http.Request) EndpointResult {
	id, res, ok := requireIDParam(req)
	if !ok {
		return res
	}

	var moveReq MoveRequest
	if err := parseJSON(req, &moveReq); err != nil {
		return jsonBadRequest(err.Error(), err.Error())
	}

	result, err := gs.SubmitMove(req.Context(), id, moveReq)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound("no instance with ID %s", id)
		}
		return jsonInternalServerError(err.Error())
	}

	return jsonOK(moveResultToModel(result), "instance %s processed move %q", id, moveReq.Input)
}

// GET /instances/{id}/commands: get the command history of an instance.
func (gs *GrottoServer) epGetCommands(req *http.Request) EndpointResult {
	id, res, ok := requireIDParam(req)
	if !ok {
		return res
	}

	coms, err := gs.GetHistory(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound("no instance with ID %s", id)
		}
		return jsonInternalServerError(err.Error())
	}

	resp := make([]CommandModel, len(coms))
	for i := range coms {
		resp[i] = CommandModel{
			ID:      coms[i].ID.String(),
			Input:   coms[i].Input,
			Created: coms[i].Created.Format(time.RFC3339),
		}
	}

	return jsonOK(resp, "%d commands of instance %s returned", len(resp), id)
}

// requireIDParam pulls the "id" URL parameter out of the request as a UUID.
// When ok is false, the returned EndpointResult holds the error response to
// send.
func requireIDParam(req *http.Request) (id uuid.UUID, res EndpointResult, ok bool) {
	raw := chi.URLParam(req, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return id, jsonBadRequest("id: not a valid UUID", "bad ID %q", raw), false
	}
	return id, EndpointResult{}, true
}

func daoGameToModel(g dao.Game) GameModel {
	return GameModel{
		URI:         APIPathPrefix + "/games/" + g.ID.String(),
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
		Version:     g.Version,
		Created:     g.Created.Format(time.RFC3339),
		Modified:    g.Modified.Format(time.RFC3339),
	}
}

func daoInstanceToModel(inst dao.Instance) InstanceModel {
	return InstanceModel{
		URI:        APIPathPrefix + "/instances/" + inst.ID.String(),
		ID:         inst.ID.String(),
		GameID:     inst.GameID.String(),
		PlayerName: inst.PlayerName,
		Created:    inst.Created.Format(time.RFC3339),
		Modified:   inst.Modified.Format(time.RFC3339),
	}
}

func moveResultToModel(result game.GameMoveResult) MoveResponseModel {
	resp := MoveResponseModel{
		RoomName:        result.RoomName,
		RoomDescription: result.RoomDescription,
		RoomMessage:     result.RoomMessage,
		ItemsMessage:    result.ItemsMessage,
		HealthReport:    result.HealthReport,
		PlayerName:      result.PlayerName,
		ConsoleOutput:   result.ConsoleOutput,
		ClassicMode:     result.ClassicMode,
		ScrollMode:      result.ScrollMode,
		ClearDisplay:    result.ClearDisplay,
		History:         result.History,
	}

	if result.Map != nil {
		m := MapModel{Rooms: make([]MapRoomModel, len(result.Map.Rooms))}
		for i, room := range result.Map.Rooms {
			m.Rooms[i] = MapRoomModel{
				Number:  room.Number,
				Name:    room.Name,
				Current: room.Current,
				Exits:   room.Exits,
			}
		}
		resp.Map = &m
	}

	if len(result.AvailableGames) > 0 {
		resp.AvailableGames = make([]GameInfoModel, len(result.AvailableGames))
		for i, g := range result.AvailableGames {
			resp.AvailableGames[i] = GameInfoModel{
				ID:          g.ID,
				Name:        g.Name,
				Description: g.Description,
			}
		}
	}

	return resp
}

// v must be a pointer to a type.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")

	if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}

	err = json.Unmarshal(bodyData, v)
	if err != nil {
		return fmt.Errorf("malformed JSON in request")
	}

	return nil
}
