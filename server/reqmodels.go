package server

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received from
// and sent to the client.

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

type GameModel struct {
	URI         string `json:"uri"`
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	Created     string `json:"created,omitempty"`
	Modified    string `json:"modified,omitempty"`
}

// GameCreateRequest is the body of a request to register a new game. Data is
// the complete world definition, passed through as text.
type GameCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	Data        string `json:"data"`
}

type InstanceModel struct {
	URI        string `json:"uri"`
	ID         string `json:"id,omitempty"`
	GameID     string `json:"game_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Created    string `json:"created,omitempty"`
	Modified   string `json:"modified,omitempty"`
}

type InstanceCreateRequest struct {
	GameID     string `json:"game_id"`
	PlayerName string `json:"player_name,omitempty"`
}

type CommandModel struct {
	ID      string `json:"id,omitempty"`
	Input   string `json:"input"`
	Created string `json:"created,omitempty"`
}

// MoveRequest is the body of a request to submit one turn of input to a
// running instance. ClassicMode and ScrollMode are the client's display-mode
// preferences; leaving one null keeps the instance's current setting.
type MoveRequest struct {
	Input       string `json:"input"`
	Console     bool   `json:"console,omitempty"`
	ClassicMode *bool  `json:"classic_mode,omitempty"`
	ScrollMode  *bool  `json:"scroll_mode,omitempty"`
}

type MoveResponseModel struct {
	RoomName        string `json:"room_name,omitempty"`
	RoomDescription string `json:"room_description,omitempty"`
	RoomMessage     string `json:"room_message,omitempty"`
	ItemsMessage    string `json:"items_message,omitempty"`
	HealthReport    string `json:"health_report,omitempty"`
	PlayerName      string `json:"player_name,omitempty"`
	ConsoleOutput   string `json:"console_output,omitempty"`

	ClassicMode  *bool `json:"classic_mode,omitempty"`
	ScrollMode   *bool `json:"scroll_mode,omitempty"`
	ClearDisplay bool  `json:"clear_display,omitempty"`

	Map            *MapModel       `json:"map,omitempty"`
	History        []string        `json:"history,omitempty"`
	AvailableGames []GameInfoModel `json:"available_games,omitempty"`
}

type MapModel struct {
	Rooms []MapRoomModel `json:"rooms"`
}

type MapRoomModel struct {
	Number  int            `json:"number"`
	Name    string         `json:"name"`
	Current bool           `json:"current,omitempty"`
	Exits   map[string]int `json:"exits,omitempty"`
}

type GameInfoModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type InfoModel struct {
	Version VersionInfoModel `json:"version"`
	Fortune string           `json:"fortune,omitempty"`
}

type VersionInfoModel struct {
	Server string `json:"server"`
	Engine string `json:"engine"`
}
