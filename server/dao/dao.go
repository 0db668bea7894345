// Package dao provides data access objects for use in the Grotto server.
package dao

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Store holds all the repositories the server persists through. The main
// entities (games, instances, commands) and the bulk world definition data
// are kept in separate repositories so that the large world blobs can live in
// their own storage.
type Store interface {
	Games() GameRepository
	Worlds() WorldDataRepository
	Instances() InstanceRepository
	Commands() CommandRepository

	io.Closer
}

// Game is one playable game definition registered with the server. The world
// definition bytes themselves are kept separately as a WorldData row pointed
// at by DataID.
type Game struct {
	ID          uuid.UUID
	Name        string
	Description string
	Version     string
	DataID      uuid.UUID
	Created     time.Time
	Modified    time.Time
}

// WorldData is the raw world definition of a game, exactly as uploaded.
type WorldData struct {
	ID   uuid.UUID
	Data []byte
}

// Instance is one player's running session of a game. State is the binary
// encoded per-instance overlay; it is written back after every accepted move
// so a server restart never loses more than an in-flight turn.
type Instance struct {
	ID         uuid.UUID
	GameID     uuid.UUID
	PlayerName string
	State      []byte
	Created    time.Time
	Modified   time.Time
}

// Command is one accepted gameplay input of an instance, kept for history.
type Command struct {
	ID         uuid.UUID
	InstanceID uuid.UUID
	Input      string
	Created    time.Time
}

type GameRepository interface {
	// Create creates a new Game. All attributes except for auto-generated
	// fields are taken from the provided Game.
	Create(ctx context.Context, g Game) (Game, error)
	GetAll(ctx context.Context) ([]Game, error)
	GetByID(ctx context.Context, id uuid.UUID) (Game, error)
	Update(ctx context.Context, id uuid.UUID, g Game) (Game, error)
	Delete(ctx context.Context, id uuid.UUID) (Game, error)
}

type WorldDataRepository interface {
	Create(ctx context.Context, wd WorldData) (WorldData, error)
	GetByID(ctx context.Context, id uuid.UUID) (WorldData, error)
	Delete(ctx context.Context, id uuid.UUID) (WorldData, error)
}

type InstanceRepository interface {
	Create(ctx context.Context, inst Instance) (Instance, error)
	GetAll(ctx context.Context) ([]Instance, error)
	GetAllByGame(ctx context.Context, gameID uuid.UUID) ([]Instance, error)
	GetByID(ctx context.Context, id uuid.UUID) (Instance, error)
	Update(ctx context.Context, id uuid.UUID, inst Instance) (Instance, error)
	Delete(ctx context.Context, id uuid.UUID) (Instance, error)
}

type CommandRepository interface {
	Create(ctx context.Context, c Command) (Command, error)

	// GetAllByInstance returns the instance's commands oldest first.
	GetAllByInstance(ctx context.Context, instanceID uuid.UUID) ([]Command, error)
	GetByID(ctx context.Context, id uuid.UUID) (Command, error)
	Delete(ctx context.Context, id uuid.UUID) (Command, error)
}
