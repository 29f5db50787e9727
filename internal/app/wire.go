//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/pokebattle/internal/battle"
	"github.com/cory-johannsen/pokebattle/internal/config"
)

// Initialize wires the full server.
func Initialize(ctx context.Context, cfg config.Config) (*App, func(), error) {
	wire.Build(ServerSet)
	return nil, nil, nil
}

// InitializeArena wires only what adjudication needs: no database, no listeners.
func InitializeArena(cfg config.Config) (*battle.Arena, func(), error) {
	wire.Build(BattleSet)
	return nil, nil, nil
}
