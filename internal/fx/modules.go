package fx

import (
	"bitstorm/internal/assets"
	"bitstorm/internal/auth"
	"bitstorm/internal/config"
	"bitstorm/internal/database"
	"bitstorm/internal/events"
	"bitstorm/internal/logger"
	"bitstorm/internal/repository"
	"bitstorm/internal/server"
	"bitstorm/internal/service"
	"bitstorm/internal/store"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(store.New),
	fx.Provide(events.New),
	// repos
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewMediaRepository),
	// remote asset store
	fx.Provide(assets.New),
	// svc
	fx.Provide(service.NewMediaService),
	fx.Provide(service.NewVisitorService),
	fx.Provide(auth.NewGate),
	// server
	fx.Provide(server.New),
)
