package main

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chirper/crud"
	"chirper/domain"
	"chirper/http"
	"chirper/session"
	"chirper/storage"
)

// main is the app's entry point.
func main() {
	// Load configuration from a .config.json file if present,
	// otherwise use the default dev setup.
	config, err := LoadConfig()
	must(err)

	// Set up structured logging. The global logger serves the few places
	// that have no handle on the server, like the errs boundary helpers.
	logger, err := newLogger(config.IsProd())
	must(err)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	err = Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Connect the redis-backed session store.
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	sessions := session.NewStore(rdb, config.Redis.SessionTTL)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper),
		crud.WithFollow(),
		crud.WithPost(),
		crud.WithLike(),
		crud.WithComment(),
		crud.WithHashtag(),
		crud.WithImage(storage.NewDisk(domain.ImagesBaseDir)),
	)
	must(err)

	// Set up a webserver and serve the app.
	server := http.NewServer(services, sessions, logger)
	logger.Info("listening", zap.Int("port", config.Port))
	must(server.Run(config.Port))
}

// newLogger builds the zap logger matching the environment.
func newLogger(isProd bool) (*zap.Logger, error) {
	if isProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
