package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"baduk/internal/adapters"
	"baduk/internal/bootstrap"
	repo "baduk/internal/repository"
	gameUsecase "baduk/internal/usecase/game"
)

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

// Archive importer: replays an SGF file through the rules engine, validating
// every move, then stores the live snapshot and the archive document.
func main() {
	cfgPath := flag.String("config", ".env", "path to the env config file")
	sgfPath := flag.String("sgf", "", "path to the sgf file to import")
	playerBlack := flag.String("black", "", "black player id")
	playerWhite := flag.String("white", "", "white player id")
	flag.Parse()

	logger := NewLogger()

	if *sgfPath == "" {
		logger.Fatal("-sgf is required")
	}

	cfg, err := bootstrap.Setup(*cfgPath)
	if err != nil {
		logger.Fatal("Failed to setup configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.mongoAdapter.Close(ctx)
	defer databaseAdapters.redisAdapter.Close(ctx)

	gameRepo := repo.NewGameRepository(*cfg, logger, databaseAdapters.redisAdapter.GetClient(), databaseAdapters.mongoAdapter.Database)
	defaults := gameUsecase.Defaults{BoardSize: cfg.DefaultBoardSize, Komi: cfg.DefaultKomi}
	games := gameUsecase.NewGameUseCase(gameRepo, defaults, logger)

	text, err := os.ReadFile(*sgfPath)
	if err != nil {
		logger.Fatal("Failed to read sgf file", zap.Error(err))
	}

	imported, err := games.ImportSGF(ctx, string(text), *playerBlack, *playerWhite)
	if err != nil {
		logger.Fatal("Failed to import sgf", zap.Error(err))
	}

	state, err := games.GetState(ctx, imported.GameKeySecret)
	if err != nil {
		logger.Fatal("Failed to load imported game", zap.Error(err))
	}
	logger.Infow("sgf imported",
		"public_key", imported.GameKeyPublic,
		"stage", state.Stage,
		"moves", state.MoveCount,
		"result", state.Result,
	)
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	log.Info("database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
	time.Sleep(1 * time.Second) // дать время закрыть соединения
}
