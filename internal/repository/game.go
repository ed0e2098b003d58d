package repo

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"baduk/internal/bootstrap"
	"baduk/internal/domain/game"
	"baduk/internal/errors"
	"baduk/internal/statuses"
)

const (
	snapshotKeyPrefix = "game:snapshot:"
	sgfKeyPrefix      = "game:sgf:"
	gamesCollection   = "games"
)

// GameRepository keeps the lobby/archive documents in mongo and the live
// position state (snapshot JSON and SGF text) in redis.
type GameRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewGameRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redisClient *redis.Client, mongoDb *mongo.Database) *GameRepository {
	return &GameRepository{
		cfg:   cfg,
		log:   log,
		redis: redisClient,
		mongo: mongoDb,
	}
}

// GenerateGameKeys issues the uuid secret key and a unique derived 5-digit
// public key players share to join.
func (g *GameRepository) GenerateGameKeys(ctx context.Context) (gameKeySecret string, gameKeyPublic string) {
	gameKeySecret = uuid.New().String()
	for {
		gameKeyPublic = generateHash(gameKeySecret)
		if g.CheckPublicKeyIsUniq(ctx, gameKeyPublic) {
			return gameKeySecret, gameKeyPublic
		}
		gameKeySecret = uuid.New().String()
	}
}

func generateHash(s string) string {
	h := md5.New()
	h.Write([]byte(s))
	hashBytes := h.Sum(nil)
	number := binary.BigEndian.Uint32(hashBytes[:4])
	code := number % 100000
	return fmt.Sprintf("%05d", code)
}

func (g *GameRepository) CheckPublicKeyIsUniq(ctx context.Context, gameKeyPublic string) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	collection := g.mongo.Collection(gamesCollection)
	filter := bson.M{
		"game_key_public": gameKeyPublic,
	}
	err := collection.FindOne(ctx, filter).Err()
	return stderrors.Is(err, mongo.ErrNoDocuments)
}

func (g *GameRepository) PutGame(ctx context.Context, gameData game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	if _, err := collection.InsertOne(ctx, gameData); err != nil {
		g.log.Errorf("failed to insert game: %v", err)
		return fmt.Errorf("%w: %v", errors.ErrCreateGameFailed, err)
	}

	g.log.Infof("game inserted with public key %s", gameData.GameKeyPublic)
	return nil
}

// AddPlayer fills the free seat of the game and flips it to active.
func (g *GameRepository) AddPlayer(ctx context.Context, userID string, gameKeySecret string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	existing, err := g.GetGameBySecretKey(ctx, gameKeySecret)
	if err != nil {
		return game.Game{}, err
	}

	seat := "player_white"
	if existing.PlayerBlack == "" {
		seat = "player_black"
	} else if existing.PlayerWhite != "" {
		return game.Game{}, fmt.Errorf("%w: game is full", errors.ErrJoinGameFailed)
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			seat:         userID,
			"status":     statuses.StatusActive,
			"started_at": now,
		},
	}

	collection := g.mongo.Collection(gamesCollection)
	if _, err := collection.UpdateOne(ctx, bson.M{"game_key_secret": gameKeySecret}, update); err != nil {
		g.log.Errorf("failed to add player: %v", err)
		return game.Game{}, fmt.Errorf("%w: %v", errors.ErrJoinGameFailed, err)
	}

	return g.GetGameBySecretKey(ctx, gameKeySecret)
}

func (g *GameRepository) GetGameBySecretKey(ctx context.Context, gameKeySecret string) (game.Game, error) {
	var found game.Game
	collection := g.mongo.Collection(gamesCollection)
	err := collection.FindOne(ctx, bson.M{"game_key_secret": gameKeySecret}).Decode(&found)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, errors.ErrGameNotFound
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	return found, nil
}

func (g *GameRepository) GetGameByPublicKey(ctx context.Context, gameKeyPublic string) (game.Game, error) {
	var found game.Game
	collection := g.mongo.Collection(gamesCollection)
	err := collection.FindOne(ctx, bson.M{"game_key_public": gameKeyPublic}).Decode(&found)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, errors.ErrGameNotFound
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	return found, nil
}

// FinishGame records the result and final SGF on the archive document and
// puts a TTL on the live redis state.
func (g *GameRepository) FinishGame(ctx context.Context, gameKeySecret string, result string, sgfText string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"status":      statuses.StatusFinished,
			"result":      result,
			"sgf":         sgfText,
			"finished_at": now,
		},
	}
	collection := g.mongo.Collection(gamesCollection)
	if _, err := collection.UpdateOne(ctx, bson.M{"game_key_secret": gameKeySecret}, update); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}

	// keep live state around for a day of post-game review, then let it expire
	for _, key := range []string{snapshotKeyPrefix + gameKeySecret, sgfKeyPrefix + gameKeySecret} {
		if err := g.redis.Expire(ctx, key, 24*time.Hour).Err(); err != nil {
			g.log.Errorf("failed to expire live state for %s: %v", gameKeySecret, err)
		}
	}
	return nil
}

func (g *GameRepository) SaveSnapshot(ctx context.Context, gameKeySecret string, snapshot []byte) error {
	return g.redis.Set(ctx, snapshotKeyPrefix+gameKeySecret, snapshot, 0).Err()
}

func (g *GameRepository) LoadSnapshot(ctx context.Context, gameKeySecret string) ([]byte, error) {
	data, err := g.redis.Get(ctx, snapshotKeyPrefix+gameKeySecret).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	return data, nil
}

func (g *GameRepository) SaveSGF(ctx context.Context, gameKeySecret string, sgfText string) error {
	return g.redis.Set(ctx, sgfKeyPrefix+gameKeySecret, sgfText, 0).Err()
}

func (g *GameRepository) LoadSGF(ctx context.Context, gameKeySecret string) (string, error) {
	data, err := g.redis.Get(ctx, sgfKeyPrefix+gameKeySecret).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", errors.ErrGameNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	return data, nil
}

// GetArchiveByPlayer lists finished games of one player, newest first.
func (g *GameRepository) GetArchiveByPlayer(ctx context.Context, userID string) ([]game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)
	filter := bson.M{
		"status": statuses.StatusFinished,
		"$or": []bson.M{
			{"player_black": userID},
			{"player_white": userID},
		},
	}
	cursor, err := collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	defer cursor.Close(ctx)

	var games []game.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	return games, nil
}
