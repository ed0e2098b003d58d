package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"baduk/internal/domain/board"
	"baduk/internal/domain/game"
	"baduk/internal/errors"
	"baduk/internal/statuses"
	"baduk/internal/usecase/engine"
)

// GameStore is the persistence boundary: lobby/archive documents plus the
// live snapshot and SGF blobs. It never reaches into board internals.
type GameStore interface {
	GenerateGameKeys(ctx context.Context) (gameKeySecret string, gameKeyPublic string)
	PutGame(ctx context.Context, gameData game.Game) error
	AddPlayer(ctx context.Context, userID string, gameKeySecret string) (game.Game, error)
	GetGameBySecretKey(ctx context.Context, gameKeySecret string) (game.Game, error)
	GetGameByPublicKey(ctx context.Context, gameKeyPublic string) (game.Game, error)
	FinishGame(ctx context.Context, gameKeySecret string, result string, sgfText string) error
	SaveSnapshot(ctx context.Context, gameKeySecret string, snapshot []byte) error
	LoadSnapshot(ctx context.Context, gameKeySecret string) ([]byte, error)
	SaveSGF(ctx context.Context, gameKeySecret string, sgfText string) error
	LoadSGF(ctx context.Context, gameKeySecret string) (string, error)
	GetArchiveByPlayer(ctx context.Context, userID string) ([]game.Game, error)
}

// State is what gets broadcast to players after every action: everything the
// presentation layer reads, nothing it shouldn't.
type State struct {
	Board         []string     `json:"board"`
	CapturedBlack int          `json:"captured_black"`
	CapturedWhite int          `json:"captured_white"`
	Ko            *board.Ko    `json:"ko,omitempty"`
	Turn          string       `json:"turn"`
	Stage         engine.Stage `json:"stage"`
	Result        string       `json:"result,omitempty"`
	MoveCount     int          `json:"move_count"`
	Territory     []game.Stone `json:"territory,omitempty"`
	DeadPoints    []game.Point `json:"dead_points,omitempty"`
}

// Defaults fill in create requests that leave board size or komi unset,
// sourced from the bootstrap config.
type Defaults struct {
	BoardSize int
	Komi      float64
}

type GameUseCase struct {
	store    GameStore
	defaults Defaults
	log      *zap.SugaredLogger
}

func NewGameUseCase(store GameStore, defaults Defaults, log *zap.SugaredLogger) *GameUseCase {
	return &GameUseCase{store: store, defaults: defaults, log: log}
}

// CreateGame opens a lobby document and seeds the live engine state.
func (g *GameUseCase) CreateGame(ctx context.Context, req game.CreateGameRequest, creatorID string) (game.Game, error) {
	rules := engine.Rules{
		Cols:     req.BoardCols,
		Rows:     req.BoardRows,
		Komi:     req.Komi,
		Handicap: req.Handicap,
	}
	if rules.Cols == 0 && rules.Rows == 0 {
		rules.Cols, rules.Rows = g.defaults.BoardSize, g.defaults.BoardSize
	}
	if rules.Komi == 0 {
		rules.Komi = g.defaults.Komi
	}
	eng, err := engine.New(rules)
	if err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", errors.ErrCreateGameFailed, err)
	}

	gameKeySecret, gameKeyPublic := g.store.GenerateGameKeys(ctx)
	newGame := game.Game{
		GameKeySecret: gameKeySecret,
		GameKeyPublic: gameKeyPublic,
		Status:        statuses.StatusWaitOpponent,
		BoardCols:     rules.Cols,
		BoardRows:     rules.Rows,
		Komi:          rules.Komi,
		Handicap:      rules.Handicap,
		CreatedAt:     time.Now(),
	}
	if req.IsCreatorBlack {
		newGame.PlayerBlack = creatorID
	} else {
		newGame.PlayerWhite = creatorID
	}

	if err := g.store.PutGame(ctx, newGame); err != nil {
		return game.Game{}, err
	}
	if err := g.persist(ctx, newGame, eng); err != nil {
		return game.Game{}, err
	}

	g.log.Infow("game created", "public_key", gameKeyPublic, "board", fmt.Sprintf("%dx%d", rules.Cols, rules.Rows))
	return newGame, nil
}

// JoinGame seats the second player by the shared public key.
func (g *GameUseCase) JoinGame(ctx context.Context, gameKeyPublic string, userID string) (game.Game, error) {
	play, err := g.store.GetGameByPublicKey(ctx, gameKeyPublic)
	if err != nil {
		return game.Game{}, err
	}
	if play.PlayerBlack == userID || play.PlayerWhite == userID {
		return play, nil
	}
	return g.store.AddPlayer(ctx, userID, play.GameKeySecret)
}

// Play applies one stone placement for the user and broadcasts-ready state.
func (g *GameUseCase) Play(ctx context.Context, gameKeySecret, userID string, p game.Point) (State, error) {
	return g.act(ctx, gameKeySecret, userID, func(eng *engine.Engine, color game.Stone) error {
		return eng.Play(color, p)
	})
}

func (g *GameUseCase) Pass(ctx context.Context, gameKeySecret, userID string) (State, error) {
	return g.act(ctx, gameKeySecret, userID, func(eng *engine.Engine, color game.Stone) error {
		return eng.Pass(color)
	})
}

func (g *GameUseCase) Resign(ctx context.Context, gameKeySecret, userID string) (State, error) {
	return g.act(ctx, gameKeySecret, userID, func(eng *engine.Engine, color game.Stone) error {
		return eng.Resign(color)
	})
}

// Timeout is fed in by the external time-control layer for the flagged color.
func (g *GameUseCase) Timeout(ctx context.Context, gameKeySecret string, color game.Stone) (State, error) {
	return g.actAs(ctx, gameKeySecret, color, func(eng *engine.Engine, c game.Stone) error {
		return eng.Timeout(c)
	})
}

func (g *GameUseCase) ToggleDeadChain(ctx context.Context, gameKeySecret, userID string, p game.Point) (State, error) {
	return g.act(ctx, gameKeySecret, userID, func(eng *engine.Engine, _ game.Stone) error {
		return eng.ToggleDeadChain(p)
	})
}

func (g *GameUseCase) ApproveTerritory(ctx context.Context, gameKeySecret, userID string) (State, error) {
	return g.act(ctx, gameKeySecret, userID, func(eng *engine.Engine, color game.Stone) error {
		return eng.ApproveTerritory(color)
	})
}

// Undo replays the move list minus the last entry; the accept/reject
// negotiation around it belongs to the session layer.
func (g *GameUseCase) Undo(ctx context.Context, gameKeySecret, userID string) (State, error) {
	return g.act(ctx, gameKeySecret, userID, func(eng *engine.Engine, _ game.Stone) error {
		return eng.Undo()
	})
}

// FastForward absorbs an authoritative flat move list, discarding whatever
// the local engine had explored.
func (g *GameUseCase) FastForward(ctx context.Context, gameKeySecret string, moves []game.Move) (State, error) {
	play, eng, err := g.load(ctx, gameKeySecret)
	if err != nil {
		return State{}, err
	}
	if err := eng.ReplaceMoves(moves); err != nil {
		return State{}, err
	}
	if err := g.persist(ctx, play, eng); err != nil {
		return State{}, err
	}
	return stateOf(eng), nil
}

// GetState resumes the live engine and reports the current position.
func (g *GameUseCase) GetState(ctx context.Context, gameKeySecret string) (State, error) {
	_, eng, err := g.load(ctx, gameKeySecret)
	if err != nil {
		return State{}, err
	}
	return stateOf(eng), nil
}

// ExportSGF returns the stored SGF text, which persist refreshes after every
// applied action.
func (g *GameUseCase) ExportSGF(ctx context.Context, gameKeySecret string) (string, error) {
	return g.store.LoadSGF(ctx, gameKeySecret)
}

// Archive lists the user's finished games.
func (g *GameUseCase) Archive(ctx context.Context, userID string) ([]game.Game, error) {
	return g.store.GetArchiveByPlayer(ctx, userID)
}

// ImportSGF replays an SGF text into a fresh, already finished or mid-game
// record, used by the archive importer.
func (g *GameUseCase) ImportSGF(ctx context.Context, text string, playerBlack, playerWhite string) (game.Game, error) {
	eng, err := engine.ImportSGF(text)
	if err != nil {
		return game.Game{}, err
	}

	gameKeySecret, gameKeyPublic := g.store.GenerateGameKeys(ctx)
	rules := eng.Rules()
	doc := game.Game{
		GameKeySecret: gameKeySecret,
		GameKeyPublic: gameKeyPublic,
		Status:        statuses.StatusActive,
		BoardCols:     rules.Cols,
		BoardRows:     rules.Rows,
		Komi:          rules.Komi,
		Handicap:      rules.Handicap,
		PlayerBlack:   playerBlack,
		PlayerWhite:   playerWhite,
		CreatedAt:     time.Now(),
	}
	if err := g.store.PutGame(ctx, doc); err != nil {
		return game.Game{}, err
	}
	if err := g.persist(ctx, doc, eng); err != nil {
		return game.Game{}, err
	}
	g.log.Infow("sgf imported", "public_key", gameKeyPublic, "moves", len(eng.Moves()), "result", eng.Result())
	return doc, nil
}

func (g *GameUseCase) act(ctx context.Context, gameKeySecret, userID string, fn func(*engine.Engine, game.Stone) error) (State, error) {
	play, err := g.store.GetGameBySecretKey(ctx, gameKeySecret)
	if err != nil {
		return State{}, err
	}
	color, err := userColor(play, userID)
	if err != nil {
		return State{}, err
	}
	return g.applyAndPersist(ctx, play, color, fn)
}

func (g *GameUseCase) actAs(ctx context.Context, gameKeySecret string, color game.Stone, fn func(*engine.Engine, game.Stone) error) (State, error) {
	play, err := g.store.GetGameBySecretKey(ctx, gameKeySecret)
	if err != nil {
		return State{}, err
	}
	return g.applyAndPersist(ctx, play, color, fn)
}

func (g *GameUseCase) applyAndPersist(ctx context.Context, play game.Game, color game.Stone, fn func(*engine.Engine, game.Stone) error) (State, error) {
	eng, err := g.loadEngine(ctx, play.GameKeySecret)
	if err != nil {
		return State{}, err
	}
	if err := fn(eng, color); err != nil {
		return State{}, err
	}
	if err := g.persist(ctx, play, eng); err != nil {
		return State{}, err
	}
	return stateOf(eng), nil
}

func (g *GameUseCase) load(ctx context.Context, gameKeySecret string) (game.Game, *engine.Engine, error) {
	play, err := g.store.GetGameBySecretKey(ctx, gameKeySecret)
	if err != nil {
		return game.Game{}, nil, err
	}
	eng, err := g.loadEngine(ctx, gameKeySecret)
	if err != nil {
		return game.Game{}, nil, err
	}
	return play, eng, nil
}

func (g *GameUseCase) loadEngine(ctx context.Context, gameKeySecret string) (*engine.Engine, error) {
	data, err := g.store.LoadSnapshot(ctx, gameKeySecret)
	if err != nil {
		return nil, err
	}
	eng, err := engine.DecodeSnapshot(data)
	if err != nil {
		g.log.Errorw("corrupt snapshot", "key", gameKeySecret, "error", err)
		return nil, err
	}
	return eng, nil
}

// persist writes the snapshot and SGF after every applied action, and closes
// out the archive document once the game is done.
func (g *GameUseCase) persist(ctx context.Context, play game.Game, eng *engine.Engine) error {
	data, err := eng.EncodeSnapshot()
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	sgfText := eng.ExportSGF(play.PlayerBlack, play.PlayerWhite)
	if err := g.store.SaveSnapshot(ctx, play.GameKeySecret, data); err != nil {
		return err
	}
	if err := g.store.SaveSGF(ctx, play.GameKeySecret, sgfText); err != nil {
		return err
	}
	if eng.Stage() == engine.StageDone {
		return g.store.FinishGame(ctx, play.GameKeySecret, eng.Result(), sgfText)
	}
	return nil
}

func userColor(play game.Game, userID string) (game.Stone, error) {
	// an unfilled seat is the empty string; never let it match a caller
	if userID == "" {
		return game.Empty, fmt.Errorf("%w: empty user id", errors.ErrGameNotFound)
	}
	switch userID {
	case play.PlayerBlack:
		return game.Black, nil
	case play.PlayerWhite:
		return game.White, nil
	}
	return game.Empty, fmt.Errorf("%w: user %s is not seated", errors.ErrGameNotFound, userID)
}

func stateOf(eng *engine.Engine) State {
	b := eng.Board()
	s := State{
		Board:         b.RowStrings(),
		CapturedBlack: b.Captures(game.Black),
		CapturedWhite: b.Captures(game.White),
		Ko:            b.Ko(),
		Turn:          eng.Turn().String(),
		Stage:         eng.Stage(),
		Result:        eng.Result(),
		MoveCount:     len(eng.Moves()),
	}
	if review := eng.Review(); review != nil {
		s.Territory = eng.Territory()
		s.DeadPoints = review.Dead.Points()
	}
	return s
}
