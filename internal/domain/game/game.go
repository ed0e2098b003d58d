package game

import "time"

// Game is the lobby/archive document stored in mongo. Live position state lives
// in the snapshot kept in redis, never here.
type Game struct {
	GameKeySecret string     `json:"game_key_secret" bson:"game_key_secret"`
	GameKeyPublic string     `json:"game_key_public" bson:"game_key_public"`
	Status        string     `json:"status" bson:"status"`
	BoardCols     int        `json:"board_cols" bson:"board_cols"`
	BoardRows     int        `json:"board_rows" bson:"board_rows"`
	Komi          float64    `json:"komi" bson:"komi"`
	Handicap      int        `json:"handicap" bson:"handicap"`
	PlayerBlack   string     `json:"player_black" bson:"player_black"`
	PlayerWhite   string     `json:"player_white" bson:"player_white"`
	Result        string     `json:"result,omitempty" bson:"result,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
	Sgf           string     `json:"sgf,omitempty" bson:"sgf,omitempty"`
}

type CreateGameRequest struct {
	BoardCols      int     `json:"board_cols"`
	BoardRows      int     `json:"board_rows"`
	Komi           float64 `json:"komi"`
	Handicap       int     `json:"handicap"`
	IsCreatorBlack bool    `json:"is_creator_black"`
}
