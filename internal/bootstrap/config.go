package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	RedisUrl         string  `mapstructure:"REDIS_URL"`
	MongoUri         string  `mapstructure:"MONGO_URI"`
	MongoDatabase    string  `mapstructure:"MONGO_DATABASE"`
	DefaultBoardSize int     `mapstructure:"DEFAULT_BOARD_SIZE"`
	DefaultKomi      float64 `mapstructure:"DEFAULT_KOMI"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	cfg := Config{
		MongoDatabase:    "baduk",
		DefaultBoardSize: 19,
		DefaultKomi:      6.5,
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
