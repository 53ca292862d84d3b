package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Game - the single point of control for turn timing, history bounds and
// the word pool. Countdown renderers read the lengths from here via the
// rules engine, never from their own copies.
type Game struct {
	TurnLengthSeconds         int    `yaml:"turn-length-seconds" env-default:"60"`
	IntermissionLengthSeconds int    `yaml:"intermission-length-seconds" env-default:"10"`
	HistoryLimit              int    `yaml:"history-limit" env-default:"20"`
	WordlistPath              string `yaml:"wordlist-path" env-default:""`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
