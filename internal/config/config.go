package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/memory-backend/internal/apperror"
	"github.com/rocketscienceinc/memory-backend/internal/entity"
	"github.com/rocketscienceinc/memory-backend/internal/memory"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	NATS       NATS   `yaml:"nats"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"1h"`
}

// NATS - event publishing is disabled when URL is empty.
type NATS struct {
	URL           string `yaml:"url" env:"NATS_URL"`
	SubjectPrefix string `yaml:"subject-prefix" env:"NATS_SUBJECT_PREFIX" env-default:"memory"`
}

type Game struct {
	Symbols           []string      `yaml:"symbols" env:"GAME_SYMBOLS"`
	MaxStars          int           `yaml:"max-stars" env:"GAME_MAX_STARS" env-default:"3"`
	StarThresholds    []int         `yaml:"star-thresholds" env:"GAME_STAR_THRESHOLDS" env-default:"11,16,20"`
	AdjudicationDelay time.Duration `yaml:"adjudication-delay" env:"GAME_ADJUDICATION_DELAY" env-default:"650ms"`
	TickInterval      time.Duration `yaml:"tick-interval" env:"GAME_TICK_INTERVAL" env-default:"1s"`
}

// Load - reads config.yml with environment overrides and validates it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Game.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) Validate() error {
	switch {
	case that.MaxStars < 0:
		return fmt.Errorf("%w: game.max-stars %d is negative", apperror.ErrInvalidConfig, that.MaxStars)
	case that.AdjudicationDelay <= 0:
		return fmt.Errorf("%w: game.adjudication-delay must be positive", apperror.ErrInvalidConfig)
	case that.TickInterval <= 0:
		return fmt.Errorf("%w: game.tick-interval must be positive", apperror.ErrInvalidConfig)
	}

	for _, threshold := range that.StarThresholds {
		if threshold < 0 {
			return fmt.Errorf("%w: game.star-thresholds holds negative %d", apperror.ErrInvalidConfig, threshold)
		}
	}

	if len(that.Symbols) == 0 {
		return nil
	}

	return memory.ValidateSymbols(that.symbols())
}

// ToMemoryConfig - converts the game section, falling back to the classic deck
// when no symbols are configured.
func (that *Game) ToMemoryConfig() memory.Config {
	conf := memory.DefaultConfig()

	if len(that.Symbols) > 0 {
		conf.Symbols = that.symbols()
	}

	conf.Rating = memory.Rating{
		MaxStars:   that.MaxStars,
		Thresholds: append([]int(nil), that.StarThresholds...),
	}
	conf.AdjudicationDelay = that.AdjudicationDelay
	conf.TickInterval = that.TickInterval

	return conf
}

func (that *Game) symbols() []entity.Symbol {
	symbols := make([]entity.Symbol, len(that.Symbols))
	for i, symbol := range that.Symbols {
		symbols[i] = entity.Symbol(symbol)
	}

	return symbols
}
