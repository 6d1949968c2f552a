package config

import (
	"fmt"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/service"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	DBPath     string `env:"ARENA_DB_PATH"    envDefault:"arena.db"`
	Migrations string `env:"ARENA_MIGRATIONS" envDefault:"file://migrations"`
	HTTPAddr   string `env:"ARENA_HTTP_ADDR"  envDefault:":8080"`

	BracketTick time.Duration `env:"ARENA_BRACKET_TICK" envDefault:"30s"`
	QueueTick   time.Duration `env:"ARENA_QUEUE_TICK"   envDefault:"5s"`
	CleanupTick time.Duration `env:"ARENA_CLEANUP_TICK" envDefault:"1h"`
	Retention   time.Duration `env:"ARENA_RETENTION"    envDefault:"720h"`

	BaseRange          int           `env:"ARENA_MM_BASE_RANGE"        envDefault:"100"`
	ExpansionPerSecond float64       `env:"ARENA_MM_EXPANSION_PER_SEC" envDefault:"5"`
	MaxRange           int           `env:"ARENA_MM_MAX_RANGE"         envDefault:"500"`
	AITimeout          time.Duration `env:"ARENA_MM_AI_TIMEOUT"        envDefault:"60s"`

	AIStatVariance float64 `env:"ARENA_AI_STAT_VARIANCE" envDefault:"0.1"`
	// 0 seeds from crypto/rand
	Seed uint64 `env:"ARENA_SEED" envDefault:"0"`

	RunnerUpPct    int `env:"ARENA_REWARD_RUNNER_UP_PCT"  envDefault:"50"`
	SemifinalPct   int `env:"ARENA_REWARD_SEMIFINAL_PCT"  envDefault:"25"`
	Participation  int `env:"ARENA_REWARD_PARTICIPATION"  envDefault:"10"`
	ChampionBonus  int `env:"ARENA_BONUS_CHAMPION"        envDefault:"20"`
	RunnerUpBonus  int `env:"ARENA_BONUS_RUNNER_UP"       envDefault:"10"`
	SemifinalBonus int `env:"ARENA_BONUS_SEMIFINAL"       envDefault:"5"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	for name, d := range map[string]time.Duration{
		"ARENA_BRACKET_TICK": c.BracketTick,
		"ARENA_QUEUE_TICK":   c.QueueTick,
		"ARENA_CLEANUP_TICK": c.CleanupTick,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.BaseRange < 0 || c.MaxRange < c.BaseRange {
		return fmt.Errorf("matchmaking range must satisfy 0 <= base (%d) <= max (%d)", c.BaseRange, c.MaxRange)
	}
	if c.AIStatVariance < 0 || c.AIStatVariance >= 1 {
		return fmt.Errorf("ARENA_AI_STAT_VARIANCE must be in [0, 1), got %v", c.AIStatVariance)
	}
	return nil
}

func (c Config) Matchmaking() service.MatchmakingConfig {
	return service.MatchmakingConfig{
		BaseRange:          c.BaseRange,
		ExpansionPerSecond: c.ExpansionPerSecond,
		MaxRange:           c.MaxRange,
		AITimeout:          c.AITimeout,
		TickInterval:       c.QueueTick,
	}
}

func (c Config) Rewards() service.RewardConfig {
	return service.RewardConfig{
		RunnerUpPct:    c.RunnerUpPct,
		SemifinalPct:   c.SemifinalPct,
		Participation:  c.Participation,
		ChampionBonus:  c.ChampionBonus,
		RunnerUpBonus:  c.RunnerUpBonus,
		SemifinalBonus: c.SemifinalBonus,
	}
}
