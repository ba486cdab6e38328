package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	QuestionSets struct {
		TTL string `yaml:"ttl"`
	} `yaml:"question_sets"`
	Game Game `yaml:"game"`
}

// Game holds engine tuning. Empty values fall back to the engine defaults.
type Game struct {
	DefaultTimeLimit string `yaml:"default_time_limit"`
	BetweenPause     string `yaml:"between_pause"`
	ComboBonus       int    `yaml:"combo_bonus"`
	ComboTeamAward   string `yaml:"combo_team_award"`
	HealthDamage     int    `yaml:"health_damage"`
	ConflictRetries  int    `yaml:"conflict_retries"`
	Retention        string `yaml:"retention"`
	JanitorInterval  string `yaml:"janitor_interval"`

	// IdleTTL expires rooms with no activity; falls back to redis.ttl.
	IdleTTL string `yaml:"idle_ttl"`

	// AutoTimer turns server-side question timers on; nil means on.
	AutoTimer *bool `yaml:"auto_timer"`
}

// TimersEnabled reports whether the server schedules end-question and blitz transitions itself.
func (g Game) TimersEnabled() bool {
	return g.AutoTimer == nil || *g.AutoTimer
}

// Load reads YAML config from path and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("QUIZ_AUTO_TIMER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Game.AutoTimer = &b
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
