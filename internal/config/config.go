package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Network   NetworkConfig   `toml:"network"`
	BossBar   BossBarConfig   `toml:"bossbar"`
	Rotation  RotationConfig  `toml:"rotation"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type ServerConfig struct {
	Name       string `toml:"name"`
	MOTD       string `toml:"motd"`
	MaxPlayers int    `toml:"max_players"`
	GameMode   uint8  `toml:"game_mode"` // 0=survival 1=creative 2=adventure 3=spectator
	StartTime  int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress       string        `toml:"bind_address"`
	TickRate          time.Duration `toml:"tick_rate"`
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	MaxPacketsPerTick int           `toml:"max_packets_per_tick"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
	KeepAliveTicks    int           `toml:"keep_alive_ticks"`   // ticks between keep-alive probes
	KeepAliveTimeout  int           `toml:"keep_alive_timeout"` // ticks without an answer before kick

	// Packets of at least this many bytes are zlib-compressed once the
	// player logs in. Negative disables compression.
	CompressionThreshold int `toml:"compression_threshold"`
}

// BossBarConfig tunes the fake-entity boss bar. The defaults reproduce the
// classic 1.8 wither bar.
type BossBarConfig struct {
	Distance      float64 `toml:"distance"`       // blocks in front of the player's view
	SweepInterval int     `toml:"sweep_interval"` // ticks between repositioning sweeps
	RefreshTicks  int64   `toml:"refresh_ticks"`  // minimum ticks between teleports of one bar
	MaxTextLength int     `toml:"max_text_length"`
	HealthScale   float64 `toml:"health_scale"` // health value of a full bar
	MobType       uint8   `toml:"mob_type"`
	IDGuardBand   int32   `toml:"id_guard_band"` // size of the reserved entity id band
}

type RotationConfig struct {
	Enabled        bool   `toml:"enabled"`
	File           string `toml:"file"`
	UpdateInterval int    `toml:"update_interval"` // ticks between countdown refreshes
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type RateLimitConfig struct {
	Enabled          bool `toml:"enabled"`
	PacketsPerSecond int  `toml:"packets_per_second"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Network.TickRate <= 0 {
		return fmt.Errorf("network.tick_rate must be positive")
	}
	if c.BossBar.SweepInterval < 1 {
		return fmt.Errorf("bossbar.sweep_interval must be at least 1")
	}
	if c.BossBar.MaxTextLength < 1 {
		return fmt.Errorf("bossbar.max_text_length must be at least 1")
	}
	if c.BossBar.IDGuardBand < 1 {
		return fmt.Errorf("bossbar.id_guard_band must be at least 1")
	}
	return nil
}

// Default returns the built-in configuration that Load overlays.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:       "witherbar",
			MOTD:       "A witherbar server",
			MaxPlayers: 20,
			GameMode:   3,
		},
		Network: NetworkConfig{
			BindAddress:       "0.0.0.0:25565",
			TickRate:          50 * time.Millisecond,
			InQueueSize:       128,
			OutQueueSize:      256,
			MaxPacketsPerTick: 32,
			WriteTimeout:      10 * time.Second,
			ReadTimeout:       30 * time.Second,
			KeepAliveTicks:    200, // 10 seconds at 20 TPS
			KeepAliveTimeout:  600,

			CompressionThreshold: 256,
		},
		BossBar: BossBarConfig{
			Distance:      32,
			SweepInterval: 3,
			RefreshTicks:  3,
			MaxTextLength: 64,
			HealthScale:   300,
			MobType:       64, // wither
			IDGuardBand:   15000,
		},
		Rotation: RotationConfig{
			Enabled:        true,
			File:           "data/yaml/rotation.yaml",
			UpdateInterval: 10,
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		RateLimit: RateLimitConfig{
			Enabled:          true,
			PacketsPerSecond: 500,
		},
	}
}
