// Package config 机器人配置：YAML 文件 -> 环境变量 -> 命令行参数，后者覆盖前者。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"bomberbot/pkg/ai"
)

type ServerConfig struct {
	URL         string        `yaml:"url"`
	Transport   string        `yaml:"transport"` // ws | tcp | kcp
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type GameConfig struct {
	GameID     string `yaml:"game_id"`
	TeamID     string `yaml:"team_id"`
	TeamName   string `yaml:"team_name"`
	PlayerID   string `yaml:"player_id"` // 为空时生成 uuid
	PlayerName string `yaml:"player_name"`
	Role       string `yaml:"role"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"` // 为空时不附带 token
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// PolicyOverrides 覆盖预设中的个别参数
type PolicyOverrides struct {
	SafeThreshold      *float64 `yaml:"safe_threshold"`
	EscapeHops         *int     `yaml:"escape_hops"`
	BombEscapeHops     *int     `yaml:"bomb_escape_hops"`
	ItemRadius         *int     `yaml:"item_radius"`
	DemolishSafeRadius *int     `yaml:"demolish_safe_radius"`
	HuntBrickCap       *int     `yaml:"hunt_brick_cap"`
	ExploreMomentum    *int     `yaml:"explore_momentum"`
	GhostTether        *int     `yaml:"ghost_tether"`
	PathNodeLimit      *int     `yaml:"path_node_limit"`
}

type BotConfig struct {
	Preset              string          `yaml:"preset"` // normal | aggressive
	Overrides           PolicyOverrides `yaml:"overrides"`
	MaxActionsPerSecond float64         `yaml:"max_actions_per_second"` // 0 表示不限
	Reconnect           bool            `yaml:"reconnect"`
	ReconnectDelay      time.Duration   `yaml:"reconnect_delay"`
	RecordPath          string          `yaml:"record_path"` // 为空时不录制
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Game   GameConfig   `yaml:"game"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	Bot    BotConfig    `yaml:"bot"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:         "ws://127.0.0.1:5001",
			Transport:   "ws",
			DialTimeout: 5 * time.Second,
		},
		Game: GameConfig{
			PlayerName: "bomberbot",
			Role:       "player",
		},
		Auth: AuthConfig{TokenTTL: 5 * time.Minute},
		Log:  LogConfig{Level: "info"},
		Bot: BotConfig{
			Preset:              "normal",
			MaxActionsPerSecond: 30,
			Reconnect:           true,
			ReconnectDelay:      2 * time.Second,
		},
	}
}

// Load 读取配置文件（可为空）并应用环境变量
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.FillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set("BOT_SERVER_URL", &c.Server.URL)
	set("BOT_TRANSPORT", &c.Server.Transport)
	set("BOT_GAME_ID", &c.Game.GameID)
	set("BOT_TEAM_ID", &c.Game.TeamID)
	set("BOT_TEAM_NAME", &c.Game.TeamName)
	set("BOT_PLAYER_ID", &c.Game.PlayerID)
	set("BOT_PLAYER_NAME", &c.Game.PlayerName)
	set("BOT_JWT_SECRET", &c.Auth.JWTSecret)
	set("LOG_LEVEL", &c.Log.Level)
	set("BOT_PRESET", &c.Bot.Preset)

	if v := os.Getenv("BOT_MAX_ACTIONS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BOT_MAX_ACTIONS_PER_SECOND: %w", err)
		}
		c.Bot.MaxActionsPerSecond = f
	}
	return nil
}

// FillDefaults 补齐运行期才确定的值
func (c *Config) FillDefaults() {
	if c.Game.PlayerID == "" {
		c.Game.PlayerID = uuid.NewString()
	}
	if c.Game.Role == "" {
		c.Game.Role = "player"
	}
}

// Validate 检查配置
func (c *Config) Validate() error {
	var errs []error
	if c.Server.URL == "" {
		errs = append(errs, errors.New("server.url 不能为空"))
	}
	switch c.Server.Transport {
	case "ws", "tcp", "kcp":
	default:
		errs = append(errs, fmt.Errorf("不支持的协议: %q", c.Server.Transport))
	}
	if c.Bot.MaxActionsPerSecond < 0 {
		errs = append(errs, errors.New("bot.max_actions_per_second 不能为负"))
	}
	if c.Bot.ReconnectDelay < 0 {
		errs = append(errs, errors.New("bot.reconnect_delay 不能为负"))
	}
	if _, ok := ai.ConfigByName(c.Bot.Preset); !ok {
		errs = append(errs, fmt.Errorf("未知策略预设: %q", c.Bot.Preset))
	}
	return errors.Join(errs...)
}

// PolicyConfig 预设加覆盖项
func (c *Config) PolicyConfig() (ai.AIConfig, error) {
	cfg, ok := ai.ConfigByName(c.Bot.Preset)
	if !ok {
		return ai.AIConfig{}, fmt.Errorf("未知策略预设: %q", c.Bot.Preset)
	}
	o := c.Bot.Overrides
	if o.SafeThreshold != nil {
		cfg.SafeThreshold = *o.SafeThreshold
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&cfg.EscapeHops, o.EscapeHops)
	setInt(&cfg.BombEscapeHops, o.BombEscapeHops)
	setInt(&cfg.ItemRadius, o.ItemRadius)
	setInt(&cfg.DemolishSafeRadius, o.DemolishSafeRadius)
	setInt(&cfg.HuntBrickCap, o.HuntBrickCap)
	setInt(&cfg.ExploreMomentum, o.ExploreMomentum)
	setInt(&cfg.GhostTether, o.GhostTether)
	setInt(&cfg.PathNodeLimit, o.PathNodeLimit)
	return cfg, nil
}
