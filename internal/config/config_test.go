package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
server:
  url: ws://example:5001
  transport: kcp
  dial_timeout: 3s
game:
  game_id: g-1
  team_id: t-1
  player_name: tester
bot:
  preset: aggressive
  reconnect_delay: 500ms
  overrides:
    item_radius: 6
    safe_threshold: 0.25
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.URL != "ws://example:5001" || cfg.Server.Transport != "kcp" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.DialTimeout != 3*time.Second || cfg.Bot.ReconnectDelay != 500*time.Millisecond {
		t.Errorf("durations = %v, %v", cfg.Server.DialTimeout, cfg.Bot.ReconnectDelay)
	}
	if cfg.Game.PlayerID == "" {
		t.Errorf("player id not generated")
	}
	if cfg.Bot.MaxActionsPerSecond != 30 {
		t.Errorf("unset field lost its default: %v", cfg.Bot.MaxActionsPerSecond)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	policy, err := cfg.PolicyConfig()
	if err != nil {
		t.Fatalf("PolicyConfig() error = %v", err)
	}
	if policy.ItemRadius != 6 || policy.SafeThreshold != 0.25 {
		t.Errorf("overrides not applied: %+v", policy)
	}
	if policy.HuntBrickCap != 14 {
		t.Errorf("preset not used: HuntBrickCap = %d", policy.HuntBrickCap)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("BOT_SERVER_URL", "ws://env:1")
	t.Setenv("BOT_PLAYER_ID", "fixed")
	cfg, err := Load(writeFile(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.URL != "ws://env:1" || cfg.Game.PlayerID != "fixed" {
		t.Errorf("env not applied: %+v %+v", cfg.Server, cfg.Game)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.URL = ""
	cfg.Server.Transport = "udp"
	cfg.Bot.MaxActionsPerSecond = -1
	cfg.Bot.Preset = "reckless"
	if err := cfg.Validate(); err == nil {
		t.Errorf("Validate() accepted a broken config")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("Load() accepted a missing file")
	}
}
