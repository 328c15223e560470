package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bomberbot/internal/client"
	"bomberbot/internal/config"
	"bomberbot/internal/logger"
	"bomberbot/internal/replay"
	"bomberbot/pkg/ai"
	"bomberbot/pkg/protocol"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bomberbot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 命令行参数，显式给出的会覆盖配置文件和环境变量
	configPath := flag.String("config", "", "YAML 配置文件路径")
	url := flag.String("url", "", "服务器地址")
	transport := flag.String("transport", "", "传输协议 ws|tcp|kcp")
	gameID := flag.String("game", "", "游戏 ID")
	teamID := flag.String("team", "", "队伍 ID")
	teamName := flag.String("team-name", "", "队伍名称")
	playerID := flag.String("player", "", "玩家 ID，为空时自动生成")
	playerName := flag.String("name", "", "玩家名称")
	preset := flag.String("preset", "", "策略预设 normal|aggressive")
	logLevel := flag.String("log-level", "", "日志级别 debug|info|warn|error")
	record := flag.String("record", "", "录制收到的消息到文件")
	noReconnect := flag.Bool("no-reconnect", false, "断线后不重连")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.Server.URL = *url
		case "transport":
			cfg.Server.Transport = *transport
		case "game":
			cfg.Game.GameID = *gameID
		case "team":
			cfg.Game.TeamID = *teamID
		case "team-name":
			cfg.Game.TeamName = *teamName
		case "player":
			cfg.Game.PlayerID = *playerID
		case "name":
			cfg.Game.PlayerName = *playerName
		case "preset":
			cfg.Bot.Preset = *preset
		case "log-level":
			cfg.Log.Level = *logLevel
		case "record":
			cfg.Bot.RecordPath = *record
		case "no-reconnect":
			cfg.Bot.Reconnect = !*noReconnect
		}
	})
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}

	log, err := logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer logger.Sync()

	policy, err := cfg.PolicyConfig()
	if err != nil {
		return err
	}
	agent := ai.NewAIControllerWithConfig(cfg.Game.PlayerID, &policy, log.Named("ai"))

	sessCfg := client.SessionConfig{
		Transport:   cfg.Server.Transport,
		URL:         cfg.Server.URL,
		DialTimeout: cfg.Server.DialTimeout,
		Join: protocol.JoinGame{
			GameID:     cfg.Game.GameID,
			PlayerID:   cfg.Game.PlayerID,
			Role:       cfg.Game.Role,
			PlayerName: cfg.Game.PlayerName,
			TeamID:     cfg.Game.TeamID,
			TeamName:   cfg.Game.TeamName,
		},
		JWTSecret:           cfg.Auth.JWTSecret,
		TokenTTL:            cfg.Auth.TokenTTL,
		MaxActionsPerSecond: cfg.Bot.MaxActionsPerSecond,
		ReconnectDelay:      cfg.Bot.ReconnectDelay,
	}
	if cfg.Bot.RecordPath != "" {
		rec, err := replay.CreateFile(cfg.Bot.RecordPath)
		if err != nil {
			return err
		}
		defer rec.Close()
		sessCfg.Recorder = rec
	}

	log.Infow("bomberbot 启动",
		"url", cfg.Server.URL,
		"transport", cfg.Server.Transport,
		"game", cfg.Game.GameID,
		"team", cfg.Game.TeamID,
		"player", cfg.Game.PlayerID,
		"preset", cfg.Bot.Preset,
	)

	// 等待中断信号
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := client.NewSession(sessCfg, agent, log.Named("session"))
	if cfg.Bot.Reconnect {
		err = session.RunWithReconnect(ctx)
	} else {
		err = session.Run(ctx)
	}
	log.Infow("bomberbot 已退出", "error", err)
	return err
}
