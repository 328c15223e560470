package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"bomberbot/internal/logger"
	"bomberbot/internal/replay"
	"bomberbot/pkg/ai"
	"bomberbot/pkg/core"
	"bomberbot/pkg/protocol"
)

func main() {
	file := flag.String("file", "", "录制文件")
	playerID := flag.String("player", "", "回放时控制的玩家 ID")
	preset := flag.String("preset", "normal", "策略预设 normal|aggressive")
	logLevel := flag.String("log-level", "warn", "日志级别")
	flag.Parse()

	if *file == "" || *playerID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*file, *playerID, *preset, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

func run(path, playerID, preset, logLevel string) error {
	log, err := logger.Init(logger.Options{Level: logLevel})
	if err != nil {
		return err
	}
	defer logger.Sync()

	policy, ok := ai.ConfigByName(preset)
	if !ok {
		return fmt.Errorf("未知策略预设: %q", preset)
	}
	agent := ai.NewAIControllerWithConfig(playerID, &policy, log)

	r, err := replay.OpenFile(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var frames, decisions int
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		frames++

		msg, err := protocol.DecodeServerMessage(f.Data)
		if err != nil {
			log.Warnw("跳过无法解析的帧", "frame", frames, "error", err)
			continue
		}
		ev, ok := msg.Event()
		if !ok {
			continue
		}
		// 录像里的时间戳驱动预测炸弹的过期
		agent.World().SetClock(f.Time)
		d, ok := agent.Process(ev)
		if !ok {
			continue
		}
		decisions++
		fmt.Printf("%6d %s %-20s %-8s %s\n", frames, f.Time().Format("15:04:05.000"), msg.Type, agent.LastRule, describe(d))
	}

	fmt.Printf("frames=%d decisions=%d\n", frames, decisions)
	return nil
}

func describe(d core.Decision) string {
	if d.Kind == core.DecisionGhost {
		return fmt.Sprintf("ghost -> (%d,%d)", d.Target.GridX, d.Target.GridY)
	}
	return "control " + string(d.Action)
}
