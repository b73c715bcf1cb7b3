package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/witherbar/server/internal/bossbar"
	"github.com/witherbar/server/internal/config"
	"github.com/witherbar/server/internal/core/event"
	coresys "github.com/witherbar/server/internal/core/system"
	"github.com/witherbar/server/internal/data"
	"github.com/witherbar/server/internal/handler"
	gonet "github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
	"github.com/witherbar/server/internal/scripting"
	"github.com/witherbar/server/internal/system"
	"github.com/witherbar/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[35;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[35;1m  │\033[0m             witherbar  v0.1.0             \033[35;1m│\033[0m")
	fmt.Println("\033[35;1m  │\033[0m       boss bars for Minecraft 1.8.x       \033[35;1m│\033[0m")
	fmt.Println("\033[35;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := max(46-utf8.RuneCountInString(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-utf8.RuneCountInString(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("BOSSBAR_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Core state: tick runner, event bus, world, bar service
	runner := coresys.NewRunner()
	bus := event.NewBus()
	worldState := world.NewState()
	bars := bossbar.NewService(cfg.BossBar, worldState, runner, log)
	bars.Subscribe(bus)

	// 4. Data and scripts
	printSection("data")

	var rotation *data.RotationTable
	if cfg.Rotation.Enabled {
		rotation, err = data.LoadRotation(cfg.Rotation.File)
		if err != nil {
			return fmt.Errorf("load rotation: %w", err)
		}
		printStat("rotation entries", rotation.Count())
	}

	var luaEngine *scripting.Engine
	if cfg.Scripting.Enabled {
		luaEngine, err = scripting.NewEngine(cfg.Scripting.Dir, system.NewScriptBars(worldState, bars), log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()
		printOK("lua scripts loaded")
	}
	fmt.Println()

	// 5. Create packet handler registry and register handlers
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Config: cfg,
		Log:    log,
		World:  worldState,
		Bars:   bars,
		Bus:    bus,
		Ticks:  runner,
	}
	handler.RegisterAll(pktReg, deps)

	// 6. Create network server
	pktPerSec := 0
	if cfg.RateLimit.Enabled {
		pktPerSec = cfg.RateLimit.PacketsPerSecond
	}
	netServer, err := gonet.NewServer(cfg.Network, pktPerSec, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 7. Create systems and register with runner
	store := gonet.NewSessionStore()
	runner.Register(system.NewInputSystem(netServer, pktReg, store, cfg.Network.MaxPacketsPerTick, worldState, bus, log))
	runner.Register(system.NewEventDispatchSystem(bus))
	if luaEngine != nil {
		runner.Register(system.NewScriptSystem(luaEngine, runner, bus))
	}
	if rotation != nil {
		runner.Register(system.NewRotationSystem(worldState, bars, rotation, runner, cfg.Rotation.UpdateInterval, log))
	}
	runner.Register(bossbar.NewSweepSystem(bars, cfg.BossBar.SweepInterval))
	runner.Register(system.NewKeepAliveSystem(worldState, runner, cfg.Network, log))
	runner.Register(system.NewOutputSystem(store))

	// 8. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			kickAll(worldState, store)
			netServer.Shutdown()
			log.Info("server stopped", zap.Int("bars", bars.Count()))
			return nil
		}
	}
}

// kickAll tells every player the server is going away and waits up to a
// second for the writers to deliver it.
func kickAll(ws *world.State, store *gonet.SessionStore) {
	bye := packet.BuildDisconnect(packet.ChatMessage{Text: "Server closed"})
	ws.AllPlayers(func(p *world.PlayerInfo) {
		p.Send(bye)
	})
	store.ForEach(func(sess *gonet.Session) {
		sess.CloseAfterFlush()
	})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		open := 0
		store.ForEach(func(sess *gonet.Session) {
			if !sess.IsClosed() {
				open++
			}
		})
		if open == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
