package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/tidecraft/simcore/ecs"
	"github.com/tidecraft/simcore/internal/config"
	"github.com/tidecraft/simcore/internal/sim"
	"github.com/tidecraft/simcore/jobs"
	"github.com/tidecraft/simcore/mem"
	"github.com/tidecraft/simcore/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  -- %s %s\n", title, strings.Repeat("-", lineLen))
}

func printStat(label string, value string) {
	dotsLen := 42 - len(label) - len(value)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s %s %s\n", label, strings.Repeat(".", dotsLen), value)
}

func run() error {
	cfgPath := flag.String("config", "config.toml", "engine config file")
	seed := flag.Int64("seed", 1, "spawn RNG seed")
	prof := flag.Bool("profile", false, "write a CPU profile to the working directory")
	flag.Parse()

	if p := os.Getenv("FLOCK_CONFIG"); p != "" && *cfgPath == "config.toml" {
		*cfgPath = p
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if *prof {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	scenario, err := sim.LoadScenario(cfg.Simulation.Scenario)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	printSection("engine")

	pool := jobs.NewPool(cfg.Jobs.Workers, log)
	defer pool.Stop()
	printStat("workers", fmt.Sprintf("%d", pool.Size()))

	tlsfBuf := make([]byte, cfg.Memory.TlsfBufferKiB*1024)
	tlsf, err := mem.NewTlsf(tlsfBuf, cfg.Memory.TlsfSplitShift)
	if err != nil {
		return fmt.Errorf("tlsf: %w", err)
	}
	printStat("tlsf buffer", fmt.Sprintf("%d KiB", cfg.Memory.TlsfBufferKiB))

	scratch := mem.NewArena(cfg.Memory.ArenaBlock)

	registry := ecs.NewRegistry()
	// Back the hottest pool with the TLSF buffer before first use.
	ecs.RegisterPool(registry, mem.NewTlsfGrower[sim.Position](tlsf))

	state := sim.NewState(registry, pool, scratch,
		cfg.Simulation.WorldWidth, cfg.Simulation.WorldHeight)

	rng := rand.New(rand.NewSource(*seed))
	runner := system.NewRunner()
	runner.Register(sim.NewSpawnSystem(state, scenario, rng))
	runner.Register(sim.NewEventDispatchSystem(state))
	runner.Register(sim.NewSteerSystem(state))
	runner.Register(sim.NewIntegrateSystem(state))
	runner.Register(sim.NewBounceSystem(state))
	runner.Register(sim.NewLifetimeSystem(state))
	runner.Register(sim.NewCleanupSystem(state))

	printStat("emitters", fmt.Sprintf("%d", len(scenario.Emitters)))
	printStat("particles", fmt.Sprintf("%d", scenario.Total()))
	printStat("steps", fmt.Sprintf("%d", cfg.Simulation.Steps))
	fmt.Println()

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, syscall.SIGINT, syscall.SIGTERM)

	printSection("run")
	start := time.Now()
	steps := 0
	interrupted := false
	for steps < cfg.Simulation.Steps && !interrupted {
		select {
		case <-sigC:
			log.Info("interrupted", zap.Int("steps", steps))
			interrupted = true
		default:
			runner.Step(cfg.Simulation.StepTime)
			steps++
		}
	}
	elapsed := time.Since(start)

	printStat("elapsed", elapsed.Round(time.Millisecond).String())
	if steps > 0 {
		printStat("per step", (elapsed / time.Duration(steps)).Round(time.Microsecond).String())
	}
	printStat("grouped", fmt.Sprintf("%d", state.Moving.Size()))
	printStat("entities", fmt.Sprintf("%d", registry.Size()))

	log.Info("simulation finished",
		zap.Int("steps", steps),
		zap.Int("entities", registry.Size()),
		zap.Duration("elapsed", elapsed),
	)
	return nil
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
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
