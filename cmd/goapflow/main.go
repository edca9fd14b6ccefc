package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/goapflow/agent"
	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/config"
	"github.com/BaSui01/goapflow/goap"
	"github.com/BaSui01/goapflow/internal/metrics"
	"github.com/BaSui01/goapflow/internal/server"
	"github.com/BaSui01/goapflow/internal/telemetry"
	"github.com/BaSui01/goapflow/types"
	"github.com/BaSui01/goapflow/workflow"
)

// Injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runPipeline(os.Args[2:], true)
	case "plan":
		runPipeline(os.Args[2:], false)
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runPipeline(args []string, execute bool) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	metricsAddr := fs.String("metrics-addr", "", "Serve /metrics and /healthz on this address (empty disables)")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Log.BuildLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting goapflow",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector("goapflow", registry, logger)

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})
		srvCfg := server.DefaultConfig()
		srvCfg.Addr = *metricsAddr
		mgr := server.NewManager(mux, srvCfg, logger)
		if err := mgr.Start(); err != nil {
			logger.Error("failed to start metrics server", zap.Error(err))
		} else {
			defer mgr.Shutdown(context.Background())
		}
	}

	dict := blackboard.NewDataDictionary()
	blackboard.RegisterType[*article](dict)

	system, err := buildPipeline(logger)
	if err != nil {
		logger.Fatal("failed to assemble pipeline", zap.Error(err))
	}

	bb := blackboard.New(logger)
	planner := goap.NewPlanner(
		goap.NewBlackboardDeterminer(bb, dict, system, logger),
		goap.WithMaxPlanDepth(cfg.Planner.MaxPlanDepth),
	)

	if !execute {
		printPlans(planner, system)
		return
	}

	process := agent.NewProcess(system, planner, bb, agent.ProcessOptions{
		Logger:     logger,
		Metrics:    collector,
		Dictionary: dict,
		Budget: agent.Budget{
			MaxActions: cfg.Process.MaxActions,
			MaxCost:    cfg.Process.MaxCost,
		},
		ActionsPerSecond: cfg.Process.ActionsPerSecond,
		ActionTimeout:    cfg.Process.ActionTimeout,
	})

	status, err := process.Run(context.Background())
	if err != nil {
		logger.Error("pipeline run failed", zap.Error(err), zap.Stringer("status", status))
		os.Exit(1)
	}
	logger.Info("pipeline finished",
		zap.Stringer("status", status),
		zap.Strings("history", process.History()),
		zap.Float64("cost_spent", process.Stats().CostSpent),
	)

	saveSnapshot(cfg.Snapshot, process, logger)

	if result, ok := process.LastResult().(*article); ok {
		fmt.Printf("published %q after %d actions\n", result.Title, process.Stats().ActionsRun)
	}
}

func printPlans(planner *goap.Planner, system *goap.System) {
	ws := planner.WorldState(system)
	plans := planner.PlansToGoals(system)
	if len(plans) == 0 {
		fmt.Println("no plan reaches any goal from the current state")
		return
	}
	for _, plan := range plans {
		fmt.Printf("%-50s cost=%.2f net=%.2f\n", plan, plan.Cost(), plan.NetValue(ws))
	}
}

// article is the demo pipeline's work product.
type article struct {
	Title    string
	Body     string
	Revision int
}

// buildPipeline assembles the demo system: gather sources, outline,
// draft through a bounded revise loop, publish.
func buildPipeline(logger *zap.Logger) (*goap.System, error) {
	gather := goap.NewAction("gather_sources",
		goap.EffectSpec{},
		goap.EffectSpec{"hasSources": types.True},
		goap.WithCost(0.2),
		goap.WithRun(func(_ context.Context, _ *blackboard.Blackboard) error {
			logger.Info("gathering sources")
			return nil
		}),
	)
	outline := goap.NewAction("outline",
		goap.EffectSpec{"hasSources": types.True},
		goap.EffectSpec{"hasOutline": types.True},
		goap.WithCost(0.1),
		goap.WithRun(func(_ context.Context, _ *blackboard.Blackboard) error {
			logger.Info("outlining")
			return nil
		}),
	)

	reviseLoop, err := workflow.Returning[*article]().
		Repeating(func(_ context.Context, h *workflow.ResultHistory[*article]) (*article, error) {
			revision := h.AttemptCount() + 1
			logger.Info("drafting", zap.Int("revision", revision))
			return &article{
				Title:    "Planning under uncertainty",
				Body:     fmt.Sprintf("revision %d of the draft", revision),
				Revision: revision,
			}, nil
		}).
		WithEvaluator(func(_ context.Context, h *workflow.ResultHistory[*article]) (workflow.Feedback, error) {
			// Each revision improves; the third one passes review.
			score := float64(h.AttemptCount()) * 0.3
			return workflow.Feedback{Score: score, Text: "needs tightening"}, nil
		}).
		WithScoreThreshold(0.8).
		WithMaxIterations(3).
		WithLogger(logger).
		Build()
	if err != nil {
		return nil, err
	}
	draft := reviseLoop.AsAction("draft",
		goap.EffectSpec{"hasOutline": types.True},
		goap.EffectSpec{"it:article": types.True},
		agent.ProcessOptions{Logger: logger},
	)

	publish := goap.NewAction("publish",
		goap.EffectSpec{"it:article": types.True},
		goap.EffectSpec{"published": types.True},
		goap.WithCost(0.1),
		goap.WithRun(func(_ context.Context, bb *blackboard.Blackboard) error {
			result, ok := blackboard.LastOf[*article](bb)
			if !ok {
				return types.NewError(types.ErrActionFailed, "no article to publish")
			}
			logger.Info("publishing", zap.String("title", result.Title), zap.Int("revision", result.Revision))
			return nil
		}),
	)

	delivered := goap.NewGoal("delivered", goap.EffectSpec{
		"it:article": types.True,
		"published":  types.True,
	})

	return goap.NewSystem(
		[]*goap.Action{gather, outline, draft, publish},
		[]*goap.Goal{delivered},
		nil,
	)
}

func saveSnapshot(cfg config.SnapshotConfig, p *agent.Process, logger *zap.Logger) {
	store, err := buildSnapshotStore(cfg, logger)
	if err != nil {
		logger.Warn("snapshot store unavailable", zap.Error(err))
		return
	}
	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snapshot, err := agent.NewSnapshotManager(store, logger).Capture(ctx, p)
	if err != nil {
		logger.Warn("snapshot capture failed", zap.Error(err))
		return
	}
	logger.Info("snapshot captured",
		zap.String("snapshot_id", snapshot.ID),
		zap.String("store", cfg.Store),
	)
}

// buildSnapshotStore maps the configured backend to a store. The memory
// backend is useless across process restarts, so it is treated as
// "snapshots disabled" here.
func buildSnapshotStore(cfg config.SnapshotConfig, logger *zap.Logger) (agent.SnapshotStore, error) {
	switch cfg.Store {
	case "", "memory":
		return nil, nil
	case "file":
		return agent.NewFileSnapshotStore(cfg.Dir, logger)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return agent.NewRedisSnapshotStore(client, cfg.Redis.Prefix, cfg.Redis.TTL, logger), nil
	default:
		return nil, types.NewErrorf(types.ErrConfigInvalid, "unknown snapshot store %q", cfg.Store)
	}
}

func printVersion() {
	fmt.Printf("goapflow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`goapflow - goal-oriented action planning core

Usage:
  goapflow <command> [options]

Commands:
  run       Run the demo pipeline end to end
  plan      Print the plans for the demo pipeline without executing
  version   Show version information
  help      Show this help message

Options for 'run' and 'plan':
  --config <path>        Path to configuration file (YAML)
  --metrics-addr <addr>  Serve /metrics and /healthz on this address

Examples:
  goapflow run
  goapflow run --config /etc/goapflow/config.yaml --metrics-addr :9090
  goapflow plan`)
}
