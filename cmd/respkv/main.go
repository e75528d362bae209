/*
Command respkv starts the RESP key/value server: it reads config,
restores the last snapshot unless running memory-only, opens a TCP
listener, and runs until interrupted.
*/
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kvforge/respkv/internal/command"
	"github.com/kvforge/respkv/internal/config"
	"github.com/kvforge/respkv/internal/dispatch"
	"github.com/kvforge/respkv/internal/logging"
	"github.com/kvforge/respkv/internal/script"
	"github.com/kvforge/respkv/internal/server"
	"github.com/kvforge/respkv/internal/snapshot"
	"github.com/kvforge/respkv/internal/store"
	"github.com/spf13/cobra"
)

const banner = `
 _ __ ___  ___ _ __  | | ____   __
| '__/ _ \/ __| '_ \ | |/ /\ \ / /
| | |  __/\__ \ |_) ||   <  \ V /
|_|  \___||___/ .__(_)_|\_\  \_/
              |_|
`

var (
	flagConfig          string
	flagDataDir         string
	flagPort            int
	flagDatabases       int
	flagMemoryOnly      bool
	flagOpsUntilSave    int
	flagDontShowGraphic bool
	flagScriptsDir      string
)

func main() {
	root := &cobra.Command{
		Use:   "respkv",
		Short: "respkv is an in-memory, multi-datatype key/value server speaking RESP",
		RunE:  run,
	}
	root.Flags().StringVar(&flagConfig, "config", "", "path to a redis.conf-style config file")
	root.Flags().StringVar(&flagDataDir, "data-dir", "", "override the config's data directory")
	root.Flags().IntVar(&flagPort, "port", 0, "override the config's listen port")
	root.Flags().IntVar(&flagDatabases, "databases", 0, "override the config's database count")
	root.Flags().BoolVar(&flagMemoryOnly, "memory-only", false, "disable the periodic snapshot task")
	root.Flags().IntVar(&flagOpsUntilSave, "ops-until-save", 0, "override the config's ops-until-save threshold")
	root.Flags().BoolVar(&flagDontShowGraphic, "dont-show-graphic", false, "suppress the startup banner")
	root.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "enable embedded scripting (the directory is logged; its contents are not loaded)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("respkv: %w", err)
	}
	applyFlagOverrides(cfg)

	if !flagDontShowGraphic {
		fmt.Println(banner)
	}

	log := logging.New(logging.Options{})
	defer log.Sync()

	st := store.NewStateStore(cfg.Databases)
	if !cfg.MemoryOnly {
		snap, found, err := snapshot.Load(cfg.DumpPath())
		if err != nil {
			return fmt.Errorf("respkv: restoring snapshot: %w", err)
		}
		if found {
			st.Import(snap)
			log.Info("respkv: restored snapshot from %s", cfg.DumpPath())
		}
	}

	var scripts dispatch.Scripter
	if cfg.ScriptsDir != "" {
		bridge := script.NewBridge(newExecutor(st))
		scripts = bridge
		log.Info("respkv: scripting enabled, scripts-dir=%s", cfg.ScriptsDir)
	}

	srv := server.New(st, scripts, log)

	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("respkv: listening on %s: %w", addr, err)
	}
	log.Info("respkv: listening on %s", addr)

	ctx, cancelSnapshot := context.WithCancel(context.Background())
	if !cfg.MemoryOnly {
		task := &snapshot.Task{
			Path:     cfg.DumpPath(),
			Interval: time.Duration(cfg.SnapshotSecs) * time.Second,
			Store:    st,
			Log:      log,
		}
		go task.Run(ctx)
	}

	go srv.Serve(ln)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Warn("respkv: shutting down")
	ln.Close()
	srv.Shutdown()
	cancelSnapshot()

	if !cfg.MemoryOnly {
		task := &snapshot.Task{Path: cfg.DumpPath(), Store: st, Log: log}
		if err := task.Save(); err != nil {
			log.Error("respkv: final snapshot save failed: %v", err)
		} else {
			log.Info("respkv: final snapshot saved to %s", cfg.DumpPath())
		}
	}
	log.Warn("respkv: goodbye")
	return nil
}

func applyFlagOverrides(cfg *config.Config) {
	if flagDataDir != "" {
		cfg.Dir = flagDataDir
	}
	if flagPort != 0 {
		cfg.Port = flagPort
	}
	if flagDatabases != 0 {
		cfg.Databases = flagDatabases
	}
	if flagMemoryOnly {
		cfg.MemoryOnly = true
	}
	if flagOpsUntilSave != 0 {
		cfg.OpsUntilSave = flagOpsUntilSave
	}
	if flagScriptsDir != "" {
		cfg.ScriptsDir = flagScriptsDir
	}
}

// newExecutor adapts a StateStore into a script.Executor that runs
// re-entrant redis_call invocations against database 0, the same
// database every script bridge operates against since scripts are
// not tied to a connection's SELECTed index.
func newExecutor(st *store.StateStore) script.Executor {
	dbCtx := &dispatch.Context{
		Ctx:   context.Background(),
		Store: st,
	}
	dbCtx.DB, _ = st.DB(0)
	return func(cmd command.Command) store.ReturnValue {
		return dispatch.Dispatch(dbCtx, cmd)
	}
}
