// Command somnsd runs an actor runtime shell with the message
// debugger enabled: a demo interpreter, the WebSocket debugger front
// end, and hot-reloaded breakpoint configuration.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lerencao/SOMns/actors"
	"github.com/lerencao/SOMns/config"
	"github.com/lerencao/SOMns/debugger"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "somnsd",
	Short: "Actor runtime shell with message-level debugging",
	Long: `somnsd starts the actor execution core with the debugging layer
attached: every actor runs behind a pause/step state machine, and a
WebSocket front end accepts debugger commands and streams events.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "configuration file (yaml or json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// echoInterpreter is a stand-in for the language interpreter: it
// answers every selector with its own arguments.
type echoInterpreter struct{}

func (echoInterpreter) Invoke(receiver actors.Value, selector string, args []actors.Value) (actors.Value, error) {
	log.Printf("turn: %v>>%s %v", receiver, selector, args)
	return args, nil
}

func run(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader()

	cfg, err := loader.Load(configFile)
	if err != nil {
		return err
	}
	log.SetPrefix(cfg.Log.Prefix)

	system := actors.NewSystem(actors.SystemOptions{
		PoolWorkers:     cfg.Actor.PoolWorkers,
		MailboxCapacity: cfg.Actor.MailboxCapacity,
	})
	session := debugger.NewSession()
	session.ApplyBreakpoints(sessionBreakpoints(cfg))

	base, err := system.NewActor("main", echoInterpreter{})
	if err != nil {
		return err
	}
	mainActor := session.Attach(base)
	mainActor.Start()

	var frontend *debugger.Frontend
	if cfg.Debugger.Enabled {
		frontend = debugger.NewFrontend(session, cfg.DebuggerAddr())
		if err := frontend.Start(); err != nil {
			return fmt.Errorf("failed to start debugger frontend: %w", err)
		}
		log.Printf("debugger frontend listening on ws://%s/debugger", cfg.DebuggerAddr())
	}

	// Hot-reload: breakpoint changes in the config file reach the live
	// session without a restart.
	if configFile != "" {
		watcher, err := config.NewWatcher(configFile, loader)
		if err != nil {
			return err
		}
		watcher.OnConfigChange(func(oldConfig, newConfig *config.Config) {
			session.ApplyBreakpoints(sessionBreakpoints(newConfig))
		})
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	log.Printf("%s %s started, actor %d attached", cfg.App.Name, cfg.App.Version, mainActor.ID())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Actor.ShutdownTimeout)
	defer cancel()
	if frontend != nil {
		if err := frontend.Shutdown(ctx); err != nil {
			log.Printf("frontend shutdown: %v", err)
		}
	}
	return system.Shutdown(ctx)
}

// sessionBreakpoints converts configured breakpoint specs to their
// session form.
func sessionBreakpoints(cfg *config.Config) []debugger.SessionBreakpoint {
	bps := make([]debugger.SessionBreakpoint, 0, len(cfg.Debugger.Breakpoints))
	for _, spec := range cfg.Debugger.Breakpoints {
		bps = append(bps, debugger.SessionBreakpoint{
			Location: debugger.LocationSpec{
				Origin:    spec.Origin,
				Line:      spec.Line,
				Column:    spec.Column,
				CharIndex: spec.CharIndex,
			}.Location(),
			Side:    debugger.ParseSide(spec.Side),
			Enabled: !spec.Disabled,
		})
	}
	return bps
}
