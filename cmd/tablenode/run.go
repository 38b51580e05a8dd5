package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/tablenode/internal/config"
	"github.com/vango-dev/tablenode/internal/demo"
	"github.com/vango-dev/tablenode/pkg/component"
	"github.com/vango-dev/tablenode/pkg/inspect"
	"github.com/vango-dev/tablenode/pkg/vdom"
	"github.com/vango-dev/tablenode/pkg/view"
)

const runStep = 10 * time.Millisecond

func runCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		rows   []int
		items  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play the delete scenario and print each render's ops",
		Long: `Load the table, tap DEL on the given rows, and let simulated time
run until every removal has finished. Each render's patch ops are printed.

Examples:
  tablenode run
  tablenode run --rows 1,3 --items 6
  tablenode run --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("items") {
				cfg.Demo.Items = items
			}
			return playScenario(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, rows, asJSON)
		},
	}

	cmd.Flags().IntSliceVarP(&rows, "rows", "r", []int{2}, "Rows to delete, in tap order")
	cmd.Flags().IntVarP(&items, "items", "n", 0, "Number of rows (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print batches as JSON lines")

	return cmd
}

// playScenario runs the screen on a manual clock so the output is the same on every run.
func playScenario(out, logOut io.Writer, cfg *config.Config, rows []int, asJSON bool) error {
	logger, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return err
	}
	clock := component.NewManualClock(time.Unix(0, 0))
	loop := component.NewLoop(component.WithClock(clock), component.WithLoopLogger(logger))
	defer loop.Close()

	renders := 0
	var printErr error
	screen := demo.NewScreen(loop, cfg,
		demo.WithLogger(logger),
		demo.WithRegistry(component.NewRegistry()),
		demo.WithObserver(func(info component.RenderInfo) {
			renders++
			if printErr == nil {
				printErr = printBatch(out, renders, info, asJSON)
			}
		}),
	)

	bounds := view.Size{Width: cfg.Demo.Width, Height: cfg.Demo.Height}
	if err := screen.Load(bounds); err != nil {
		return err
	}
	for _, idx := range rows {
		if !screen.Tap(idx) {
			return fmt.Errorf("row %d has no active DEL button", idx)
		}
		loop.Drain()
	}

	// Let every delay and fade run out.
	remaining := cfg.Demo.DeleteDelay.Std() + cfg.Demo.ExitDuration.Std() + runStep
	for remaining > 0 {
		clock.Advance(runStep)
		loop.Drain()
		remaining -= runStep
	}
	if printErr != nil {
		return printErr
	}

	if !asJSON {
		fmt.Fprintf(out, "items: %v\n", screen.State().Items)
		fmt.Fprintf(out, "pending exits: %d\n", screen.Component().Applier().PendingExits())
	}
	return screen.Component().Err()
}

func printBatch(out io.Writer, n int, info component.RenderInfo, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(out).Encode(inspect.NewBatch(info))
	}

	counts := vdom.CountOps(info.Ops)
	if _, err := fmt.Fprintf(out, "render %d: %d ops (insert %d, remove %d, move %d, update %d)\n",
		n, len(info.Ops),
		counts[vdom.OpInsert], counts[vdom.OpRemove], counts[vdom.OpMove], counts[vdom.OpUpdate]); err != nil {
		return err
	}
	if info.Err != nil {
		fmt.Fprintf(out, "  error: %v\n", info.Err)
	}
	// The initial mount is one insert per view; listing it adds nothing.
	if n == 1 {
		return nil
	}
	for _, op := range info.Ops {
		fmt.Fprintf(out, "  %s\n", op)
	}
	return nil
}
