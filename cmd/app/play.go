package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	cfg "github.com/1F47E/go-framereel/pkg/config"
	"github.com/1F47E/go-framereel/pkg/core"
	"github.com/1F47E/go-framereel/pkg/core/progress"
	"github.com/1F47E/go-framereel/pkg/logger"
	"github.com/1F47E/go-framereel/pkg/meta"
	"github.com/1F47E/go-framereel/pkg/tui"
)

func configFromFlags(c *cli.Context) cfg.Config {
	conf := cfg.Default()
	conf.Path = c.Args().Get(0)
	conf.Synthetic = c.String("synthetic")
	conf.PoolCapacity = c.Int("pool")
	conf.PoolCeiling = c.Int("pool-ceiling")
	conf.TruncateInterval = c.Bool("truncate-interval")
	conf.OSTimer = c.Bool("os-timer")
	conf.Limit = c.Duration("limit")
	conf.SnapshotEvery = c.Int("snapshot-every")
	conf.SnapshotFormat = c.String("snapshot-format")
	conf.SnapshotsDir = c.String("snapshots-dir")
	conf.Headless = c.Bool("headless")
	return conf
}

func play(c *cli.Context) error {
	conf := configFromFlags(c)
	m, err := core.Metadata(conf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var summary core.Summary
	if conf.Headless {
		summary, err = playHeadless(ctx, conf, m)
	} else {
		summary, err = playTUI(ctx, conf, m)
	}
	printSummary(os.Stdout, summary)
	return err
}

func playHeadless(ctx context.Context, conf cfg.Config, m meta.Metadata) (core.Summary, error) {
	bar := progress.New(m.Frames(), os.Stderr)
	p, err := core.New(ctx, m, conf, bar)
	if err != nil {
		return core.Summary{}, err
	}
	err = p.Run(ctx)
	err = multierr.Combine(err, bar.Finish(), p.Close())
	fmt.Fprintln(os.Stderr)
	return p.Summary(), err
}

// playTUI runs playback and the terminal UI side by side. Whichever ends
// first takes the other one down.
func playTUI(ctx context.Context, conf cfg.Config, m meta.Metadata) (core.Summary, error) {
	f, err := openLog(cfg.PathTUILog)
	if err != nil {
		return core.Summary{}, err
	}
	defer f.Close()
	logger.SetOutput(f)
	defer logger.SetOutput(os.Stderr)

	g, gctx := errgroup.WithContext(ctx)
	playCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	ui := tui.New(playCtx, m)
	p, err := core.New(playCtx, m, conf, ui)
	if err != nil {
		return core.Summary{}, err
	}
	if conf.SnapshotEvery > 0 {
		ui.Text(fmt.Sprintf("saving every %d frames to %s", conf.SnapshotEvery, conf.SnapshotsDir))
	}

	g.Go(func() error {
		defer cancel()
		return ui.Run()
	})
	g.Go(func() error {
		defer cancel()
		return p.Run(playCtx)
	})
	err = g.Wait()
	err = multierr.Append(err, p.Close())
	return p.Summary(), err
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func printSummary(w io.Writer, s core.Summary) {
	if s.Frames == 0 {
		return
	}
	rate := color.New(color.FgRed)
	if s.Last.OnTarget() {
		rate = color.New(color.FgGreen)
	}
	fmt.Fprintf(w, "played %d frames, last window %s, %d ticks dropped",
		s.Frames, rate.Sprint(core.NewIndicator(s.Last).Text), s.Clock.Dropped)
	if s.Snapshots > 0 {
		fmt.Fprintf(w, ", %d snapshots saved", s.Snapshots)
	}
	fmt.Fprintln(w)
}
