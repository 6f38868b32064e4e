package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/1F47E/go-framereel/internal/video"
	cfg "github.com/1F47E/go-framereel/pkg/config"
	"github.com/1F47E/go-framereel/pkg/meta"
)

func sampleFromFlags(c *cli.Context) (video.Sample, error) {
	size, err := meta.ParseSize(c.String("size"))
	if err != nil {
		return video.Sample{}, err
	}
	path := c.Args().Get(0)
	if path == "" {
		path = cfg.PathSample
	}
	return video.Sample{
		Path:    path,
		Width:   size.Width,
		Height:  size.Height,
		Rate:    c.Int("rate"),
		Seconds: c.Int("seconds"),
	}, nil
}

func sample(c *cli.Context) error {
	s, err := sampleFromFlags(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := video.Generate(ctx, s); err != nil {
		return err
	}
	log.Infof("sample saved to %s", s.Path)
	return nil
}
