package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/config"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
	pg "github.com/octaveluka/BETIQ-AI-sub000/internal/infra/db/postgres"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/infra/logging"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/usecase"
)

type Globals struct {
	Debug   bool
	Version string
}

func (g *Globals) logger() *zerolog.Logger {
	level := "info"
	if g.Debug {
		level = "debug"
	}
	return logging.NewWithWriter(os.Stderr, config.LogConfig{Level: level, Format: "console"}, false)
}

type GenerateCmd struct {
	Count  int    `help:"Number of codes" default:"10"`
	Prefix string `help:"Code prefix" default:"BETIQ"`
	Output string `help:"Write to this file instead of stdout" type:"path"`

	out io.Writer `kong:"-"`
}

func (c *GenerateCmd) Run(ctx context.Context, g *Globals) error {
	if c.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", c.Count)
	}
	codes, err := usecase.GenerateAccessCodes(c.Prefix, c.Count)
	if err != nil {
		return err
	}

	w := c.out
	if w == nil {
		w = os.Stdout
	}
	if c.Output != "" {
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	for _, code := range codes {
		if _, err := fmt.Fprintln(w, code); err != nil {
			return err
		}
	}
	g.logger().Debug().Int("count", len(codes)).Msg("codes generated")
	return nil
}

type ImportCmd struct {
	File        string `help:"One code per line; '#' starts a comment" required:"" type:"existingfile"`
	DatabaseURL string `help:"Postgres connection string" required:"" env:"DATABASE_URL"`
	Migrate     bool   `help:"Apply schema migrations first" default:"true" negatable:""`
}

func (c *ImportCmd) Run(ctx context.Context, g *Globals) error {
	log := g.logger()

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	codes, err := usecase.ParseCodeList(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	pool, err := pg.NewPgxPool(ctx, config.DatabaseConfig{URL: c.DatabaseURL})
	if err != nil {
		return err
	}
	defer pool.Close()

	if c.Migrate {
		if err := pg.Migrate(ctx, pool, log); err != nil {
			return err
		}
	}

	repo := pg.NewAccessCodeRepo(pool)
	var inserted int
	err = pg.NewTxManager(pool).WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		n, err := repo.SaveCodes(ctx, tx, codes)
		inserted = n
		return err
	})
	if err != nil {
		return fmt.Errorf("save codes: %w", err)
	}
	log.Info().Int("read", len(codes)).Int("inserted", inserted).Msg("access codes imported")
	return nil
}
