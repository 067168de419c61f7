package main

import (
	"context"

	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	cli     struct {
		Generate GenerateCmd `cmd:"" help:"Print new access codes"`
		Import   ImportCmd   `cmd:"" help:"Load access codes from a file into Postgres"`
		Debug    bool        `help:"Enable debug logging."`
		Version  kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("codegen"),
		kong.Description("BETIQ VIP access-code tooling."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
