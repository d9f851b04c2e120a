package command

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/farhapartex/stream-search/internal/logging"
)

// NewApp builds the CLI application with the global flags.
func NewApp(name string, version string, usage string, commands ...*cli.Command) *cli.App {
	app := &cli.App{
		Name:     name,
		Usage:    usage,
		Commands: commands,
		Version:  version,
		Before: func(ctx *cli.Context) error {
			logging.Init(logging.Config{
				Level:  ctx.String("log-level"),
				Format: ctx.String("log-format"),
				Output: ctx.App.ErrWriter,
			})
			return nil
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				EnvVars: []string{"STREAMSEARCH_DEBUG"},
				Usage:   "Print errors with their stack trace",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Usage:   "Set logging level",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "log-format",
				EnvVars: []string{"LOG_FORMAT"},
				Usage:   "Set logging format (json, console)",
				Value:   "console",
			},
		},
	}

	app.ExitErrHandler = func(ctx *cli.Context, err error) {
		if err == nil {
			return
		}

		l := logging.L()
		if !ctx.Bool("debug") {
			l.Error().Msg(err.Error())
		} else {
			l.Error().Msg(fmt.Sprintf("%+v", err))
		}
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	return app
}

// Main runs the CLI and exits non-zero on failure.
func Main(name string, version string, usage string, commands ...*cli.Command) {
	app := NewApp(name, version, usage, commands...)

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
