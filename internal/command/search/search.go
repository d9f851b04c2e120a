package search

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/farhapartex/stream-search/internal/config"
	"github.com/farhapartex/stream-search/internal/handlers"
	"github.com/farhapartex/stream-search/internal/view"
)

const prompt = "[n]ext [p]revious [g]o N [q]uit > "

func Search() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search live streams matching QUERY",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"t"},
				EnvVars: []string{"TWITCH_CLIENT_ID"},
				Usage:   "Twitch client id",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Results per page (0 uses the configured default)",
			},
			&cli.IntFlag{
				Name:    "offset",
				Aliases: []string{"o"},
				Usage:   "Index of the first result",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Read navigation commands from stdin",
			},
		},
		Action: func(cliCtx *cli.Context) error {
			query := strings.TrimSpace(strings.Join(cliCtx.Args().Slice(), " "))
			if query == "" {
				return errors.New("a search query is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load configuration")
			}

			searchHandler, err := handlers.NewSearchHandler(cfg)
			if err != nil {
				return errors.Wrap(err, "failed to create search handler")
			}

			params, err := searchHandler.Params(handlers.SearchRequest{
				Query:  query,
				Token:  cliCtx.String("token"),
				Offset: cliCtx.Int("offset"),
				Limit:  cliCtx.Int("limit"),
			})
			if err != nil {
				return errors.WithStack(err)
			}

			ctx := cliCtx.Context
			out := cliCtx.App.Writer

			nav := view.NewNavigator(searchHandler)
			page, err := nav.Search(ctx, params)
			if err != nil {
				return errors.Wrapf(err, "search for %q failed", query)
			}
			if err := view.RenderText(out, page); err != nil {
				return errors.WithStack(err)
			}

			if !cliCtx.Bool("interactive") {
				return nil
			}

			return interact(ctx, nav, cliCtx.App.Reader, out)
		},
	}
}

// interact reads one navigation command per line until q or EOF. Failed
// navigations are reported and the current page is kept.
func interact(ctx context.Context, nav *view.Navigator, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return errors.WithStack(scanner.Err())
		}

		cmd := strings.Fields(scanner.Text())
		if len(cmd) == 0 {
			continue
		}

		var err error
		switch cmd[0] {
		case "n", "next":
			_, err = nav.Next(ctx)
		case "p", "prev", "previous":
			_, err = nav.Previous(ctx)
		case "g", "go":
			if len(cmd) != 2 {
				fmt.Fprintln(out, "usage: g N")
				continue
			}
			n, convErr := strconv.Atoi(cmd[1])
			if convErr != nil {
				fmt.Fprintf(out, "invalid page number %q\n", cmd[1])
				continue
			}
			_, err = nav.GoTo(ctx, n)
		case "q", "quit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q\n", cmd[0])
			continue
		}

		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		fmt.Fprintln(out)
		if err := view.RenderText(out, nav.Current()); err != nil {
			return errors.WithStack(err)
		}
	}
}
