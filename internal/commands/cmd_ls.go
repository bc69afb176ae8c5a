package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/config"
	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
	"github.com/Geek-master-100/ai-customer-reception/internal/printer"
)

type LsCmd struct {
	flags    *Flags
	platform string
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "ls",
		Usage:       "List saved shops",
		UsageText:   "reception ls [--platform <id>]",
		Description: "Displays a table of the saved shops of every configured platform.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "platform",
				Aliases:     []string{"p"},
				Usage:       "only list shops of this platform",
				Destination: &cmd.platform,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	platforms := cmd.flags.Config.Platforms
	if cmd.platform != "" {
		pl, ok := cmd.flags.Config.Platform(cmd.platform)
		if !ok {
			return fmt.Errorf("unknown platform %q", cmd.platform)
		}
		platforms = []config.Platform{pl}
	}

	type row struct {
		platform string
		rec      shop.Record
	}

	var rows []row
	for _, pl := range platforms {
		for _, r := range cmd.flags.Store.GetShops(pl.ID) {
			rows = append(rows, row{platform: pl.ID, rec: r})
		}
	}

	if len(rows) == 0 {
		p.Infof("No shops saved")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PLATFORM\tNAME\tMALL\tUSER ID\tSESSION")

	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.platform, r.rec.DisplayName(), r.rec.MallName, r.rec.UserID, r.rec.SessionID)
	}

	return w.Flush()
}
