package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/Geek-master-100/ai-customer-reception/internal/commands/doctor"
	"github.com/Geek-master-100/ai-customer-reception/internal/printer"
)

type PruneCmd struct {
	flags  *Flags
	dryRun bool
}

// NewPruneCmd creates a new prune command
func NewPruneCmd(flags *Flags) *PruneCmd {
	return &PruneCmd{flags: flags}
}

// Register adds the prune command to the application
func (cmd *PruneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "prune",
		Usage:     "Delete browser profiles that no longer belong to a saved shop",
		UsageText: "reception prune [--dry-run]",
		Description: `Deletes the browser profile directories of sessions that are not saved.

These are left behind by accounts that never finished logging in and by
shops removed without --purge. Saved shops are not affected.`,
		Action: cmd.run,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "dry-run",
				Aliases:     []string{"n"},
				Usage:       "only list the profiles that would be deleted",
				Destination: &cmd.dryRun,
			},
		},
	})

	return app
}

func (cmd *PruneCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	check := doctor.NewProfileCheck(cmd.flags.Store, cmd.flags.Config.ProfilesPath(), !cmd.dryRun)
	result := check.Run(ctx)

	deleted, failed := 0, 0
	for _, item := range result.Items {
		switch {
		case item.Status == doctor.StatusFail:
			failed++
			p.Errorf("%s: %s", item.Label, item.Detail)
		case item.Fixable:
			p.Infof("would delete %s", item.Label)
			deleted++
		case item.Detail == doctor.DetailProfileDeleted:
			deleted++
		}
	}

	switch {
	case deleted == 0 && failed == 0:
		p.Infof("No orphaned profiles")
	case cmd.dryRun:
		p.Infof("%d profile(s) would be deleted", deleted)
	default:
		p.Successf("Deleted %d profile(s)", deleted)
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
