package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
	"github.com/Geek-master-100/ai-customer-reception/internal/core/validate"
	"github.com/Geek-master-100/ai-customer-reception/internal/integration/browser"
	"github.com/Geek-master-100/ai-customer-reception/internal/printer"
	"github.com/Geek-master-100/ai-customer-reception/internal/styles"
)

type RmCmd struct {
	flags *Flags
	yes   bool
	purge bool
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags) *RmCmd {
	return &RmCmd{flags: flags}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Forget a saved shop",
		UsageText: "reception rm <platform> <session-id> [--yes] [--purge]",
		Description: `Removes a shop from the saved list.

The browser profile of the session is kept unless --purge is given, so
re-opening the session later still finds the login. Run 'reception doctor
--fix' to clean up profiles that no longer belong to a saved shop.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "purge",
				Usage:       "also delete the browser profile of the session",
				Destination: &cmd.purge,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 2 {
		return errors.New("expected <platform> <session-id>")
	}
	platform, sessionID := c.Args().Get(0), c.Args().Get(1)

	if err := validate.PlatformID(platform); err != nil {
		return err
	}
	if err := validate.SessionID(sessionID); err != nil {
		return err
	}

	rec, ok := cmd.flags.Store.FindShop(platform, sessionID)
	if !ok {
		return fmt.Errorf("%w: %s/%s", shop.ErrNotFound, platform, sessionID)
	}

	if !cmd.yes {
		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove %s shop %q?", platform, rec.DisplayName())).
				Affirmative("Remove").
				Negative("Cancel").
				Value(&confirmed),
		)).WithTheme(styles.FormTheme()).Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			p.Infof("Nothing removed")
			return nil
		}
	}

	cmd.flags.Store.RemoveShop(platform, sessionID)
	p.Successf("Removed %s shop %s", platform, rec.DisplayName())

	if cmd.purge {
		part := browser.PartitionFor(cmd.flags.Config.ProfilesPath(), platform, sessionID)
		if err := os.RemoveAll(part.Dir); err != nil {
			return fmt.Errorf("remove profile: %w", err)
		}
		p.Successf("Deleted profile %s", part.Dir)
	}

	return nil
}
