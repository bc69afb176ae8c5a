package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/bridge"
)

type DocCmd struct {
	flags *Flags
}

func NewDocCmd(flags *Flags) *DocCmd {
	return &DocCmd{flags: flags}
}

func (cmd *DocCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "doc",
		Usage: "Documentation for platform script authors",
		Description: `Access documentation for writing platform scripts.

Use 'reception doc protocol' to see how pages report to the desk.
Use 'reception doc shim' to print the script installed before platform scripts.`,
		Commands: []*cli.Command{
			{
				Name:   "protocol",
				Usage:  "Show the page to desk message protocol",
				Action: cmd.runProtocol,
			},
			{
				Name:   "shim",
				Usage:  "Print the host shim injected into every page",
				Action: cmd.runShim,
			},
		},
	})
	return app
}

func (cmd *DocCmd) runProtocol(_ context.Context, c *cli.Command) error {
	printProtocolGuide(c.Root().Writer, cmd.flags.Config.ScriptsPath())
	return nil
}

func (cmd *DocCmd) runShim(_ context.Context, c *cli.Command) error {
	_, err := io.WriteString(c.Root().Writer, bridge.HostShim())
	return err
}

func printProtocolGuide(w io.Writer, scriptsDir string) {
	guide := `# Reception Page Protocol

## Platform Scripts

Each platform injects the files matching its ` + "`scripts`" + ` patterns
(default ` + "`<platform-id>.js`" + `) from:

    ` + scriptsDir + `

Scripts run once per page load, about two seconds after the load finished.
They are re-read from disk on every injection.

## Reporting to the Desk

The desk installs a shim before your script. Post messages with:

` + "```js" + `
window.reception.postMessage({ type: "currentuser", response: { userName: "..." } })
` + "```" + `

` + "`window.pywebview.api.post_message`" + ` is kept for older scripts. Both log a single
console line prefixed with ` + "`" + bridge.Marker + "`" + `; lines prefixed with
` + "`" + bridge.LegacyMarker + "`" + ` are accepted too. ` + "`response`" + ` may be an
object or a string holding JSON.

## Message Types

| type | response | effect |
|------|----------|--------|
| ` + "`" + string(bridge.KindCurrentUser) + "`" + ` | ` + "`{userName, mallName, userId, mallId, avatar}`" + ` | saves the shop, relabels the tab |
| ` + "`" + string(bridge.KindNewMessage) + "`" + ` | ` + "`{hasNewMessage, newMessageCount}`" + ` | tab badge, platform badge, notice |
| ` + "`" + string(bridge.KindReceiveMessage) + "`" + ` | any JSON | shown as the last raw message |

A ` + "`currentuser`" + ` message needs userName or userId. A ` + "`newmessage`" + `
needs hasNewMessage or newMessageCount; without hasNewMessage it counts as
unread when newMessageCount is above zero. Malformed messages are dropped.
`
	_, _ = fmt.Fprintln(w, guide)
}
