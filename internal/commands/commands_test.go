package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/config"
	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
	"github.com/Geek-master-100/ai-customer-reception/internal/integration/browser"
	"github.com/Geek-master-100/ai-customer-reception/internal/printer"
	"github.com/Geek-master-100/ai-customer-reception/internal/store/jsonfile"
)

type harness struct {
	flags *Flags
	out   bytes.Buffer // command output
	msgs  bytes.Buffer // printer output
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	store := jsonfile.NewShopStore(cfg.ShopsFile(), zerolog.Nop())
	store.Load()

	return &harness{
		flags: &Flags{
			ConfigPath: "config.yaml",
			DataDir:    cfg.DataDir,
			Config:     &cfg,
			Store:      store,
		},
	}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:           "reception",
		Writer:         &h.out,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	app = NewLsCmd(h.flags).Register(app)
	app = NewRmCmd(h.flags).Register(app)
	app = NewDoctorCmd(h.flags).Register(app)
	app = NewConfigCmd(h.flags).Register(app)
	app = NewDocCmd(h.flags).Register(app)
	app = NewPruneCmd(h.flags).Register(app)

	ctx := printer.NewContext(context.Background(), printer.New(&h.msgs))
	return app.Run(ctx, append([]string{"reception"}, args...))
}

func TestLs(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "ls"))
	assert.Contains(t, h.msgs.String(), "No shops saved")

	h.flags.Store.AddShop("pdd", shop.Record{UserName: "Alice", MallName: "Alice Mall", UserID: "u1", SessionID: "s1"})
	h.flags.Store.AddShop("jd", shop.Record{MallName: "Carol Mall", SessionID: "s3"})

	h.out.Reset()
	require.NoError(t, h.run(t, "ls"))
	out := h.out.String()
	assert.Contains(t, out, "PLATFORM")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Carol Mall")

	h.out.Reset()
	require.NoError(t, h.run(t, "ls", "--platform", "jd"))
	assert.NotContains(t, h.out.String(), "Alice")
	assert.Contains(t, h.out.String(), "s3")

	err := h.run(t, "ls", "--platform", "ebay")
	assert.ErrorContains(t, err, "unknown platform")
}

func TestRm(t *testing.T) {
	h := newHarness(t)
	h.flags.Store.AddShop("pdd", shop.Record{UserName: "Alice", SessionID: "s1"})
	h.flags.Store.AddShop("pdd", shop.Record{UserName: "Bob", SessionID: "s2"})

	profile := browser.PartitionFor(h.flags.Config.ProfilesPath(), "pdd", "s1").Dir
	require.NoError(t, os.MkdirAll(profile, 0o755))

	require.NoError(t, h.run(t, "rm", "--yes", "pdd", "s1"))
	_, ok := h.flags.Store.FindShop("pdd", "s1")
	assert.False(t, ok)
	assert.DirExists(t, profile, "profiles are kept without --purge")

	require.NoError(t, h.run(t, "rm", "--yes", "--purge", "pdd", "s2"))
	assert.Empty(t, h.flags.Store.GetShops("pdd"))

	reloaded := jsonfile.NewShopStore(h.flags.Config.ShopsFile(), zerolog.Nop())
	reloaded.Load()
	assert.Empty(t, reloaded.GetShops("pdd"), "removal is persisted")
}

func TestRm_PurgeDeletesProfile(t *testing.T) {
	h := newHarness(t)
	h.flags.Store.AddShop("jd", shop.Record{SessionID: "s1"})

	profile := browser.PartitionFor(h.flags.Config.ProfilesPath(), "jd", "s1").Dir
	require.NoError(t, os.MkdirAll(profile, 0o755))

	require.NoError(t, h.run(t, "rm", "-y", "--purge", "jd", "s1"))
	assert.NoDirExists(t, profile)
}

func TestRm_Errors(t *testing.T) {
	h := newHarness(t)

	assert.Error(t, h.run(t, "rm", "--yes", "pdd"))
	assert.ErrorContains(t, h.run(t, "rm", "--yes", "Bad Platform", "s1"), "invalid platform id")
	assert.ErrorIs(t, h.run(t, "rm", "--yes", "pdd", "missing"), shop.ErrNotFound)
}

func TestDoctor_JSON(t *testing.T) {
	h := newHarness(t)
	h.flags.Store.AddShop("pdd", shop.Record{UserName: "Alice", SessionID: "s1"})

	require.NoError(t, h.run(t, "doctor", "--format", "json"))

	var out struct {
		Healthy bool `json:"healthy"`
		Summary struct {
			Passed int `json:"passed"`
		} `json:"summary"`
		Checks []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &out))

	names := make([]string, 0, len(out.Checks))
	for _, c := range out.Checks {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Configuration", "Platform Scripts", "Browser", "Shop Store", "Orphan Profiles"}, names)
	assert.Positive(t, out.Summary.Passed)
}

func TestConfigShow(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "config", "show"))
	out := h.out.String()
	assert.Contains(t, out, "mms.pinduoduo.com/chat-merchant")
	assert.Contains(t, out, "duration: 5s")
	assert.NotContains(t, out, "enabled: null")
}

func TestDoc(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "doc", "protocol"))
	assert.Contains(t, h.out.String(), "RECEPTION_MESSAGE/1:")
	assert.Contains(t, h.out.String(), h.flags.Config.ScriptsPath())

	h.out.Reset()
	require.NoError(t, h.run(t, "doc", "shim"))
	assert.Contains(t, h.out.String(), "window.reception.postMessage")
}

func TestPrune(t *testing.T) {
	h := newHarness(t)
	h.flags.Store.AddShop("pdd", shop.Record{UserName: "Alice", SessionID: "s1"})

	root := h.flags.Config.ProfilesPath()
	kept := browser.PartitionFor(root, "pdd", "s1").Dir
	orphan := browser.PartitionFor(root, "pdd", "gone").Dir
	require.NoError(t, os.MkdirAll(kept, 0o755))
	require.NoError(t, os.MkdirAll(orphan, 0o755))

	require.NoError(t, h.run(t, "prune", "--dry-run"))
	assert.DirExists(t, orphan)
	assert.Contains(t, h.msgs.String(), "1 profile(s) would be deleted")

	require.NoError(t, h.run(t, "prune"))
	assert.NoDirExists(t, orphan)
	assert.DirExists(t, kept)
	assert.Contains(t, h.msgs.String(), "Deleted 1 profile(s)")

	h.msgs.Reset()
	require.NoError(t, h.run(t, "prune"))
	assert.Contains(t, h.msgs.String(), "No orphaned profiles")
}
