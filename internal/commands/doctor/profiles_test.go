package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
	"github.com/Geek-master-100/ai-customer-reception/internal/integration/browser"
)

type mockShops map[string][]shop.Record

func (m mockShops) GetShops(platform string) []shop.Record {
	return m[platform]
}

func mkProfile(t *testing.T, root, platform, sessionID string) string {
	t.Helper()
	dir := browser.PartitionFor(root, platform, sessionID).Dir
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func TestProfileCheck_NoProfilesDir(t *testing.T) {
	check := NewProfileCheck(mockShops{}, filepath.Join(t.TempDir(), "profiles"), false)
	result := check.Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "Profiles directory", result.Items[0].Label)
}

func TestProfileCheck_NoOrphans(t *testing.T) {
	root := t.TempDir()
	mkProfile(t, root, "pdd", "s1")
	mkProfile(t, root, "jd", "session with spaces")

	shops := mockShops{
		"pdd": {{SessionID: "s1"}},
		"jd":  {{SessionID: "session with spaces"}},
	}

	result := NewProfileCheck(shops, root, false).Run(context.Background())

	assert.Equal(t, "Orphan Profiles", result.Name)
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "No orphans", result.Items[0].Label)
}

func TestProfileCheck_WithOrphans(t *testing.T) {
	root := t.TempDir()
	tracked := mkProfile(t, root, "pdd", "s1")
	orphan := mkProfile(t, root, "pdd", "s2")

	shops := mockShops{"pdd": {{SessionID: "s1"}}}

	result := NewProfileCheck(shops, root, false).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusWarn, result.Items[0].Status)
	assert.Equal(t, filepath.Join("pdd", "s2"), result.Items[0].Label)
	assert.True(t, result.Items[0].Fixable)

	assert.DirExists(t, tracked)
	assert.DirExists(t, orphan, "orphan must not be deleted without fix")
}

func TestProfileCheck_Fix(t *testing.T) {
	root := t.TempDir()
	tracked := mkProfile(t, root, "pdd", "s1")
	orphan := mkProfile(t, root, "kuaishou", "gone")

	shops := mockShops{"pdd": {{SessionID: "s1"}}}

	result := NewProfileCheck(shops, root, true).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "deleted orphaned profile", result.Items[0].Detail)

	assert.DirExists(t, tracked)
	assert.NoDirExists(t, orphan)
}
