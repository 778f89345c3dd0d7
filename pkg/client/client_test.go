package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hiverecon/internal/config"
	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/hivetest"
	"github.com/joshuapare/hiverecon/internal/server"
	"github.com/joshuapare/hiverecon/pkg/api"
	"github.com/joshuapare/hiverecon/pkg/hive"
	"github.com/joshuapare/hiverecon/pkg/types"
)

func setup(t *testing.T) (*Client, string) {
	t.Helper()
	fx := hivetest.Build(hivetest.KeyDef{
		Name: "ROOT",
		SubKeys: []hivetest.KeyDef{
			{Name: "Software", SubKeys: []hivetest.KeyDef{
				{Name: "Acme", SubKeys: []hivetest.KeyDef{
					{Name: "Run", Values: []hivetest.ValueDef{{Name: "Updater", Type: uint32(types.REG_SZ), Data: format.EncodeUTF16LE("upd.exe\x00")}}},
				}},
			}},
		},
	})
	path := filepath.Join(t.TempDir(), "SOFTWARE")
	require.NoError(t, os.WriteFile(path, fx.Bytes, 0o644))

	srv := server.NewServer(&config.Config{}, hive.NewSession())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL), path
}

func TestClientRoundTrip(t *testing.T) {
	c, path := setup(t)
	ctx := context.Background()

	loaded, err := c.Health(ctx)
	require.NoError(t, err)
	require.False(t, loaded)

	_, err = c.Root(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "no hive loaded", apiErr.Message)

	lr, err := c.Load(ctx, api.LoadRequest{Path: path})
	require.NoError(t, err)
	require.Equal(t, 4, lr.Stats.Keys)

	loaded, err = c.Health(ctx)
	require.NoError(t, err)
	require.True(t, loaded)

	root, err := c.Root(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Software"}, root.SubKeys)

	run, err := c.Key(ctx, `Software\Acme\Run`)
	require.NoError(t, err)
	require.Equal(t, "upd.exe", run.Values[0].Text)

	same, err := c.KeyByOffset(ctx, run.Offset)
	require.NoError(t, err)
	require.Equal(t, run.Path, same.Path)

	info, err := c.Info(ctx)
	require.NoError(t, err)
	require.True(t, info.ChecksumValid)

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.Values)

	hits, err := c.Search(ctx, "values", "updater", false)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, `Software\Acme\Run`, hits[0].Path)
	require.Equal(t, "Updater", hits[0].Value)

	hits, err = c.Expand(ctx, `Software\*\Run`)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = c.ValueSize(ctx, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	_, err = c.LastWrite(ctx, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	require.NoError(t, err)

	text, err := c.Export(ctx)
	require.NoError(t, err)
	require.Contains(t, text, "total_keys|4")

	_, err = c.Key(ctx, "Missing")
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClientLoadError(t *testing.T) {
	c, path := setup(t)
	_, err := c.Load(context.Background(), api.LoadRequest{Path: path + ".missing"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}
