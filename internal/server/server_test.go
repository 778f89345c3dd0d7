package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hiverecon/internal/config"
	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/hivetest"
	"github.com/joshuapare/hiverecon/pkg/api"
	"github.com/joshuapare/hiverecon/pkg/hive"
	"github.com/joshuapare/hiverecon/pkg/types"
)

func sz(s string) []byte { return format.EncodeUTF16LE(s + "\x00") }

func writeHive(t *testing.T) (string, *hivetest.Hive) {
	t.Helper()
	fx := hivetest.Build(hivetest.KeyDef{
		Name: "ROOT",
		SubKeys: []hivetest.KeyDef{
			{Name: "Software", SubKeys: []hivetest.KeyDef{
				{Name: "Vendor", SubKeys: []hivetest.KeyDef{
					{Name: "Run", Values: []hivetest.ValueDef{{Name: "Agent", Type: uint32(types.REG_SZ), Data: sz(`C:\agent.exe`)}}},
				}},
			}},
			{Name: "Big", Values: []hivetest.ValueDef{{Name: "Blob", Type: uint32(types.REG_BINARY), Data: bytes.Repeat([]byte{0xAB}, 64)}}},
		},
	})
	p := filepath.Join(t.TempDir(), "SOFTWARE")
	require.NoError(t, os.WriteFile(p, fx.Bytes, 0o644))
	return p, fx
}

func newTestServer(t *testing.T) (*httptest.Server, *hive.Session) {
	t.Helper()
	session := hive.NewSession()
	srv := NewServer(&config.Config{Listen: "127.0.0.1:0"}, session)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, session
}

func get(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func load(t *testing.T, ts *httptest.Server, req api.LoadRequest) (*http.Response, []byte) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/hive", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestHealthAndNoHive(t *testing.T) {
	ts, _ := newTestServer(t)

	var health map[string]any
	require.Equal(t, http.StatusOK, get(t, ts, "/health", &health))
	require.Equal(t, "ok", health["status"])
	require.Equal(t, false, health["loaded"])

	var e api.ErrorResponse
	require.Equal(t, http.StatusConflict, get(t, ts, "/keys/root", &e))
	require.Equal(t, "no hive loaded", e.Error)
}

func TestLoadAndQuery(t *testing.T) {
	ts, session := newTestServer(t)
	path, fx := writeHive(t)

	resp, body := load(t, ts, api.LoadRequest{Path: path})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var lr api.LoadResponse
	require.NoError(t, json.Unmarshal(body, &lr))
	require.Equal(t, path, lr.Path)
	require.Equal(t, len(fx.Keys), lr.Stats.Keys)
	require.NotNil(t, session.Current())

	var root api.Key
	require.Equal(t, http.StatusOK, get(t, ts, "/keys/root", &root))
	require.Equal(t, "ROOT", root.Name)
	require.Equal(t, []string{"Software", "Big"}, root.SubKeys)

	var run api.Key
	require.Equal(t, http.StatusOK, get(t, ts, "/keys?path="+url.QueryEscape(`HKLM\SOFTWARE\vendor\run`), &run))
	require.Equal(t, `Software\Vendor\Run`, run.Path)
	require.Len(t, run.Values, 1)
	require.Equal(t, `C:\agent.exe`, run.Values[0].Text)
	require.Equal(t, "REG_SZ", run.Values[0].Type)

	var byOff api.Key
	require.Equal(t, http.StatusOK, get(t, ts, fmt.Sprintf("/keys/offset/%#x", run.Offset), &byOff))
	require.Equal(t, run.Path, byOff.Path)

	var e api.ErrorResponse
	require.Equal(t, http.StatusNotFound, get(t, ts, "/keys?path=Nope", &e))
	require.Equal(t, http.StatusBadRequest, get(t, ts, "/keys/offset/zz", &e))
	require.Equal(t, http.StatusNotFound, get(t, ts, "/keys/offset/0x7", &e))

	var info types.HiveInfo
	require.Equal(t, http.StatusOK, get(t, ts, "/hive/info", &info))
	require.True(t, info.ChecksumValid)

	var st types.Stats
	require.Equal(t, http.StatusOK, get(t, ts, "/hive/stats", &st))
	require.Equal(t, len(fx.Values), st.Values)
}

func TestSearchRoutes(t *testing.T) {
	ts, _ := newTestServer(t)
	path, _ := writeHive(t)
	resp, _ := load(t, ts, api.LoadRequest{Path: path})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tests := []struct {
		name  string
		query string
		paths []string
	}{
		{"key substring", "/search/keys?q=ven", []string{`Software\Vendor`}},
		{"value regex", "/search/values?regex=true&q=" + url.QueryEscape("^ag"), []string{`Software\Vendor\Run`}},
		{"data", "/search/data?q=agent.exe", []string{`Software\Vendor\Run`}},
		{"size", "/search/size?min=32", []string{`Big`}},
		{"expand", "/search/expand?pattern=" + url.QueryEscape(`Software\*\Run`), []string{`Software\Vendor\Run`}},
		{"time", "/search/time?after=1990-01-01T00:00:00Z", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits []api.Hit
			require.Equal(t, http.StatusOK, get(t, ts, tt.query, &hits))
			if tt.paths == nil {
				return
			}
			var got []string
			for _, h := range hits {
				got = append(got, h.Path)
			}
			require.Equal(t, tt.paths, got)
		})
	}

	var hits []api.Hit
	require.Equal(t, http.StatusOK, get(t, ts, "/search/keys?q=r&limit=1", &hits))
	require.Len(t, hits, 1)

	var e api.ErrorResponse
	require.Equal(t, http.StatusNotFound, get(t, ts, "/search/bogus?q=x", &e))
	require.Equal(t, http.StatusBadRequest, get(t, ts, "/search/keys", &e))
	require.Equal(t, http.StatusBadRequest, get(t, ts, "/search/keys?regex=1&q=(", &e))
	require.Equal(t, http.StatusBadRequest, get(t, ts, "/search/size?min=-1", &e))
	require.Equal(t, http.StatusBadRequest, get(t, ts, "/search/time?after=yesterday", &e))
	require.Equal(t, http.StatusBadRequest, get(t, ts, "/search/keys?q=x&limit=0", &e))
}

func TestLoadErrors(t *testing.T) {
	ts, session := newTestServer(t)
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk")
	require.NoError(t, os.WriteFile(junk, make([]byte, 4096), 0o644))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", "{", http.StatusBadRequest},
		{"no path", `{}`, http.StatusBadRequest},
		{"missing file", fmt.Sprintf(`{"path":%q}`, filepath.Join(dir, "nope")), http.StatusNotFound},
		{"not a hive", fmt.Sprintf(`{"path":%q}`, junk), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/hive", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
			var e api.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			require.NotEmpty(t, e.Error)
		})
	}
	require.Nil(t, session.Current())
}

func TestExportAndDeleted(t *testing.T) {
	ts, _ := newTestServer(t)
	path, _ := writeHive(t)
	resp, _ := load(t, ts, api.LoadRequest{Path: path, Recover: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	r, err := http.Get(ts.URL + "/export")
	require.NoError(t, err)
	defer r.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(r.Body)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "key|Software\\Vendor\\Run|")
	require.Contains(t, buf.String(), "total_keys|5\n")

	var del struct {
		Keys         []api.Key   `json:"keys"`
		Unassociated []api.Value `json:"unassociated"`
	}
	require.Equal(t, http.StatusOK, get(t, ts, "/deleted", &del))
	require.Empty(t, del.Keys)
}

func TestRunShutsDown(t *testing.T) {
	srv := NewServer(&config.Config{Listen: "127.0.0.1:0"}, hive.NewSession())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()
	require.NoError(t, <-done)
}
