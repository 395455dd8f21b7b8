package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/unitgrid/internal/config"
	"github.com/aretw0/unitgrid/internal/logging"
	"github.com/aretw0/unitgrid/pkg/adapters/memory"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/schema"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeProjectFile(t *testing.T, rows domain.Grid) string {
	t.Helper()
	p := domain.NewProject("p1", "Line", "acme", schema.DefaultConveyorSchema())
	p.InputData = rows
	data, err := json.Marshal(p)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func row(cells map[int]string) domain.Row {
	r := domain.NewRow(len(schema.DefaultConveyorSchema()))
	for i, v := range cells {
		r[i] = v
	}
	return r
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "unitgrid version ")

	out, err = run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "0.1.0\n", out)
	versionShort = false
}

func TestValidateCommand(t *testing.T) {
	valid := writeProjectFile(t, domain.Grid{row(map[int]string{0: "A1", 3: "System", 4: "Belt", 8: "10", 9: "100"})})
	out, err := run(t, "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	invalid := writeProjectFile(t, domain.Grid{row(map[int]string{0: "1A", 3: "System", 4: "Belt", 5: "VFD", 8: "10", 9: "100"})})
	out, err = run(t, "validate", invalid)
	assert.ErrorIs(t, err, errInvalidGrid)
	assert.Contains(t, out, "row 1 Name")
	assert.Contains(t, out, "row 1 Power: disabled cell holds \"VFD\"")
}

func TestSortCommand(t *testing.T) {
	path := writeProjectFile(t, domain.Grid{
		row(map[int]string{0: "B"}),
		row(map[int]string{0: "A", 1: "B"}),
		row(map[int]string{}),
	})
	outPath := filepath.Join(t.TempDir(), "sorted.json")
	_, err := run(t, "sort", path, "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var p domain.Project
	require.NoError(t, json.Unmarshal(data, &p))
	require.Len(t, p.InputData, 2)
	assert.Equal(t, "A", p.InputData[0][0])
	assert.Equal(t, "B", p.InputData[1][0])
}

func TestGraphCommand(t *testing.T) {
	path := writeProjectFile(t, domain.Grid{
		row(map[int]string{0: "A", 1: "B"}),
		row(map[int]string{0: "B"}),
	})
	out, err := run(t, "graph", path)
	require.NoError(t, err)
	assert.Contains(t, out, "n_A --> n_B")
}

func TestShowCommand_Markdown(t *testing.T) {
	path := writeProjectFile(t, domain.Grid{row(map[int]string{0: "A1", 3: "System"})})
	out, err := run(t, "show", path, "--markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| # | Name | Next |")
	assert.Contains(t, out, "| 1 | A1 |")
}

func TestExportCommand(t *testing.T) {
	path := writeProjectFile(t, domain.Grid{row(map[int]string{0: "A1"})})
	outPath := filepath.Join(t.TempDir(), "grid.xlsx")
	_, err := run(t, "export", path, "-o", outPath)
	require.NoError(t, err)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Grid", "A2")
	require.NoError(t, err)
	assert.Equal(t, "A1", v)
}

func TestReadProject_DefaultSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Bare","inputData":[["A"]]}`), 0o644))

	cmd := &cobra.Command{}
	cmd.Flags().String("schema", "", "")
	p, err := readProject(cmd, path)
	require.NoError(t, err)
	assert.Len(t, p.InputDataConfig, len(schema.DefaultConveyorSchema()))
	assert.Equal(t, domain.StatusActive, p.Status)
	assert.NotNil(t, p.RestorePoints)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Auth.Secret = "serve-secret"
	return cfg
}

func TestBuildApp_Memory(t *testing.T) {
	a, err := buildApp(context.Background(), testConfig(), logging.NewNop())
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.bus)

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuildApp_RedisRelaysUpdates(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Store.Kind = config.StoreRedis
	cfg.Redis.Addr = mr.Addr()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.bus)

	done, err := a.bus.Forward(ctx, func(msg domain.UpdateMessage) { a.hub.Broadcast(msg) })
	require.NoError(t, err)

	sub := a.hub.Subscribe("p1")
	defer sub.Close()
	require.NoError(t, a.bus.Publish(ctx, domain.UpdateMessage{ProjectID: "p1", InputData: domain.Grid{{"X"}}}))

	msg := <-sub.C()
	assert.Equal(t, "X", msg.InputData[0][0])

	cancel()
	<-done
}

func TestBuildApp_SQLite(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Kind = config.StoreSQLite
	cfg.Store.DSN = "file:cmdtest?mode=memory&cache=shared"

	a, err := buildApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, a.db)

	sqlDB, err := a.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	require.NoError(t, a.Close())
	assert.Error(t, sqlDB.Ping(), "pool is closed with the app")
}

func TestBuildApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Redis.Addr = addr
	_, err := buildApp(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestEncryptStore(t *testing.T) {
	plain := memory.NewStore()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	store, err := encryptStore(plain, key)
	require.NoError(t, err)

	ctx := context.Background()
	p := domain.NewProject("enc", "Line", "acme", schema.DefaultConveyorSchema())
	require.NoError(t, store.Save(ctx, p))

	raw, err := plain.Load(ctx, "enc")
	require.NoError(t, err)
	assert.Empty(t, raw.Name)
	assert.Empty(t, raw.InputData)

	loaded, err := store.Load(ctx, "enc")
	require.NoError(t, err)
	assert.Equal(t, "Line", loaded.Name)

	_, err = encryptStore(plain, "bm9wZQ==")
	assert.Error(t, err)
}

func TestBuildApp_EncryptedStore(t *testing.T) {
	cfg := testConfig()
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	a, err := buildApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	cfg.Store.EncryptionKey = "bm9wZQ=="
	_, err = buildApp(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}
