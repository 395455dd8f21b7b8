package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unitgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
log:
  level: debug
store:
  kind: redis
redis:
  addr: "localhost:6379"
  ttl: 1h
auth:
  secret: from-file
sse:
  heartbeat: 5s
`), 0o644))

	t.Setenv("UNITGRID_JWT_SECRET", "from-env")
	t.Setenv("UNITGRID_REDIS_DB", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset fields keep defaults")
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "unitgrid:", cfg.Redis.Prefix)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, 5*time.Second, cfg.SSE.Heartbeat)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv_Invalid(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"UNITGRID_TOKEN_TTL":  "soon",
		"UNITGRID_SSE_BUFFER": "many",
		"UNITGRID_ADDR":       " :7000 ",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNITGRID_TOKEN_TTL")
	assert.Contains(t, err.Error(), "UNITGRID_SSE_BUFFER")
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.secret")

	cfg.Auth.Secret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Store.Kind = StoreSQLite
	assert.ErrorContains(t, cfg.Validate(), "store.dsn")

	cfg.Store.Kind = "cassandra"
	assert.ErrorContains(t, cfg.Validate(), "unknown store kind")

	cfg.Store.Kind = StoreRedis
	assert.ErrorContains(t, cfg.Validate(), "redis.addr")

	cfg.Store.Kind = StoreMemory
	cfg.Store.EncryptionKey = "c2hvcnQ="
	assert.ErrorContains(t, cfg.Validate(), "store.encryptionKey")
}

func TestApplyEnv_StoreKey(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{"UNITGRID_STORE_KEY": " a2V5 "})))
	assert.Equal(t, "a2V5", cfg.Store.EncryptionKey)
}
