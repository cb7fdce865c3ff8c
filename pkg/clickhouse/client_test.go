package clickhouse

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	cfg := defaultClientConfig()
	for _, opt := range []ClientOption{
		WithAddress("ch", 0),
		WithDatabase("stockpulse"),
		WithCredentials("svc", "p@ss"),
		WithTimeouts(2*time.Second, 0, 90*time.Second),
		WithAsyncInsert(true, true),
	} {
		opt(cfg)
	}
	require.NoError(t, cfg.validate())
	dsn := cfg.dsn()

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch:9000", u.Host)
	assert.Equal(t, "/stockpulse", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Equal(t, "2s", u.Query().Get("dial_timeout"))
	assert.Equal(t, "1", u.Query().Get("async_insert"))
	assert.Equal(t, "1", u.Query().Get("wait_for_async_insert"))
	assert.Equal(t, "90", u.Query().Get("max_execution_time"))
	assert.Equal(t, "10s", u.Query().Get("read_timeout"))
}

func TestValidateRequiresHost(t *testing.T) {
	cfg := defaultClientConfig()
	assert.Error(t, cfg.validate())

	WithPool(4, 8, 0)(cfg)
	WithAddress("ch", 9440)(cfg)
	require.NoError(t, cfg.validate())
	assert.Equal(t, 4, cfg.MaxIdleConns)
	assert.Equal(t, 9440, cfg.Port)
}

func TestBuildDSNHTTP(t *testing.T) {
	cfg := defaultClientConfig()
	WithAddress("ch", 8123)(cfg)
	WithHTTP(true)(cfg)
	dsn := cfg.dsn()
	assert.True(t, strings.HasPrefix(dsn, "http://"))
}

func TestSalesSchema(t *testing.T) {
	stmts := SalesSchema("stockpulse")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[1], "stockpulse.sales_history")
	assert.Contains(t, stmts[1], "MergeTree")
}
