package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
database:
  elasticsearch:
    addresses:
      - http://localhost:9200
workers:
  sales-search:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "sales-workers", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.HealthPort)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.URL)
	assert.Equal(t, DefaultSalesIndex, cfg.Sales.Indices.Sales)
	assert.Equal(t, DefaultSalesIndex, cfg.Sales.Indices.UpdateLookup)
	assert.Equal(t, DefaultAuditTable, cfg.Sales.Audit.Table)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	w := cfg.Workers["sales-search"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_ShippedConfigKeepsOptionalCollaboratorsOff(t *testing.T) {
	t.Setenv("ZEEBE_ADDRESS", "localhost:26500")

	cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Zero(t, cfg.Sales.CacheTTL)
	assert.False(t, cfg.Sales.Audit.Enabled)
	assert.False(t, cfg.Events.SNS.Enabled)
	assert.False(t, cfg.Tracing.Jaeger.Enabled)
}

func TestLoadFromFile_ExplicitLookupIndex(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
database:
  elasticsearch:
    url: http://es:9200
sales:
  indices:
    sales: sales_v3
    update_lookup: customers
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sales_v3", cfg.Sales.Indices.Sales)
	assert.Equal(t, "customers", cfg.Sales.Indices.UpdateLookup)
	assert.Equal(t, []string{"http://es:9200"}, cfg.Database.Elasticsearch.GetAddresses())
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_SALES_ES_URL", "http://expanded:9200")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
database:
  elasticsearch:
    url: ${TEST_SALES_ES_URL}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://expanded:9200", cfg.Database.Elasticsearch.GetURL())
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name: "missing broker",
			body: `
database:
  elasticsearch:
    url: http://es:9200
`,
			errMsg: "camunda.broker_address is required",
		},
		{
			name: "missing elasticsearch",
			body: `
camunda:
  broker_address: localhost:26500
`,
			errMsg: "database.elasticsearch.addresses or url is required",
		},
		{
			name: "cache without redis",
			body: `
camunda:
  broker_address: localhost:26500
database:
  elasticsearch:
    url: http://es:9200
sales:
  cache_ttl: 60000
`,
			errMsg: "database.redis.address is required",
		},
		{
			name: "audit without postgres",
			body: `
camunda:
  broker_address: localhost:26500
database:
  elasticsearch:
    url: http://es:9200
sales:
  audit:
    enabled: true
`,
			errMsg: "database.postgres.host is required",
		},
		{
			name: "sns without topic",
			body: `
camunda:
  broker_address: localhost:26500
database:
  elasticsearch:
    url: http://es:9200
events:
  sns:
    enabled: true
`,
			errMsg: "events.sns.topic_arn is required",
		},
		{
			name: "bad refresh policy",
			body: `
camunda:
  broker_address: localhost:26500
database:
  elasticsearch:
    url: http://es:9200
sales:
  refresh: sometimes
`,
			errMsg: "sales.refresh must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"sales-delete": {Enabled: false, MaxJobsActive: 1, Timeout: 1000},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "sales-delete"))
	assert.True(t, IsWorkerEnabled(cfg, "sales-get"))

	fallback := GetWorkerConfig(cfg, "sales-get")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 5, fallback.MaxJobsActive)

	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
