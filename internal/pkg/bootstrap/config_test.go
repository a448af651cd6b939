package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := LoadConfig("order-service", nil)

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.App.Retry.MaxAttempts)
	assert.Equal(t, 200, cfg.App.Retry.DelayMs)
	assert.Equal(t, "new-inventory", cfg.Infra.Kafka.Topics.NewInventory)
	assert.Equal(t, "inventory-updated", cfg.Infra.Kafka.Topics.InventoryUpdated)
	assert.Equal(t, "new-category", cfg.Infra.Kafka.Topics.NewCategory)
	assert.Equal(t, CompensateReservedOnly, cfg.App.Compensation)
}

func TestLoadConfigLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  retry:
    maxAttempts: 5
    delayMs: 50
  compensation: all-requested
domains:
  inventory: http://inventory.internal:8082
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RETRY_DELAY_MS", "75")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	remote := func(dataID string) (string, error) {
		assert.Equal(t, "order-service.yaml", dataID)
		return "domains:\n  order: http://order.remote:8081\n", nil
	}

	cfg, err := LoadConfig("order-service", remote)

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.App.Retry.MaxAttempts)
	assert.Equal(t, 75, cfg.App.Retry.DelayMs)
	assert.Equal(t, CompensateAllRequested, cfg.App.Compensation)
	assert.Equal(t, "http://inventory.internal:8082", cfg.Domains.Inventory)
	assert.Equal(t, "http://order.remote:8081", cfg.Domains.Order)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Infra.Kafka.Brokers)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	t.Run("zero attempts", func(t *testing.T) {
		t.Setenv("RETRY_MAX_ATTEMPTS", "0")
		_, err := LoadConfig("order-service", nil)
		assert.Error(t, err)
	})
	t.Run("not a number", func(t *testing.T) {
		t.Setenv("RETRY_DELAY_MS", "fast")
		_, err := LoadConfig("order-service", nil)
		assert.Error(t, err)
	})
	t.Run("unknown policy", func(t *testing.T) {
		t.Setenv("COMPENSATION_POLICY", "sometimes")
		_, err := LoadConfig("order-service", nil)
		assert.Error(t, err)
	})
	t.Run("remote failure", func(t *testing.T) {
		_, err := LoadConfig("order-service", func(string) (string, error) { return "", errors.New("nacos down") })
		assert.Error(t, err)
	})
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLConfig{Host: "db", Port: 3306, User: "app", Password: "secret", Database: "inventory"}.DSN()

	assert.Contains(t, dsn, "app:secret@tcp(db:3306)/inventory")
	assert.Contains(t, dsn, "parseTime=true")
}
