package bootstrap

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Compensation policies for failed orders.
const (
	CompensateReservedOnly = "reserved-only"
	CompensateAllRequested = "all-requested"
)

// Storage backends.
const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	Infra   InfraConfig   `yaml:"infra"`
	Domains DomainsConfig `yaml:"domains"`
}

type AppConfig struct {
	Port          int         `yaml:"port"`
	LogLevel      string      `yaml:"logLevel"`
	Storage       string      `yaml:"storage"`
	HTTPTimeoutMs int         `yaml:"httpTimeoutMs"`
	Retry         RetryConfig `yaml:"retry"`
	Compensation  string      `yaml:"compensation"`
	OrderRule     string      `yaml:"orderRule"`
}

type RetryConfig struct {
	MaxAttempts int `yaml:"maxAttempts"`
	DelayMs     int `yaml:"delayMs"`
}

func (r RetryConfig) Delay() time.Duration { return time.Duration(r.DelayMs) * time.Millisecond }

type InfraConfig struct {
	Jaeger    JaegerConfig    `yaml:"jaeger"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Zookeeper ZookeeperConfig `yaml:"zookeeper"`
	Nacos     NacosConfig     `yaml:"nacos"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type KafkaConfig struct {
	Brokers []string     `yaml:"brokers"`
	GroupID string       `yaml:"groupId"`
	Topics  TopicsConfig `yaml:"topics"`
}

type TopicsConfig struct {
	NewInventory     string `yaml:"newInventory"`
	InventoryUpdated string `yaml:"inventoryUpdated"`
	NewCategory      string `yaml:"newCategory"`
	OrderEvents      string `yaml:"orderEvents"`
	DeadLetter       string `yaml:"deadLetter"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DSN renders the go-sql-driver DSN.
func (c MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

type RedisConfig struct {
	Addr       string `yaml:"addr"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

type ZookeeperConfig struct {
	Servers []string `yaml:"servers"`
}

type NacosConfig struct {
	Addrs     string `yaml:"addrs"`
	Namespace string `yaml:"namespace"`
	Group     string `yaml:"group"`
}

// DomainsConfig holds base URLs of upstream services.
type DomainsConfig struct {
	Inventory string `yaml:"inventory"`
	Order     string `yaml:"order"`
}

// DefaultConfig is the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			LogLevel:      "info",
			Storage:       StorageMySQL,
			HTTPTimeoutMs: 3000,
			Retry:         RetryConfig{MaxAttempts: 3, DelayMs: 200},
			Compensation:  CompensateReservedOnly,
			OrderRule:     "size(items) > 0 && items.all(i, i.productId > 0 && i.quantity > 0)",
		},
		Infra: InfraConfig{
			Jaeger: JaegerConfig{Endpoint: "http://localhost:14268/api/traces"},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topics: TopicsConfig{
					NewInventory:     "new-inventory",
					InventoryUpdated: "inventory-updated",
					NewCategory:      "new-category",
					OrderEvents:      "order-events",
					DeadLetter:       "stockflow-dlt",
				},
			},
			MySQL: MySQLConfig{Host: "localhost", Port: 3306, User: "root", Database: "stockflow"},
			Redis: RedisConfig{TTLSeconds: 60},
			Nacos: NacosConfig{Group: "DEFAULT_GROUP"},
		},
		Domains: DomainsConfig{
			Inventory: "http://localhost:8082",
			Order:     "http://localhost:8081",
		},
	}
}

// RemoteSource fetches a YAML document by data id, e.g. from a config centre.
type RemoteSource func(dataID string) (string, error)

// LoadConfig layers defaults, the YAML file named by CONFIG_FILE, the remote
// document "<service>.yaml" and finally environment variables.
func LoadConfig(serviceName string, remote RemoteSource) (*Config, error) {
	cfg := DefaultConfig()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	if remote != nil {
		content, err := remote(serviceName + ".yaml")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(content) != "" {
			if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
				return nil, errors.Wrap(err, "parse remote config")
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var err error
	intEnv := func(key string, dst *int) {
		v, ok := os.LookupEnv(key)
		if !ok || err != nil {
			return
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			err = fmt.Errorf("invalid %s=%q: %w", key, v, convErr)
			return
		}
		*dst = n
	}
	strEnv := func(key string, dst *string) {
		*dst = getEnv(key, *dst)
	}
	listEnv := func(key string, dst *[]string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = splitList(v)
		}
	}

	intEnv("PORT", &cfg.App.Port)
	strEnv("LOG_LEVEL", &cfg.App.LogLevel)
	strEnv("STORAGE", &cfg.App.Storage)
	intEnv("HTTP_TIMEOUT_MS", &cfg.App.HTTPTimeoutMs)
	intEnv("RETRY_MAX_ATTEMPTS", &cfg.App.Retry.MaxAttempts)
	intEnv("RETRY_DELAY_MS", &cfg.App.Retry.DelayMs)
	strEnv("COMPENSATION_POLICY", &cfg.App.Compensation)
	strEnv("ORDER_RULE", &cfg.App.OrderRule)

	strEnv("JAEGER_ENDPOINT", &cfg.Infra.Jaeger.Endpoint)
	listEnv("KAFKA_BROKERS", &cfg.Infra.Kafka.Brokers)
	strEnv("KAFKA_GROUP_ID", &cfg.Infra.Kafka.GroupID)
	strEnv("TOPIC_NEW_INVENTORY", &cfg.Infra.Kafka.Topics.NewInventory)
	strEnv("TOPIC_INVENTORY_UPDATED", &cfg.Infra.Kafka.Topics.InventoryUpdated)
	strEnv("TOPIC_NEW_CATEGORY", &cfg.Infra.Kafka.Topics.NewCategory)
	strEnv("TOPIC_ORDER_EVENTS", &cfg.Infra.Kafka.Topics.OrderEvents)
	strEnv("TOPIC_DEAD_LETTER", &cfg.Infra.Kafka.Topics.DeadLetter)

	strEnv("MYSQL_HOST", &cfg.Infra.MySQL.Host)
	intEnv("MYSQL_PORT", &cfg.Infra.MySQL.Port)
	strEnv("MYSQL_USER", &cfg.Infra.MySQL.User)
	strEnv("MYSQL_PASSWORD", &cfg.Infra.MySQL.Password)
	strEnv("MYSQL_DATABASE", &cfg.Infra.MySQL.Database)

	strEnv("REDIS_ADDR", &cfg.Infra.Redis.Addr)
	intEnv("REDIS_TTL_SECONDS", &cfg.Infra.Redis.TTLSeconds)
	listEnv("ZK_SERVERS", &cfg.Infra.Zookeeper.Servers)

	strEnv("NACOS_SERVER_ADDRS", &cfg.Infra.Nacos.Addrs)
	strEnv("NACOS_NAMESPACE", &cfg.Infra.Nacos.Namespace)
	strEnv("NACOS_GROUP", &cfg.Infra.Nacos.Group)

	strEnv("INVENTORY_URL", &cfg.Domains.Inventory)
	strEnv("ORDER_URL", &cfg.Domains.Order)
	return err
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	if c.App.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.maxAttempts must be >= 1, got %d", c.App.Retry.MaxAttempts)
	}
	if c.App.Retry.DelayMs < 0 {
		return fmt.Errorf("retry.delayMs must be >= 0, got %d", c.App.Retry.DelayMs)
	}
	switch c.App.Compensation {
	case CompensateReservedOnly, CompensateAllRequested:
	default:
		return fmt.Errorf("unknown compensation policy %q", c.App.Compensation)
	}
	switch c.App.Storage {
	case StorageMySQL, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.App.Storage)
	}
	if len(c.Infra.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers must not be empty")
	}
	return nil
}

var currentConfig atomic.Pointer[Config]

// GetCurrentConfig returns the active configuration, or the defaults before startup.
func GetCurrentConfig() *Config {
	if cfg := currentConfig.Load(); cfg != nil {
		return cfg
	}
	return DefaultConfig()
}

func setCurrentConfig(cfg *Config) { currentConfig.Store(cfg) }

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
