package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，嵌套键用下划线：NOTIFY_MYSQL_DSN、NOTIFY_WORKER_PREFETCH
const EnvPrefix = "NOTIFY"

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Swagger         bool          `mapstructure:"swagger"` // 挂载 /swagger/*any
}

type MySQLConfig struct {
	DSN          string        `mapstructure:"dsn"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnMaxLife  time.Duration `mapstructure:"conn_max_life"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type WorkerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Prefetch    int           `mapstructure:"prefetch"`
	MaxRetries  int           `mapstructure:"max_retries"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	// Consumer 为空时用主机名
	Consumer string `mapstructure:"consumer"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config notifyd 的全部配置
type Config struct {
	HTTP   HTTPConfig   `mapstructure:"http"`
	MySQL  MySQLConfig  `mapstructure:"mysql"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Worker WorkerConfig `mapstructure:"worker"`
	Log    LogConfig    `mapstructure:"log"`

	DedupWindow   time.Duration `mapstructure:"dedup_window"`
	Gateway       bool          `mapstructure:"gateway"`
	AutoMigrate   bool          `mapstructure:"auto_migrate"`
	SeedTemplates bool          `mapstructure:"seed_templates"`

	// IngestToken 业务服务调用内部事件接口用的凭证，为空时不挂该接口
	IngestToken string `mapstructure:"ingest_token"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.swagger", false)

	v.SetDefault("mysql.dsn", "")
	v.SetDefault("mysql.max_open_conns", 50)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.conn_max_life", time.Hour)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 50)

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.prefetch", 10)
	v.SetDefault("worker.max_retries", 3)
	v.SetDefault("worker.backoff_base", time.Second)
	v.SetDefault("worker.consumer", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("dedup_window", 300*time.Second)
	v.SetDefault("gateway", true)
	v.SetDefault("auto_migrate", false)
	v.SetDefault("seed_templates", false)
	v.SetDefault("ingest_token", "")
}

// Load 读取配置：默认值 < YAML 文件 < 环境变量。
// path 为空或文件不存在时只用默认值和环境变量；当前目录的 .env 会先被加载进环境变量。
func Load(path string) (*Config, error) {
	// .env 只是开发便利，不存在不算错
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.MySQL.DSN == "":
		return errors.New("mysql.dsn is required (NOTIFY_MYSQL_DSN)")
	case c.Redis.Addr == "":
		return errors.New("redis.addr is required (NOTIFY_REDIS_ADDR)")
	case c.Worker.Prefetch < 0 || c.Worker.MaxRetries < 0:
		return errors.New("worker.prefetch and worker.max_retries must not be negative")
	case c.DedupWindow < 0:
		return errors.New("dedup_window must not be negative")
	}
	return nil
}
