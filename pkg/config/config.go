// Package config 提供 TOML 配置加载、环境变量覆盖与校验
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wyfcoding/pricebook/pkg/logger"
)

// EnvPrefix 环境变量前缀，book.instrument 对应 APP_BOOK_INSTRUMENT
const EnvPrefix = "APP"

// Config 服务配置
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// 价格簿配置
	Book BookConfig `mapstructure:"book"`
	// 审计配置
	Audit AuditConfig `mapstructure:"audit"`
	// Kafka 行情源配置
	Kafka KafkaConfig `mapstructure:"kafka"`
	// Redis 配置
	Redis RedisConfig `mapstructure:"redis"`
	// 日志配置
	Logger logger.Config `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// BookConfig 价格簿配置
type BookConfig struct {
	// 交易品种
	Instrument string `mapstructure:"instrument"`
	// 静态授权来源列表
	AuthorizedSources []string `mapstructure:"authorized_sources"`
	// 动态授权来源
	SourceRegistry SourceRegistryConfig `mapstructure:"source_registry"`
}

// SourceRegistryConfig Redis 授权来源配置
type SourceRegistryConfig struct {
	// 是否启用，启用后忽略 authorized_sources
	Enabled bool `mapstructure:"enabled"`
	// Redis set 的 key
	Key string `mapstructure:"key"`
	// 刷新间隔（秒）
	RefreshInterval int `mapstructure:"refresh_interval"`
}

// RefreshEvery 返回刷新间隔
func (c SourceRegistryConfig) RefreshEvery() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// AuditConfig 审计配置
type AuditConfig struct {
	// 异步缓冲区大小，0 表示同步写入
	BufferSize int `mapstructure:"buffer_size"`
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	// Broker 地址列表
	Brokers []string `mapstructure:"brokers"`
	// Consumer Group ID
	GroupID string `mapstructure:"group_id"`
	// 报价主题
	Topic string `mapstructure:"topic"`
	// 消费者会话超时（秒）
	SessionTimeout int `mapstructure:"session_timeout"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 主机地址
	Host string `mapstructure:"host"`
	// 端口
	Port int `mapstructure:"port"`
	// 密码
	Password string `mapstructure:"password"`
	// 数据库编号
	DB int `mapstructure:"db"`
	// 最大连接数
	MaxPoolSize int `mapstructure:"max_pool_size"`
	// 连接超时（秒）
	ConnTimeout int `mapstructure:"conn_timeout"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// Prometheus 监听端口
	Port int `mapstructure:"port"`
	// 指标路径
	Path string `mapstructure:"path"`
}

// Load 从 TOML 文件加载配置，配置文件必须存在
func Load(configPath string) (*Config, error) {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

// LoadWithDefaults 从 TOML 文件加载配置，文件不存在时只使用默认值与环境变量
func LoadWithDefaults(configPath string) (*Config, error) {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 没有默认值的键需要显式绑定，Unmarshal 才能读到环境变量
	for _, key := range []string{"book.instrument", "book.authorized_sources", "kafka.brokers", "redis.password"} {
		_ = v.BindEnv(key)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.Book.Instrument == "" {
		return fmt.Errorf("book.instrument is required")
	}
	if c.Book.SourceRegistry.Enabled {
		if c.Book.SourceRegistry.Key == "" {
			return fmt.Errorf("book.source_registry.key is required when the registry is enabled")
		}
		if c.Book.SourceRegistry.RefreshInterval <= 0 {
			return fmt.Errorf("invalid book.source_registry.refresh_interval: %d", c.Book.SourceRegistry.RefreshInterval)
		}
	} else if len(c.Book.AuthorizedSources) == 0 {
		return fmt.Errorf("book.authorized_sources must not be empty")
	}
	if c.Audit.BufferSize < 0 {
		return fmt.Errorf("invalid audit.buffer_size: %d", c.Audit.BufferSize)
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	if c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required")
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "pricebook")
	v.SetDefault("environment", "dev")

	v.SetDefault("book.source_registry.enabled", false)
	v.SetDefault("book.source_registry.key", "pricebook:authorized_sources")
	v.SetDefault("book.source_registry.refresh_interval", 30)

	v.SetDefault("audit.buffer_size", 1024)

	v.SetDefault("kafka.group_id", "pricebook")
	v.SetDefault("kafka.topic", "quotes")
	v.SetDefault("kafka.session_timeout", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/pricebook.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
