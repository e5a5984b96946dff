package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// 进度重算模式
const (
	ProgressModeSync  = "sync"
	ProgressModeAsync = "async"
)

// Config 全局配置（apiserver / worker / scanctl 共用）
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lmstfy   LmstfyConfig   `mapstructure:"lmstfy"`
	Progress ProgressConfig `mapstructure:"progress"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Workers  []WorkerConfig `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql | postgres
	DSN          string `mapstructure:"dsn"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// ProgressConfig 进度重算配置
type ProgressConfig struct {
	Mode    string        `mapstructure:"mode"`     // sync | async
	Queue   string        `mapstructure:"queue"`    // async 模式投递的队列
	Channel string        `mapstructure:"channel"`  // 进度变更通知频道前缀
	WaitMax time.Duration `mapstructure:"wait_max"` // 进度查询 Smart Wait 上限
}

// CatalogConfig 款式模板目录配置
type CatalogConfig struct {
	TemplateFile string `mapstructure:"template_file"` // 默认模板（数据库无记录时使用）
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// Load 从配置文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FZSCAN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadDefault 加载默认配置文件路径
func LoadDefault() (*Config, error) {
	return Load("config/config.yaml")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Progress.Mode == "" {
		c.Progress.Mode = ProgressModeSync
	}
	if c.Progress.Queue == "" {
		c.Progress.Queue = "order_progress"
	}
	if c.Progress.Channel == "" {
		c.Progress.Channel = "progress:order"
	}
	if c.Progress.WaitMax <= 0 {
		c.Progress.WaitMax = 10 * time.Second
	}
	if c.Lmstfy.Port == 0 {
		c.Lmstfy.Port = 7777
	}
}

// Validate 验证 apiserver 配置
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Database.Driver != "mysql" && c.Database.Driver != "postgres" {
		return fmt.Errorf("database driver %q not supported", c.Database.Driver)
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	switch c.Progress.Mode {
	case ProgressModeSync:
	case ProgressModeAsync:
		if c.Lmstfy.Host == "" {
			return fmt.Errorf("lmstfy host is required in async progress mode")
		}
		if c.Lmstfy.Token == "" {
			return fmt.Errorf("lmstfy token is required in async progress mode")
		}
	default:
		return fmt.Errorf("progress mode %q not supported", c.Progress.Mode)
	}
	return nil
}

// ValidateWorker 验证 worker 配置
func (c *Config) ValidateWorker() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	return nil
}

// GetServerPort 获取服务端口
func (c *Config) GetServerPort() string {
	if c.Server.Port != "" {
		return c.Server.Port
	}
	return "8080"
}
