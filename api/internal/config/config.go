package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config собирается из окружения, опционального YAML-файла и значений по умолчанию.
// Отсутствие ключа API не ошибка загрузки: об этом сообщит первая генерация.
type Config struct {
	LLMProvider    string        `mapstructure:"llm_provider"`
	GeminiAPIKey   string        `mapstructure:"gemini_api_key"`
	GeminiModel    string        `mapstructure:"gemini_model"`
	OpenAIAPIKey   string        `mapstructure:"openai_api_key"`
	OpenAIModel    string        `mapstructure:"openai_model"`
	OpenAIBaseURL  string        `mapstructure:"openai_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	HistoryBackend string `mapstructure:"history_backend"` // file | postgres | redis | memory
	HistoryDir     string `mapstructure:"history_dir"`

	DatabaseURL      string `mapstructure:"database_url"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDB       string `mapstructure:"postgres_db"`
	PGHost           string `mapstructure:"pghost"`
	PGPort           string `mapstructure:"pgport"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	TelegramBotToken string `mapstructure:"telegram_bot_token"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ConfigFileEnv points at an optional YAML file with the same keys in lower case.
const ConfigFileEnv = "WRITING_GURU_CONFIG"

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.AutomaticEnv()
	// оригинальное имя переменной из веб-версии
	if err := v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm_provider", "gemini")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("request_timeout", "60s")

	v.SetDefault("history_backend", "file")
	v.SetDefault("history_dir", "")

	v.SetDefault("database_url", "")
	v.SetDefault("postgres_user", "writingguru")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db", "writingguru")
	v.SetDefault("pghost", "db")
	v.SetDefault("pgport", "5432")

	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("telegram_bot_token", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

func (c *Config) normalize() {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.HistoryBackend = strings.ToLower(strings.TrimSpace(c.HistoryBackend))
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 60 * time.Second
	}
	if strings.TrimSpace(c.HistoryDir) == "" {
		c.HistoryDir = defaultHistoryDir()
	}
}

func defaultHistoryDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "writing-guru")
	}
	return ".writing-guru"
}

// DSN returns DATABASE_URL or builds one from POSTGRES_* / PG* values.
func (c *Config) DSN() string {
	if v := strings.TrimSpace(c.DatabaseURL); v != "" {
		return v
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     net.JoinHostPort(c.PGHost, c.PGPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary: DSN без пароля, для логов.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
