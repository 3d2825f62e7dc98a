package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	ModeDatabase = "database"
	ModeMemory   = "memory"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress string
	GRPCAddress   string
	DatabaseDSN   string
	LogLevel      string
	Mode          string

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3LinkTTL   time.Duration

	ShelvesEmptyNotFound bool
	RateLimitRPS         float64
	RateLimitBurst       int
	CORSOrigins          []string

	EnableHTTPS bool
	TLSCertPath string
	TLSKeyPath  string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDRESS", "localhost:8080") // Значения по умолчанию
	v.SetDefault("GRPC_ADDRESS", "localhost:3200")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "static")
	v.SetDefault("S3_LINK_TTL", time.Hour)
	v.SetDefault("SHELVES_EMPTY_NOT_FOUND", true)
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("ENABLE_HTTPS", false)
	v.SetDefault("TLS_CERT_PATH", "cert.pem")
	v.SetDefault("TLS_KEY_PATH", "key.pem")
}

// flagKeys связывает флаги командной строки с ключами конфигурации.
var flagKeys = map[string]string{
	"a":    "SERVER_ADDRESS",
	"g":    "GRPC_ADDRESS",
	"d":    "DATABASE_DSN",
	"l":    "LOG_LEVEL",
	"s":    "ENABLE_HTTPS",
	"cert": "TLS_CERT_PATH",
	"key":  "TLS_KEY_PATH",
}

// NewConfig собирает конфигурацию. Приоритет по возрастанию: значения по
// умолчанию, JSON-файл (-c/-config/CONFIG), .env, переменные окружения,
// флаги командной строки.
func NewConfig(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	fs := flag.NewFlagSet("account", flag.ContinueOnError)
	fs.String("a", "", "HTTP server address")
	fs.String("g", "", "gRPC health server address, empty disables it")
	fs.String("d", "", "PostgreSQL DSN")
	fs.String("l", "", "log level")
	fs.Bool("s", false, "enable HTTPS")
	fs.String("cert", "", "path to TLS certificate")
	fs.String("key", "", "path to TLS key")
	configPath := fs.String("c", "", "path to JSON config file")
	fs.StringVar(configPath, "config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// JSON-конфигурация ниже окружения: её значения становятся умолчаниями.
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG")
	}
	if *configPath != "" {
		if err := mergeJSON(v, *configPath); err != nil {
			return nil, err
		}
	}

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // Ошибку игнорируем, если файла нет

	// Переданные флаги имеют высший приоритет
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	cfg := &Config{
		ServerAddress:        v.GetString("SERVER_ADDRESS"),
		GRPCAddress:          v.GetString("GRPC_ADDRESS"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		S3Endpoint:           v.GetString("S3_ENDPOINT"),
		S3Region:             v.GetString("S3_REGION"),
		S3AccessKey:          v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:          v.GetString("S3_SECRET_KEY"),
		S3Bucket:             v.GetString("S3_BUCKET"),
		S3LinkTTL:            v.GetDuration("S3_LINK_TTL"),
		ShelvesEmptyNotFound: v.GetBool("SHELVES_EMPTY_NOT_FOUND"),
		RateLimitRPS:         v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:       v.GetInt("RATE_LIMIT_BURST"),
		CORSOrigins:          splitList(v.GetString("CORS_ORIGINS")),
		EnableHTTPS:          v.GetBool("ENABLE_HTTPS"),
		TLSCertPath:          v.GetString("TLS_CERT_PATH"),
		TLSKeyPath:           v.GetString("TLS_KEY_PATH"),
	}

	// Определяем режим работы
	if cfg.DatabaseDSN != "" {
		cfg.Mode = ModeDatabase
	} else {
		cfg.Mode = ModeMemory
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}
	return cfg, nil
}

func mergeJSON(v *viper.Viper, path string) error {
	jv := viper.New()
	jv.SetConfigFile(path)
	jv.SetConfigType("json")
	if err := jv.ReadInConfig(); err != nil {
		return fmt.Errorf("не удалось прочитать JSON-файл конфигурации %q: %w", path, err)
	}
	for _, key := range jv.AllKeys() {
		v.SetDefault(strings.ToUpper(key), jv.Get(key))
	}
	return nil
}

func splitList(raw string) []string {
	var result []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// ObjectStoreEnabled сообщает, настроено ли объектное хранилище.
func (cfg *Config) ObjectStoreEnabled() bool {
	return cfg.S3Endpoint != ""
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.ServerAddress == "" {
		errs = append(errs, errors.New("адрес сервера не может быть пустым"))
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("неизвестный уровень логирования %q", cfg.LogLevel))
	}
	if cfg.EnableHTTPS && (cfg.TLSCertPath == "" || cfg.TLSKeyPath == "") {
		errs = append(errs, errors.New("для HTTPS нужны сертификат и ключ"))
	}
	if cfg.ObjectStoreEnabled() && (cfg.S3Bucket == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "") {
		errs = append(errs, errors.New("для S3 нужны бакет и ключи доступа"))
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		errs = append(errs, errors.New("лимиты запросов не могут быть отрицательными"))
	}
	return errors.Join(errs...)
}
