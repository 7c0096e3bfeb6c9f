// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitConnection        `yaml:"rabbit_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Stripe                  `yaml:"stripe"`
	SMTPConnection          `yaml:"smtp_connection"`
	Coach                   `yaml:"coach"`
	Sweeper                 `yaml:"sweeper"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitConnection структура для настройки подключения к RabbitMQ.
type RabbitConnection struct {
	RabbitURL        string        `yaml:"rabbit_url" env:"RABBIT_URL"`
	RabbitRetries    int           `yaml:"rabbit_retries" env-default:"5"`
	RabbitRetryDelay time.Duration `yaml:"rabbit_retry_delay" env-default:"3s"`
}

// JWTToken структура для проверки jwt-токенов identity-провайдера.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Stripe настройки платёжного провайдера. Секретные ключи только из
// переменных окружения, в конфиг-файле их быть не должно.
type Stripe struct {
	StripeSecretKey     string `yaml:"-" env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `yaml:"-" env:"STRIPE_WEBHOOK_SECRET"`
	CheckoutSuccessURL  string `yaml:"checkout_success_url"`
	CheckoutCancelURL   string `yaml:"checkout_cancel_url"`
	PortalReturnURL     string `yaml:"portal_return_url"`
}

// SMTPConnection структура для настройки SMTP.
type SMTPConnection struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"-" env:"SMTP_PASS"`
}

// Coach настройки AI-тренера.
type Coach struct {
	CoachAPIKey  string        `yaml:"-" env:"COACH_API_KEY"`
	CoachBaseURL string        `yaml:"coach_base_url" env-default:"https://api.openai.com/v1"`
	CoachModel   string        `yaml:"coach_model" env-default:"gpt-4o-mini"`
	CoachTimeout time.Duration `yaml:"coach_timeout" env-default:"30s"`
}

// Sweeper настройки периодической проверки истёкших триалов.
type Sweeper struct {
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"1h"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, при ошибке завершает процесс.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
