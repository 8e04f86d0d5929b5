package config

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
	"gopkg.in/yaml.v3"
)

var ctx = context.Background()

type ServerConfig struct {
	Port    string `yaml:"port"`
	SiteURL string `yaml:"site_url"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	// Expire is the token lifetime in seconds; the auth cookie uses the same value.
	Expire int64 `yaml:"expire"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

type ImgurConfig struct {
	ClientID string `yaml:"client_id"`
}

type SessionConfig struct {
	Secret string `yaml:"secret"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Google   GoogleConfig   `yaml:"google"`
	Imgur    ImgurConfig    `yaml:"imgur"`
	Session  SessionConfig  `yaml:"session"`
}

var GlobalConfig *Config
var RedisClient *redis.Client

// Default returns the built-in local-dev configuration; every field can be
// overridden by config.yaml and then by environment variables.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: ":8080", SiteURL: "http://localhost:8080"},
		Database: DatabaseConfig{DSN: "host=localhost user=postgres password=postgres dbname=techblog port=5432 sslmode=disable"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		JWT:      JWTConfig{Secret: "change_me_in_production", Expire: 30 * 24 * 3600},
		Session:  SessionConfig{Secret: "session_secret_change_me"},
	}
}

// InitConfig loads config.yaml from path (optional) and applies env overrides.
func InitConfig(path string) {
	GlobalConfig = Default()
	data, err := os.ReadFile(path + "/config.yaml")
	if err == nil {
		if err := yaml.Unmarshal(data, GlobalConfig); err != nil {
			log.Fatalf("Parse config failed: %v", err)
		}
	} else {
		log.Println("No config.yaml found, using defaults + environment")
	}
	applyEnvOverrides()
}

// InitRedis connects the shared Redis client used by the login rate limiter.
func InitRedis() {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     GlobalConfig.Redis.Addr,
		Password: GlobalConfig.Redis.Password,
		DB:       GlobalConfig.Redis.DB,
	})
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}
	log.Println("Redis connection established")
}

func applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		GlobalConfig.Server.Port = ":" + v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		GlobalConfig.Server.SiteURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		GlobalConfig.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		GlobalConfig.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		GlobalConfig.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		GlobalConfig.JWT.Secret = v
	}
	if v := os.Getenv("JWT_EXPIRE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			GlobalConfig.JWT.Expire = parsed
		}
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		GlobalConfig.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		GlobalConfig.Google.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REDIRECT_URL"); v != "" {
		GlobalConfig.Google.RedirectURL = v
	}
	if v := os.Getenv("IMGUR_CLIENT_ID"); v != "" {
		GlobalConfig.Imgur.ClientID = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		GlobalConfig.Session.Secret = v
	}
}
