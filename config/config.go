package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// Config 服务配置，全部来自环境变量 (为了 Docker 部署方便)
type Config struct {
	Port      string
	Store     string // "postgres" 或 "memory"
	SeedFile  string
	JWTSecret string

	AdminUser     string
	AdminPassword string

	DB DBConfig

	MetersPerDegree      float64
	SnapDistanceMeters   float64
	MergeToleranceMeters float64
	EntranceRadiusMeters float64
	CurveSamples         int
	CurveAlpha           float64
}

// DBConfig 数据库连接参数
type DBConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	MaxRetries int
}

// DSN 拼接 PostgreSQL 连接串
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Shanghai",
		c.Host, c.User, c.Password, c.Name, c.Port,
	)
}

// Load 从环境变量读取配置，格式错误的数值回退到默认值并记录日志
func Load(logger *slog.Logger) Config {
	return Config{
		Port:          getEnvOrDefault("PORT", "8080"),
		Store:         getEnvOrDefault("STORE", "postgres"),
		SeedFile:      getEnvOrDefault("SEED_FILE", "walkways.geojson"),
		JWTSecret:     getEnvOrDefault("JWT_SECRET", "your-secret-key-change-in-production"),
		AdminUser:     getEnvOrDefault("ADMIN_USER", "admin"),
		AdminPassword: getEnvOrDefault("ADMIN_PASSWORD", "admin123"),
		DB: DBConfig{
			Host:       getEnvOrDefault("DB_HOST", "localhost"),
			Port:       getEnvOrDefault("DB_PORT", "5432"),
			User:       getEnvOrDefault("DB_USER", "campus"),
			Password:   getEnvOrDefault("DB_PASSWORD", "campus"),
			Name:       getEnvOrDefault("DB_NAME", "walkways"),
			MaxRetries: getEnvInt(logger, "DB_MAX_RETRIES", 30),
		},
		MetersPerDegree:      getEnvFloat(logger, "METERS_PER_DEGREE", 111320),
		SnapDistanceMeters:   getEnvFloat(logger, "SNAP_DISTANCE_METERS", 50),
		MergeToleranceMeters: getEnvFloat(logger, "MERGE_TOLERANCE_METERS", 2),
		EntranceRadiusMeters: getEnvFloat(logger, "ENTRANCE_RADIUS_METERS", 25),
		CurveSamples:         getEnvInt(logger, "CURVE_SAMPLES", 16),
		CurveAlpha:           getEnvFloat(logger, "CURVE_ALPHA", 0.5),
	}
}

// getEnvOrDefault 获取环境变量，如果不存在则返回默认值
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(logger *slog.Logger, key string, defaultVal float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		logger.Warn("配置值非法，使用默认值", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return v
}

func getEnvInt(logger *slog.Logger, key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		logger.Warn("配置值非法，使用默认值", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return v
}
