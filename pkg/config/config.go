package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nextup-api/pkg/logger"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Database DatabaseConfig
	NATS     NATSConfig // fan-out task events ข้าม API instances
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	Google   GoogleOAuthConfig
	AI       AIConfig
	Planner  PlannerConfig
	Sweep    SweepConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Env         string
	CORSOrigins string // comma separated
}

// StoreConfig เลือก storage driver: postgres | memory
type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// AutoMigrate รัน gorm AutoMigrate ตอน start (ปิดได้แล้วใช้ nextupctl migrate)
	AutoMigrate bool
}

type NATSConfig struct {
	URL     string // nats://localhost:4222
	Enabled bool
}

// RedisConfig สำหรับ folder lock และ run state
type RedisConfig struct {
	URL      string // redis://localhost:6379
	Password string
	DB       int
	Enabled  bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, file, both
	FilePath   string // logs/app.log
	MaxSize    int    // MB
	MaxBackups int
	MaxAge     int // วัน
	Compress   bool
}

type GoogleOAuthConfig struct {
	ClientID        string
	DesktopClientID string // OAuth client ของ desktop app (audience ของ ID token)
	ClientSecret    string
	RedirectURL     string
	FrontendURL     string // redirect หลัง OAuth (web)
	DeepLinkScheme  string // nextup:// สำหรับ desktop
}

// AIConfig ranking collaborator (Gemini)
type AIConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	Timeout         time.Duration
	RunTimeout      time.Duration // stuck detector threshold
	PersistPriority bool          // เขียน priority label กลับลง storage ด้วย
}

type PlannerConfig struct {
	LatencyFloor time.Duration
}

type SweepConfig struct {
	Retention time.Duration
	Timeout   time.Duration
}

func LoadConfig() (*Config, error) {
	// ไม่มี .env ก็ได้ ใช้ environment variables แทน
	_ = godotenv.Load()

	logDefaults := logger.DefaultConfig()
	logMaxSize, _ := strconv.Atoi(getEnv("LOG_MAX_SIZE", strconv.Itoa(logDefaults.MaxSize)))
	logMaxBackups, _ := strconv.Atoi(getEnv("LOG_MAX_BACKUPS", strconv.Itoa(logDefaults.MaxBackups)))
	logMaxAge, _ := strconv.Atoi(getEnv("LOG_MAX_AGE", strconv.Itoa(logDefaults.MaxAge)))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	temperature, _ := strconv.ParseFloat(getEnv("AI_TEMPERATURE", "0.7"), 32)
	maxTokens, _ := strconv.Atoi(getEnv("AI_MAX_OUTPUT_TOKENS", "4096"))

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "NextUp"),
			Port:        getEnv("APP_PORT", "8080"),
			Env:         getEnv("APP_ENV", "development"),
			CORSOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173,http://localhost:1420"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			DBName:      getEnv("DB_NAME", "nextup"),
			SSLMode:     getEnv("DB_SSL_MODE", "disable"),
			AutoMigrate: getEnv("DB_AUTO_MIGRATE", "true") == "true",
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnv("NATS_ENABLED", "true") == "true",
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Enabled:  getEnv("REDIS_ENABLED", "true") == "true",
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
			TTL:    getDuration("JWT_TTL", 7*24*time.Hour),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", logDefaults.Level),
			Format:     getEnv("LOG_FORMAT", logDefaults.Format),
			Output:     getEnv("LOG_OUTPUT", logDefaults.Output),
			FilePath:   getEnv("LOG_FILE", logDefaults.FilePath),
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAge,
			Compress:   getEnv("LOG_COMPRESS", strconv.FormatBool(logDefaults.Compress)) == "true",
		},
		Google: GoogleOAuthConfig{
			ClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
			DesktopClientID: getEnv("GOOGLE_DESKTOP_CLIENT_ID", ""),
			ClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:     getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			DeepLinkScheme:  getEnv("DEEP_LINK_SCHEME", "nextup"),
		},
		AI: AIConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Temperature:     float32(temperature),
			MaxOutputTokens: int32(maxTokens),
			Timeout:         getDuration("AI_TIMEOUT", 60*time.Second),
			RunTimeout:      getDuration("AI_RUN_TIMEOUT", 3*time.Minute),
			PersistPriority: getEnv("AI_PERSIST_PRIORITY", "false") == "true",
		},
		Planner: PlannerConfig{
			LatencyFloor: getDuration("LATENCY_FLOOR", 500*time.Millisecond),
		},
		Sweep: SweepConfig{
			Retention: getDuration("SWEEP_RETENTION", 120*time.Hour),
			Timeout:   getDuration("SWEEP_TIMEOUT", 30*time.Second),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getDuration อ่าน duration เช่น "500ms", "120h" (ค่าผิด format ใช้ default)
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}

// IsDevelopment ตรวจสอบว่าเป็น development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// UseMemoryStore true เมื่อ STORE_DRIVER=memory
func (c *Config) UseMemoryStore() bool {
	return c.Store.Driver == "memory"
}
