package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Men4u     Men4uConfig
	Console   ConsoleConfig
	ListView  ListViewConfig
	DB        DBConfig
	Redis     RedisConfig
	CORS      CORSConfig
	OTPLimit  OTPRateLimitConfig
	Telemetry TelemetryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Men4u.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEN4U_ADMIN_APP_ENV" required:"true"`
	Port         string `envconfig:"MEN4U_ADMIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEN4U_ADMIN_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MEN4U_ADMIN_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"MEN4U_ADMIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Men4uConfig points the console at the remote men4u REST API.
type Men4uConfig struct {
	BaseURL       string        `envconfig:"MEN4U_ADMIN_MEN4U_BASE_URL" default:"https://men4u.xyz/v2"`
	AppSource     string        `envconfig:"MEN4U_ADMIN_MEN4U_APP_SOURCE" default:"admin_dashboard"`
	Timeout       time.Duration `envconfig:"MEN4U_ADMIN_MEN4U_TIMEOUT" default:"30s"`
	LoginPath     string        `envconfig:"MEN4U_ADMIN_MEN4U_LOGIN_PATH" default:"/common/login"`
	VerifyOTPPath string        `envconfig:"MEN4U_ADMIN_MEN4U_VERIFY_OTP_PATH" default:"/common/verify_otp"`
}

func (m Men4uConfig) validate() error {
	parsed, err := url.Parse(m.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute url, got %q", EnvMen4uBaseURL, m.BaseURL)
	}
	if strings.TrimSpace(m.AppSource) == "" {
		return fmt.Errorf("%s is required", EnvMen4uAppSource)
	}
	return nil
}

// ConsoleConfig signs the console token handed to the dashboard after login.
type ConsoleConfig struct {
	JWTSecret         string `envconfig:"MEN4U_ADMIN_JWT_SECRET" required:"true"`
	JWTIssuer         string `envconfig:"MEN4U_ADMIN_JWT_ISSUER" default:"men4u-admin"`
	MaxSessionMinutes int    `envconfig:"MEN4U_ADMIN_MAX_SESSION_MINUTES" default:"720"`
	CookieName        string `envconfig:"MEN4U_ADMIN_COOKIE_NAME" default:"men4u_console"`
	SecureCookie      bool   `envconfig:"MEN4U_ADMIN_SECURE_COOKIE" default:"true"`
}

// MaxSession returns the upper bound for a console session regardless of the backend expiry.
func (c ConsoleConfig) MaxSession() time.Duration {
	if c.MaxSessionMinutes <= 0 {
		return 0
	}
	return time.Duration(c.MaxSessionMinutes) * time.Minute
}

type ListViewConfig struct {
	DefaultPageSize int           `envconfig:"MEN4U_ADMIN_LIST_PAGE_SIZE" default:"10"`
	MaxPageSize     int           `envconfig:"MEN4U_ADMIN_LIST_MAX_PAGE_SIZE" default:"50"`
	SnapshotTTL     time.Duration `envconfig:"MEN4U_ADMIN_LIST_SNAPSHOT_TTL" default:"30m"`
}

type DBConfig struct {
	DSN         string `envconfig:"MEN4U_ADMIN_DB_DSN"`
	Driver      string `envconfig:"MEN4U_ADMIN_DB_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"MEN4U_ADMIN_AUTO_MIGRATE" default:"false"`

	Host     string `envconfig:"MEN4U_ADMIN_DB_HOST"`
	Port     int    `envconfig:"MEN4U_ADMIN_DB_PORT" default:"5432"`
	User     string `envconfig:"MEN4U_ADMIN_DB_USER"`
	Password string `envconfig:"MEN4U_ADMIN_DB_PASSWORD"`
	Name     string `envconfig:"MEN4U_ADMIN_DB_NAME"`
	SSLMode  string `envconfig:"MEN4U_ADMIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEN4U_ADMIN_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MEN4U_ADMIN_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"MEN4U_ADMIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEN4U_ADMIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the activity log runs on the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MEN4U_ADMIN_REDIS_URL"`
	Address      string        `envconfig:"MEN4U_ADMIN_REDIS_ADDR"`
	Password     string        `envconfig:"MEN4U_ADMIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEN4U_ADMIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEN4U_ADMIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEN4U_ADMIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEN4U_ADMIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEN4U_ADMIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEN4U_ADMIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured. Without one the console keeps
// sessions and list snapshots in process memory.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MEN4U_ADMIN_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type OTPRateLimitConfig struct {
	Window      time.Duration `envconfig:"MEN4U_ADMIN_OTP_RATE_LIMIT_WINDOW" default:"5m"`
	IPLimit     int           `envconfig:"MEN4U_ADMIN_OTP_RATE_LIMIT_IP_LIMIT" default:"20"`
	MobileLimit int           `envconfig:"MEN4U_ADMIN_OTP_RATE_LIMIT_MOBILE_LIMIT" default:"5"`
}

type TelemetryConfig struct {
	ServiceName  string `envconfig:"MEN4U_ADMIN_SERVICE_NAME" default:"men4u-admin"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
