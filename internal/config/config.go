package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Leganyst/refresh-booking/internal/calendar"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Праздники Кореи на 2025 год; переопределяются через PUBLIC_HOLIDAYS.
const defaultPublicHolidays = "2025-01-01,2025-01-28,2025-01-29,2025-01-30,2025-03-01," +
	"2025-05-05,2025-05-06,2025-06-06,2025-08-15,2025-10-03," +
	"2025-10-05,2025-10-06,2025-10-07,2025-10-09,2025-12-25"

type DBConfig struct {
	Driver          string `mapstructure:"DB_DRIVER"`
	Host            string `mapstructure:"DB_HOST"`
	Port            int    `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	TimeZone        string `mapstructure:"DB_TIMEZONE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifeTime int    `mapstructure:"DB_CONN_MAX_LIFETIME_MIN"` // минут
	SQLitePath      string `mapstructure:"SQLITE_PATH"`
}

// BookingConfig: правила календаря записи.
type BookingConfig struct {
	TimeZone      string `mapstructure:"BOOKING_TIMEZONE"`
	LookaheadDays int    `mapstructure:"BOOKING_LOOKAHEAD_DAYS"`
	TargetDays    int    `mapstructure:"BOOKING_TARGET_DAYS"`
	DayEndCutoff  string `mapstructure:"BOOKING_DAY_END_CUTOFF"`

	// Заполняется в Load: в env это строка через запятую, в yaml список.
	PublicHolidays []string `mapstructure:"-"`
}

// RedisConfig описывает блокировки между экземплярами. Пустой Addr означает только локальные блокировки.
type RedisConfig struct {
	Addr       string `mapstructure:"REDIS_ADDR"`
	Password   string `mapstructure:"REDIS_PASSWORD"`
	LockDB     int    `mapstructure:"REDIS_LOCK_DB"`
	LockTTLSec int    `mapstructure:"REDIS_LOCK_TTL_SEC"`
}

type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	GRPCAddr string `mapstructure:"GRPC_ADDR"`

	DB      DBConfig      `mapstructure:",squash"`
	Booking BookingConfig `mapstructure:",squash"`
	Redis   RedisConfig   `mapstructure:",squash"`
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GRPC_ADDR", ":50051")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "postgres")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "booking")
	v.SetDefault("DB_PASSWORD", "booking")
	v.SetDefault("DB_NAME", "booking_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Seoul")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MIN", 30)
	v.SetDefault("SQLITE_PATH", "booking.db")

	v.SetDefault("BOOKING_TIMEZONE", "Asia/Seoul")
	v.SetDefault("BOOKING_LOOKAHEAD_DAYS", calendar.DefaultLookaheadCapDays)
	v.SetDefault("BOOKING_TARGET_DAYS", calendar.DefaultTargetDays)
	v.SetDefault("BOOKING_DAY_END_CUTOFF", "23:59")
	v.SetDefault("PUBLIC_HOLIDAYS", defaultPublicHolidays)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCK_DB", 0)
	v.SetDefault("REDIS_LOCK_TTL_SEC", 10)
}

// Load читает config.yaml из . или ./config (если есть), затем env.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		log.Println("no config file found, using environment variables only")
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Booking.PublicHolidays = splitList(v.Get("PUBLIC_HOLIDAYS"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		// минимальная валидация
		if blank(c.DB.Host) || blank(c.DB.User) || blank(c.DB.Name) {
			return fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	case DriverSQLite:
		if blank(c.DB.SQLitePath) {
			return fmt.Errorf("invalid DB config: SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("invalid DB config: unknown driver %q", c.DB.Driver)
	}

	if _, err := c.Booking.Location(); err != nil {
		return err
	}
	if _, err := c.Booking.DayEnd(); err != nil {
		return err
	}
	if _, err := c.Booking.Holidays(); err != nil {
		return err
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (b BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", b.TimeZone, err)
	}
	return loc, nil
}

// DayEnd - время, после которого день считается прошедшим для админских отметок.
func (b BookingConfig) DayEnd() (calendar.TimeOfDay, error) {
	t, err := calendar.ParseTimeOfDay(b.DayEndCutoff)
	if err != nil {
		return calendar.TimeOfDay{}, fmt.Errorf("invalid BOOKING_DAY_END_CUTOFF: %w", err)
	}
	return t, nil
}

func (b BookingConfig) Holidays() (calendar.PublicHolidays, error) {
	h, err := calendar.NewPublicHolidays(b.PublicHolidays...)
	if err != nil {
		return nil, fmt.Errorf("invalid PUBLIC_HOLIDAYS: %w", err)
	}
	return h, nil
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

func (r RedisConfig) LockTTL() time.Duration {
	return time.Duration(r.LockTTLSec) * time.Second
}
