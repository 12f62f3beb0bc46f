package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SMSConfig groups the outbound SMS provider settings.
type SMSConfig struct {
	APIURL        string
	APIToken      string
	SenderID      string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Enabled       bool
	MockMode      bool
}

// LatePolicy holds the lateness tunables. None of these are hardcoded at the
// call sites; they flow from configuration into the services that need them.
type LatePolicy struct {
	GracePeriod        time.Duration
	ThresholdMinutes   int
	CriticalRemaining  int
	ModerateRemaining  int
	AbsenceWindowDays  int
	AbsenceSweepPeriod time.Duration
}

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	SchoolTimezone string
	QRSalt         string
	ScanDedupeTTL  time.Duration
	Late           LatePolicy
	SMS            SMSConfig
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ATTEND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Attendance API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("school.timezone", "Asia/Manila")
	v.SetDefault("scan.dedupe_ttl", "10s")
	v.SetDefault("late.grace_seconds", 60)
	v.SetDefault("late.threshold_minutes", 70)
	v.SetDefault("late.critical_remaining", 15)
	v.SetDefault("late.moderate_remaining", 30)
	v.SetDefault("absence.window_days", 3)
	v.SetDefault("absence.sweep_period", "1h")
	v.SetDefault("sms.api_url", "https://dashboard.philsms.com/api/v3/sms/send")
	v.SetDefault("sms.sender_id", "RizalHigh")
	v.SetDefault("sms.timeout_ms", 5000)
	v.SetDefault("sms.retry_attempts", 1)
	v.SetDefault("sms.retry_delay_ms", 30000)
	v.SetDefault("sms.enabled", false)
	v.SetDefault("sms.mock_mode", false)

	dedupeTTL, err := time.ParseDuration(v.GetString("scan.dedupe_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid scan dedupe ttl: %w", err)
	}

	sweepPeriod, err := time.ParseDuration(v.GetString("absence.sweep_period"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid absence sweep period: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		JWTSecret:      v.GetString("jwt.secret"),
		SchoolTimezone: v.GetString("school.timezone"),
		QRSalt:         v.GetString("qr.salt"),
		ScanDedupeTTL:  dedupeTTL,
		Late: LatePolicy{
			GracePeriod:        time.Duration(v.GetInt("late.grace_seconds")) * time.Second,
			ThresholdMinutes:   v.GetInt("late.threshold_minutes"),
			CriticalRemaining:  v.GetInt("late.critical_remaining"),
			ModerateRemaining:  v.GetInt("late.moderate_remaining"),
			AbsenceWindowDays:  v.GetInt("absence.window_days"),
			AbsenceSweepPeriod: sweepPeriod,
		},
		SMS: SMSConfig{
			APIURL:        v.GetString("sms.api_url"),
			APIToken:      v.GetString("sms.api_token"),
			SenderID:      v.GetString("sms.sender_id"),
			Timeout:       time.Duration(v.GetInt("sms.timeout_ms")) * time.Millisecond,
			RetryAttempts: v.GetInt("sms.retry_attempts"),
			RetryDelay:    time.Duration(v.GetInt("sms.retry_delay_ms")) * time.Millisecond,
			Enabled:       v.GetBool("sms.enabled"),
			MockMode:      v.GetBool("sms.mock_mode"),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.QRSalt == "" {
		return Config{}, fmt.Errorf("qr salt must be provided")
	}

	if cfg.Late.ThresholdMinutes <= 0 {
		cfg.Late.ThresholdMinutes = 70
	}

	if cfg.SMS.RetryAttempts < 0 {
		cfg.SMS.RetryAttempts = 0
	}

	return cfg, nil
}
