// Package config reads the process configuration once at start-up.
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"luckyDrawAPI/internal/prize"
)

const (
	BackendAppsScript = "appsscript"
	BackendSheets     = "sheets"
	BackendPostgres   = "postgres"
	BackendMemory     = "memory"
)

// Config is built once in main and handed to constructors; nothing reads it globally.
type Config struct {
	Port           string
	StoreBackend   string
	RequestTimeout time.Duration

	AppsScriptURL string

	SheetsSpreadsheetID   string
	SheetsSheetName       string
	SheetsCredentialsFile string
	SheetsCredentialsJSON string // base64

	DatabaseURL string

	Prizes           prize.Table
	LeaderboardLimit int
	Location         *time.Location

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies are the peers whose X-Forwarded-For is believed.
	TrustedProxies []netip.Prefix

	MetricsUser    string
	MetricsPass    string
	AllowedOrigins []string
	StaticDir      string
	LogFormat      string
}

type prizeFile struct {
	Prizes prize.Table `yaml:"prizes"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can supply their own.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:                  get("PORT", "3333"),
		StoreBackend:          strings.ToLower(get("STORE_BACKEND", BackendAppsScript)),
		AppsScriptURL:         get("GOOGLE_APPS_SCRIPT_URL", ""),
		SheetsSpreadsheetID:   get("SHEETS_SPREADSHEET_ID", ""),
		SheetsSheetName:       get("SHEETS_SHEET_NAME", "Sheet1"),
		SheetsCredentialsFile: get("SHEETS_CREDENTIALS_FILE", ""),
		SheetsCredentialsJSON: get("SHEETS_CREDENTIALS_JSON", ""),
		DatabaseURL:           get("DATABASE_URL", ""),
		MetricsUser:           get("METRICS_USER", ""),
		MetricsPass:           get("METRICS_PASS", ""),
		StaticDir:             get("STATIC_DIR", ""),
		LogFormat:             get("LOG_FORMAT", "text"),
	}

	switch cfg.StoreBackend {
	case BackendAppsScript, BackendSheets, BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	var err error
	if cfg.RequestTimeout, err = time.ParseDuration(get("REQUEST_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if cfg.LeaderboardLimit, err = strconv.Atoi(get("LEADERBOARD_LIMIT", "10")); err != nil || cfg.LeaderboardLimit < 0 {
		return nil, fmt.Errorf("invalid LEADERBOARD_LIMIT %q", getenv("LEADERBOARD_LIMIT"))
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "5"), 64); err != nil || !(cfg.RateLimitRPS > 0) {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q: must be a positive number", getenv("RATE_LIMIT_RPS"))
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "30")); err != nil || cfg.RateLimitBurst < 1 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q: must be at least 1", getenv("RATE_LIMIT_BURST"))
	}
	if cfg.TrustedProxies, err = ParseTrustedProxies(get("TRUSTED_PROXIES", "")); err != nil {
		return nil, err
	}
	if cfg.Location, err = time.LoadLocation(get("DISPLAY_TIMEZONE", "Asia/Ho_Chi_Minh")); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	for _, origin := range strings.Split(get("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if cfg.Prizes, err = loadPrizes(get("PRIZE_TABLE_FILE", ""), get("PRIZE_TABLE", "")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadPrizes(file, inline string) (prize.Table, error) {
	var table prize.Table
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read prize table file: %w", err)
		}
		var pf prizeFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prize table: %w", err)
		}
		table = pf.Prizes
	case inline != "":
		parsed, err := ParsePrizeTable(inline)
		if err != nil {
			return nil, err
		}
		table = parsed
	default:
		table = append(prize.Table(nil), prize.DefaultTable...)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prize table: %w", err)
	}
	return table, nil
}

// ParseTrustedProxies reads a comma-separated list of IPs and CIDR ranges.
func ParseTrustedProxies(s string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", part, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", part, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// ParsePrizeTable reads the inline form "amount:weight,amount:weight".
func ParsePrizeTable(s string) (prize.Table, error) {
	var table prize.Table
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		amountStr, weightStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("prize tier %q: want amount:weight", part)
		}
		amount, err := strconv.ParseInt(strings.TrimSpace(amountStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("prize tier %q: bad amount: %w", part, err)
		}
		weight, err := strconv.Atoi(strings.TrimSpace(weightStr))
		if err != nil {
			return nil, fmt.Errorf("prize tier %q: bad weight: %w", part, err)
		}
		table = append(table, prize.Tier{Amount: amount, Weight: weight})
	}
	return table, nil
}
