package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/xavierca1/stockwatch/internal/entity"
	"github.com/xavierca1/stockwatch/internal/infra/mail"
)

const (
	DefaultSMTPPort  = 587
	DefaultStateFile = "stock_state.json"
	patternSeparator = ";"
)

// Config is read once at startup and passed to the components that need it.
type Config struct {
	SMTP            mail.SMTPConfig
	Product         entity.Product
	Rules           entity.AvailabilityRules
	StateFile       string
	MetricsTextfile string
	LogLevel        string
}

// LockFile is the advisory lock path that guards the state file.
func (c *Config) LockFile() string {
	return c.StateFile + ".lock"
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	var errs ValidationErrors
	get := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	cfg := &Config{
		SMTP: mail.SMTPConfig{
			Host:     get("SMTP_HOST"),
			Port:     DefaultSMTPPort,
			User:     get("SMTP_USERNAME"),
			Password: getenv("SMTP_PASSWORD"),
			From:     get("MAIL_FROM"),
			To:       splitList(getenv("MAIL_TO"), ","),
		},
		Rules:           entity.DefaultAvailabilityRules(),
		StateFile:       get("STATE_FILE"),
		MetricsTextfile: get("METRICS_TEXTFILE"),
		LogLevel:        strings.ToLower(get("LOG_LEVEL")),
	}

	if raw := get("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			errs = append(errs, ValidationError{"SMTP_PORT", "must be a port number"})
		} else {
			cfg.SMTP.Port = port
		}
	}

	product, err := entity.NewProduct(getenv("PRODUCT_NAME"), getenv("PRODUCT_URL"))
	if err != nil {
		errs = append(errs, ValidationError{"PRODUCT_URL", err.Error()})
	} else {
		cfg.Product = *product
	}

	if p := splitList(getenv("OUT_OF_STOCK_PATTERNS"), patternSeparator); len(p) > 0 {
		cfg.Rules.OutOfStock = p
	}
	if p := splitList(getenv("IN_STOCK_PATTERNS"), patternSeparator); len(p) > 0 {
		cfg.Rules.InStock = p
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFile
	}

	errs = append(errs, validateSMTP(cfg.SMTP)...)
	if len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

// splitList splits on sep, trims each item and drops empty ones.
func splitList(raw, sep string) []string {
	var out []string
	for _, item := range strings.Split(raw, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
