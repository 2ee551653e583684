package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreDrive    = "drive"

	CatalogSheets = "sheets"
	CatalogCSV    = "csv"
)

type Config struct {
	Env            string        `mapstructure:"ENV" validate:"oneof=dev test prod"`
	Port           string        `mapstructure:"PORT" validate:"required,numeric"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT" validate:"gt=0"`
	HandlerTimeout time.Duration `mapstructure:"HANDLER_TIMEOUT" validate:"gt=0"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`

	TelegramToken        string `mapstructure:"TELEGRAM_TOKEN" validate:"required"`
	TelegramAPIEndpoint  string `mapstructure:"TELEGRAM_API_ENDPOINT"`
	TelegramFileEndpoint string `mapstructure:"TELEGRAM_FILE_ENDPOINT"`
	WebhookURL           string `mapstructure:"WEBHOOK_URL" validate:"omitempty,url"`
	WebhookSecret        string `mapstructure:"WEBHOOK_SECRET" validate:"omitempty,max=256"`
	OperatorIDs          string `mapstructure:"OPERATOR_IDS" validate:"required"`

	StoreDriver           string `mapstructure:"STORE_DRIVER" validate:"oneof=memory postgres sqlite drive"`
	DatabaseURL           string `mapstructure:"DATABASE_URL"`
	SQLitePath            string `mapstructure:"SQLITE_PATH"`
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	DriveRootFolderID     string `mapstructure:"DRIVE_ROOT_FOLDER_ID"`

	CatalogDriver       string `mapstructure:"CATALOG_DRIVER" validate:"oneof=sheets csv"`
	CatalogSheetID      string `mapstructure:"CATALOG_SHEET_ID"`
	CatalogRange        string `mapstructure:"CATALOG_RANGE"`
	CatalogImagesRange  string `mapstructure:"CATALOG_IMAGES_RANGE"`
	CatalogCSVURL       string `mapstructure:"CATALOG_CSV_URL" validate:"omitempty,url"`
	CatalogImagesCSVURL string `mapstructure:"CATALOG_IMAGES_CSV_URL" validate:"omitempty,url"`
	CatalogPageSize     int    `mapstructure:"CATALOG_PAGE_SIZE" validate:"min=1,max=50"`

	BrowsingSessionTTL   time.Duration `mapstructure:"BROWSING_SESSION_TTL" validate:"gte=0"`
	PendingReplyTTL      time.Duration `mapstructure:"PENDING_REPLY_TTL" validate:"gte=0"`
	SessionSweepSchedule string        `mapstructure:"SESSION_SWEEP_SCHEDULE"`
	ReplyRetainOnFailure bool          `mapstructure:"REPLY_RETAIN_ON_FAILURE"`
	ListLimit            int           `mapstructure:"LIST_LIMIT" validate:"min=1,max=100"`
	MaxAttachmentMB      int64         `mapstructure:"MAX_ATTACHMENT_MB" validate:"min=1"`

	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`
}

var defaults = map[string]any{
	"ENV":                     "dev",
	"PORT":                    "8080",
	"LOG_LEVEL":               "info",
	"REQUEST_TIMEOUT":         "30s",
	"HANDLER_TIMEOUT":         "60s",
	"CORS_ALLOWED_ORIGINS":    "*",
	"ADMIN_KEY":               "",
	"TELEGRAM_TOKEN":          "",
	"TELEGRAM_API_ENDPOINT":   "",
	"TELEGRAM_FILE_ENDPOINT":  "",
	"WEBHOOK_URL":             "",
	"WEBHOOK_SECRET":          "",
	"OPERATOR_IDS":            "",
	"STORE_DRIVER":            StoreMemory,
	"DATABASE_URL":            "",
	"SQLITE_PATH":             "bot.db",
	"GOOGLE_CREDENTIALS_FILE": "",
	"DRIVE_ROOT_FOLDER_ID":    "",
	"CATALOG_DRIVER":          CatalogSheets,
	"CATALOG_SHEET_ID":        "",
	"CATALOG_RANGE":           "Products!A:E",
	"CATALOG_IMAGES_RANGE":    "",
	"CATALOG_CSV_URL":         "",
	"CATALOG_IMAGES_CSV_URL":  "",
	"CATALOG_PAGE_SIZE":       5,
	"BROWSING_SESSION_TTL":    "30m",
	"PENDING_REPLY_TTL":       "24h",
	"SESSION_SWEEP_SCHEDULE":  "@every 10m",
	"REPLY_RETAIN_ON_FAILURE": false,
	"LIST_LIMIT":              10,
	"MAX_ATTACHMENT_MB":       20,
	"AMQP_URL":                "",
	"AMQP_EXCHANGE":           "support.events",
}

func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads path if it exists, then the environment. Every key has a
// default so that Unmarshal picks up values set only in the environment.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.CatalogDriver = strings.ToLower(strings.TrimSpace(cfg.CatalogDriver))
	return cfg, nil
}

// Validate checks everything serve needs.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := c.Operators(); err != nil {
		return err
	}
	if c.Env == "prod" && c.AdminKey == "" {
		return errors.New("ADMIN_KEY is required in prod")
	}
	if err := c.ValidateStore(); err != nil {
		return err
	}
	switch c.CatalogDriver {
	case CatalogSheets:
		if c.CatalogSheetID == "" {
			return errors.New("CATALOG_SHEET_ID is required for the sheets catalog")
		}
	case CatalogCSV:
		if c.CatalogCSVURL == "" {
			return errors.New("CATALOG_CSV_URL is required for the csv catalog")
		}
	}
	if c.AMQPURL != "" && c.AMQPExchange == "" {
		return errors.New("AMQP_EXCHANGE is required when AMQP_URL is set")
	}
	return nil
}

// ValidateStore checks only the object store settings, for commands that do
// not talk to Telegram.
func (c Config) ValidateStore() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case StoreDrive:
		if c.DriveRootFolderID == "" {
			return errors.New("DRIVE_ROOT_FOLDER_ID is required for the drive store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// Operators parses OPERATOR_IDS, a comma or space separated list of user ids.
func (c Config) Operators() ([]int64, error) {
	fields := strings.FieldsFunc(c.OperatorIDs, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return nil, errors.New("OPERATOR_IDS must list at least one user id")
	}
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid operator id %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
