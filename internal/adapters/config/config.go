package config

import (
	"fmt"
	"log"
	"os"
	"time"

	postgresStorage "github.com/qrstudio/qrstudio-bot/internal/adapters/database/postgres"
	"github.com/qrstudio/qrstudio-bot/internal/adapters/database/redis"
	"github.com/qrstudio/qrstudio-bot/internal/domain/utils/location"
	"github.com/qrstudio/qrstudio-bot/pkg/logger"
	qr "github.com/qrstudio/qrstudio-bot/pkg/qrcode"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Config struct {
	Database   *gorm.DB
	Redis      *redis.Client
	SMTPDialer *gomail.Dialer
	QR         QR
	HTTP       HTTP
}

// QR holds settings.qr.
type QR struct {
	Defaults qr.Config
	MinSize  int
	MaxSize  int
	LogosDir string
	CacheTTL time.Duration
}

// HTTP holds settings.http.
type HTTP struct {
	Enabled bool
	Address string
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("settings.timezone", "UTC")
	viper.SetDefault("settings.qr.default-size", 300)
	viper.SetDefault("settings.qr.min-size", 100)
	viper.SetDefault("settings.qr.max-size", 2000)
	viper.SetDefault("settings.qr.logos-dir", "logos")
	viper.SetDefault("settings.qr.cache-ttl", "24h")
	viper.SetDefault("settings.http.address", ":8080")
	viper.SetDefault("service.redis.state-ttl", "45m")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	if err := os.Setenv("BOT_TOKEN", viper.GetString("bot.token")); err != nil {
		panic(err)
	}
}

func Get() *Config {
	initConfig()

	err := logger.Init(logger.Config{
		Debug:        viper.GetBool("settings.debug"),
		TimeLocation: location.Location(),
		LogToFile:    viper.GetBool("settings.logging.log-to-file"),
		LogsDir:      viper.GetString("settings.logging.logs-dir"),
		MaxSizeMB:    viper.GetInt("settings.logging.max-size-mb"),
		MaxBackups:   viper.GetInt("settings.logging.max-backups"),
		MaxAgeDays:   viper.GetInt("settings.logging.max-age-days"),
	})
	if err != nil {
		panic(err)
	}

	var gormConfig *gorm.Config
	if viper.GetBool("settings.debug") {
		newLogger := gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
		gormConfig = &gorm.Config{
			Logger: newLogger,
		}
	} else {
		gormConfig = &gorm.Config{}
	}

	dsn := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=disable TimeZone=%s",
		viper.GetString("service.database.user"),
		viper.GetString("service.database.password"),
		viper.GetString("service.database.name"),
		viper.GetString("service.database.host"),
		viper.GetInt("service.database.port"),
		location.Location().String(),
	)

	database, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		logger.Log.Panicf("Failed to connect to the database: %v", err)
	} else {
		logger.Log.Info("Successfully connected to the database")
	}

	errMigrate := database.AutoMigrate(postgresStorage.Migrations...)
	if errMigrate != nil {
		logger.Log.Panicf("Failed to migrate database: %v", errMigrate)
	}

	redisClient, err := redis.New(redis.Options{
		Host:     viper.GetString("service.redis.host"),
		Port:     viper.GetString("service.redis.port"),
		Password: viper.GetString("service.redis.password"),
		StateTTL: viper.GetDuration("service.redis.state-ttl"),
	})
	if err != nil {
		logger.Log.Panicf("Failed to connect to redis: %v", err)
	} else {
		logger.Log.Info("Successfully connected to redis")
	}

	smtpDialer := gomail.NewDialer(
		viper.GetString("service.smtp.host"),
		viper.GetInt("service.smtp.port"),
		viper.GetString("service.smtp.email"),
		viper.GetString("service.smtp.password"),
	)

	qrConfig, err := loadQR()
	if err != nil {
		logger.Log.Panicf("Invalid qr settings: %v", err)
	}

	return &Config{
		Database:   database,
		Redis:      redisClient,
		SMTPDialer: smtpDialer,
		QR:         qrConfig,
		HTTP: HTTP{
			Enabled: viper.GetBool("settings.http.enabled"),
			Address: viper.GetString("settings.http.address"),
		},
	}
}

// loadQR reads settings.qr. Colours, level and style fall back to the
// renderer defaults when unset.
func loadQR() (QR, error) {
	defaults := qr.Default
	defaults.Size = viper.GetInt("settings.qr.default-size")

	if s := viper.GetString("settings.qr.foreground"); s != "" {
		c, err := qr.ParseColor(s)
		if err != nil {
			return QR{}, err
		}
		defaults.Foreground = c
	}
	if s := viper.GetString("settings.qr.background"); s != "" {
		c, err := qr.ParseColor(s)
		if err != nil {
			return QR{}, err
		}
		defaults.Background = c
	}
	if s := viper.GetString("settings.qr.level"); s != "" {
		defaults.Level = qr.ErrorCorrection(s)
	}
	if s := viper.GetString("settings.qr.style"); s != "" {
		defaults.Style = qr.Style(s)
	}

	cfg := QR{
		Defaults: defaults,
		MinSize:  viper.GetInt("settings.qr.min-size"),
		MaxSize:  viper.GetInt("settings.qr.max-size"),
		LogosDir: viper.GetString("settings.qr.logos-dir"),
		CacheTTL: viper.GetDuration("settings.qr.cache-ttl"),
	}

	switch {
	case cfg.MinSize <= 0 || cfg.MaxSize > qr.MaxSize || cfg.MinSize > cfg.MaxSize:
		return QR{}, fmt.Errorf("%w: size bounds %d..%d", qr.ErrInvalidOptions, cfg.MinSize, cfg.MaxSize)
	case defaults.Size < cfg.MinSize || defaults.Size > cfg.MaxSize:
		return QR{}, fmt.Errorf("%w: default size %d", qr.ErrInvalidOptions, defaults.Size)
	case !defaults.Level.Valid():
		return QR{}, fmt.Errorf("%w: level %q", qr.ErrInvalidOptions, defaults.Level)
	case !defaults.Style.Valid():
		return QR{}, fmt.Errorf("%w: style %q", qr.ErrInvalidOptions, defaults.Style)
	}

	return cfg, nil
}
