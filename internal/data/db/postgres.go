package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/envutil"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SQLitePath string
}

func ConfigFromEnv() Config {
	return Config{
		Driver:     strings.ToLower(envutil.String("DB_DRIVER", DriverPostgres)),
		Host:       envutil.String("POSTGRES_HOST", "localhost"),
		Port:       envutil.String("POSTGRES_PORT", "5432"),
		User:       envutil.String("POSTGRES_USER", "postgres"),
		Password:   envutil.String("POSTGRES_PASSWORD", ""),
		Name:       envutil.String("POSTGRES_NAME", "neurobridge_voice"),
		SQLitePath: envutil.String("SQLITE_PATH", "neurobridge_voice.db"),
	}
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewService opens the content database with the configured driver.
func NewService(logg *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := logg.With("service", "DBService", "driver", cfg.Driver)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.Driver {
	case DriverSQLite:
		conn, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	case DriverPostgres, "":
		conn, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gcfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	serviceLog.Info("Database connected")
	return &Service{db: conn, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) AutoMigrateAll() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return err
	}
	s.log.Info("Database migrated")
	return nil
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.All()...)
}
