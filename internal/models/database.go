package models

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"timeclock/internal/config"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens the configured SQL database and migrates the schema.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Database.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.SQLite.Path)
	case "mysql":
		dialector = mysql.Open(MySQLDSN(cfg.Database.MySQL))
	default:
		return nil, fmt.Errorf("unsupported SQL database type: %s", cfg.Database.Type)
	}

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// MySQLDSN builds the driver DSN. Times are read and written as UTC.
func MySQLDSN(c config.MySQLConfig) string {
	dc := driver.NewConfig()
	dc.User = c.Username
	dc.Passwd = c.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	dc.DBName = c.Database
	dc.ParseTime = true
	dc.Loc = time.UTC
	if c.Charset != "" {
		dc.Params = map[string]string{"charset": c.Charset}
	}
	return dc.FormatDSN()
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Employee{}, &Admin{}, &Record{}, &Session{}, &AuditLog{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
