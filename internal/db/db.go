package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 根据驱动打开数据库连接并执行自动迁移。
// sqlite 的 dsn 为空时回退到 folio.db。
func Init(driver, dsn string) error {
	gdb, err := Open(driver, dsn)
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	DB = gdb
	return nil
}

// Open 建立连接并调优连接池，不做迁移。
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "folio.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(path)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap db: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gdb, nil
}

// Migrate 为全部模型建表，并补充 ORM 标签无法表达的约束。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&User{},
		&PersonalInfo{},
		&SocialLink{},
		&SkillCategory{},
		&Skill{},
		&Project{},
		&Education{},
		&Certification{},
		&CV{},
		&ContactMessage{},
	); err != nil {
		return err
	}

	// 同一时刻最多一份激活的简历；MySQL 不支持部分索引，只依赖事务切换。
	switch gdb.Dialector.Name() {
	case "sqlite":
		return gdb.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_cvs_single_active ON cvs (is_active) WHERE is_active = 1").Error
	case "postgres":
		return gdb.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_cvs_single_active ON cvs (is_active) WHERE is_active").Error
	}
	return nil
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
