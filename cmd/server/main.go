package main

import (
	"fmt"
	"os"

	"github.com/folio/internal/config"
	"github.com/folio/internal/db"
	"github.com/folio/internal/logger"
	"github.com/spf13/cobra"
)

// rootCmd 不带子命令时直接启动服务
var rootCmd = &cobra.Command{
	Use:           "folio",
	Short:         "Personal portfolio server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap 读取配置、初始化日志并连接数据库
func bootstrap() (config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.LogLevel)

	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseDSN); err != nil {
		return config.AppConfig{}, fmt.Errorf("initialize database: %w", err)
	}
	return cfg, nil
}
