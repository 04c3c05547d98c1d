// Package cli собирает команды flowtrace: HTTP сервер, разовый расчёт,
// список примеров и миграции истории.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"flowtrace/pkg/config"
	"flowtrace/pkg/logger"
)

// app общее состояние команд, заполняется в PersistentPreRunE
type app struct {
	version    string
	configFile string
	logLevel   string
	cfg        *config.Config
}

// NewRootCommand корневая команда со всеми подкомандами
func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "flowtrace",
		Short: "Edmonds-Karp maximum flow with a step-by-step trace",
		Long: `flowtrace computes the maximum s-t flow of a capacity matrix with the
Edmonds-Karp method and records every augmenting path together with the
residual graph it was found in.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "path to config.yaml (default: search standard locations)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newSolveCmd(a))
	root.AddCommand(newExamplesCmd(a))
	root.AddCommand(newMigrateCmd(a))

	return root
}

// Execute запускает CLI с контекстом, отменяемым по сигналу
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// load читает конфигурацию и настраивает логгер.
// serve пишет логи по секции log, остальные команды - текстом в stderr.
func (a *app) load(cmd *cobra.Command) error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.version != "" && a.version != "dev" {
		cfg.App.Version = a.version
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	if cmd.Name() == "serve" {
		logger.InitWithConfig(logger.Config{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			FilePath:   cfg.Log.FilePath,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		})
		return nil
	}

	level := a.logLevel
	if level == "" {
		level = "warn"
	}
	logger.Log = logger.NewWithWriter(cmd.ErrOrStderr(), level, "text")
	slog.SetDefault(logger.Log)
	return nil
}
