package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"hostdesk/cmd/client/cmd/booking"
	"hostdesk/cmd/client/cmd/cliutil"
	"hostdesk/cmd/client/cmd/edit"
	"hostdesk/cmd/client/cmd/payment"
	"hostdesk/cmd/client/cmd/queue"
	"hostdesk/cmd/client/cmd/sync"
	"hostdesk/internal/app/client"
	"hostdesk/internal/app/client/config"
	"hostdesk/internal/utils/logger"
)

var (
	cfgFile    string
	cfg        *config.Config
	log        *slog.Logger
	app        *client.App
	debug      bool
	jsonOutput bool
	serverAddr string
)

var rootCmd = &cobra.Command{
	Use:   "hostdesk",
	Short: "Hostdesk - офлайн-клиент учёта бронирований",
	Long: `Hostdesk ведёт бронирования и платежи гостевого дома.

Без связи с сервером изменения сохраняются в локальной очереди и
отправляются автоматически, когда сервер снова доступен.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	err := rootCmd.Execute()
	if app != nil {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if serverAddr != "" {
		cfg.ServerAddress = serverAddr
	}
	if debug {
		cfg.Env = "dev"
	}

	log = logger.New(cfg.Env)

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(cliutil.WithApp(cmd.Context(), app))
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		viper.AddConfigPath(filepath.Join(home, ".hostdesk"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "подробные логи")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "адрес сервера host:port")

	rootCmd.AddCommand(booking.BookingCmd)
	rootCmd.AddCommand(payment.PaymentCmd)
	rootCmd.AddCommand(edit.EditCmd)
	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(queue.QueueCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runCmd)
}
