package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/recomendashka/recomendashka/ai/llm"
	"github.com/recomendashka/recomendashka/ai/recommend"
	"github.com/recomendashka/recomendashka/ai/translate"
	"github.com/recomendashka/recomendashka/bot"
	"github.com/recomendashka/recomendashka/internal/profile"
	"github.com/recomendashka/recomendashka/internal/version"
	"github.com/recomendashka/recomendashka/metrics"
	"github.com/recomendashka/recomendashka/store"
	"github.com/recomendashka/recomendashka/store/db"
	"github.com/recomendashka/recomendashka/tmdb"
)

var rootCmd = &cobra.Command{
	Use:   "recomendashka",
	Short: `An AI-powered Telegram movie recommendation bot. Describe what you want to watch and get TMDB-verified picks.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Systemd services get their environment from the unit file.
		if !isRunningAsSystemdService() {
			_ = godotenv.Load()
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			MetricsPort: viper.GetInt("metrics-port"),
			Version:     version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			printDatabaseError(err, instanceProfile)
			slog.Error("failed to create db driver", "error", err)
			return
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		defer storeInstance.Close()
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate", "error", err)
			return
		}

		llmService, err := llm.NewService(&llm.Config{
			Provider:    instanceProfile.LLMProvider,
			Model:       instanceProfile.LLMModel,
			APIKey:      instanceProfile.LLMAPIKey,
			BaseURL:     instanceProfile.LLMBaseURL,
			MaxTokens:   instanceProfile.LLMMaxTokens,
			Temperature: float32(instanceProfile.LLMTemperature),
			Timeout:     instanceProfile.LLMTimeout,
		})
		if err != nil {
			slog.Error("failed to create LLM service", "error", err)
			return
		}

		translator := translate.NewTranslator(llmService)
		tmdbClient := tmdb.NewClient(&tmdb.Config{
			APIKey:    instanceProfile.TMDBAPIKey,
			BaseURL:   instanceProfile.TMDBBaseURL,
			Language:  instanceProfile.TMDBLanguage,
			RateLimit: int(instanceProfile.TMDBRateLimit),
		})
		engine := recommend.NewEngine(llmService, translator, tmdbClient, storeInstance)

		telegramBot, err := bot.New(&bot.Config{
			Token: instanceProfile.TelegramToken,
			Debug: instanceProfile.IsDev(),
		}, engine, storeInstance)
		if err != nil {
			slog.Error("failed to create bot", "error", err)
			return
		}

		if instanceProfile.MetricsPort > 0 {
			go metrics.Serve(ctx, instanceProfile.MetricsPort)
		}

		c := make(chan os.Signal, 1)
		// The default signal sent by `kill` is SIGTERM, which most
		// process managers use to request shutdown.
		signal.Notify(c, terminationSignals...)
		go func() {
			<-c
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("bot stopped with error", "error", err)
		}
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of bot, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().Int("metrics-port", 0, "port of the Prometheus /metrics endpoint, 0 disables it")

	for _, flag := range []string{"mode", "data", "driver", "dsn", "metrics-port"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("recomendashka")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("RecomenDashka %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)
	fmt.Printf("LLM provider: %s (%s)\n", profile.LLMProvider, profile.LLMModel)
	if profile.MetricsPort > 0 {
		fmt.Printf("Metrics: http://localhost:%d/metrics\n", profile.MetricsPort)
	}
	fmt.Println("\nHappy watching!")
}

// isRunningAsSystemdService detects if the process is running under systemd.
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

// printDatabaseError provides user-friendly messages for database
// connection issues.
func printDatabaseError(err error, profile *profile.Profile) {
	fmt.Fprintln(os.Stderr, "\n❌ Database Connection Failed")

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		fmt.Fprintln(os.Stderr, "\n📌 PostgreSQL is not running.")
		if profile.Driver == "postgres" {
			fmt.Fprintln(os.Stderr, "   Start PostgreSQL, or use SQLite for development:")
			fmt.Fprintln(os.Stderr, "   ./recomendashka --driver=sqlite --data=./data")
		}

	case strings.Contains(errMsg, "SSL is not enabled") || strings.Contains(errMsg, "sslmode"):
		fmt.Fprintln(os.Stderr, "\n📌 PostgreSQL SSL configuration mismatch.")
		fmt.Fprintln(os.Stderr, "   Add ?sslmode=disable to your DSN.")

	case strings.Contains(errMsg, "password authentication failed"):
		fmt.Fprintln(os.Stderr, "\n📌 PostgreSQL authentication failed.")
		fmt.Fprintln(os.Stderr, "   Check your credentials in the DSN or .env file.")

	default:
		fmt.Fprintln(os.Stderr, "\n📌 Error:", errMsg)
	}

	if _, statErr := os.Stat(".env"); statErr != nil {
		fmt.Fprintln(os.Stderr, "\n💡 Tip: Create a .env file for local configuration.")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
