package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type config struct {
	bind      string
	port      int
	storage   string
	redisURL  string
	questions string
	publicURL string
	logLevel  string
}

func (c *config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.storage != "memory" && c.storage != "redis" {
		return fmt.Errorf("invalid storage backend: %s", c.storage)
	}
	if c.storage == "redis" && c.redisURL == "" {
		return errors.New("--redis-url required when --storage=redis")
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.logLevel)
	}
	return nil
}

func newRootCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizrace",
		Short:         "Realtime trivia race game server",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.StringVarP(&cfg.bind, "bind", "b", "", "address to bind to (env: QUIZRACE_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: QUIZRACE_PORT)")
	fs.StringVar(&cfg.storage, "storage", "memory", "storage backend: memory, redis (env: QUIZRACE_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection URL (env: QUIZRACE_REDIS_URL)")
	fs.StringVar(&cfg.questions, "questions", "", "path to a question set JSON file; embedded defaults if unset (env: QUIZRACE_QUESTIONS)")
	fs.StringVar(&cfg.publicURL, "public-url", "http://localhost:8080", "externally visible base URL, used in join QR codes (env: QUIZRACE_PUBLIC_URL)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn, error (env: QUIZRACE_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}
