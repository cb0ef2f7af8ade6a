package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codewriterrussian/voc-selftest/internal/backend"
	"github.com/codewriterrussian/voc-selftest/internal/questions"
)

// app carries the resolved configuration to subcommands.
type app struct {
	v       *viper.Viper
	verbose bool
}

// Execute runs the quizctl root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	var configFile string

	root := &cobra.Command{
		Use:           "quizctl",
		Short:         "Manage vocabulary quiz questions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogger(cmd.ErrOrStderr(), a.verbose)
			return a.loadConfig(configFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./quizctl.yaml if present)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.String("backend", backend.KindFile, "question backend: file, jsonbin or postgres")
	pf.String("file", "questions.json", "local question file")
	pf.String("jsonbin-url", backend.DefaultJSONBinURL, "JSONBin API root")
	pf.String("bin-id", "", "JSONBin bin id")
	pf.String("api-key", "", "JSONBin master key")
	pf.String("database-url", "", "Postgres connection URL")
	pf.Duration("timeout", backend.DefaultTimeout, "timeout of a single backend call")
	_ = a.v.BindPFlags(pf)

	root.AddCommand(
		categoriesCmd(a),
		createCategoryCmd(a),
		appendCmd(a),
		deleteQuestionCmd(a),
		uploadCmd(a),
		downloadCmd(a),
		playCmd(a),
	)
	return root
}

func (a *app) loadConfig(path string) error {
	a.v.SetEnvPrefix("QUIZ")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName("quizctl")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// backendConfig returns the settings of the selected backend kind.
func (a *app) backendConfig(kind string) backend.Config {
	return backend.Config{
		Kind:        kind,
		FilePath:    a.v.GetString("file"),
		JSONBinURL:  a.v.GetString("jsonbin-url"),
		BinID:       a.v.GetString("bin-id"),
		APIKey:      a.v.GetString("api-key"),
		DatabaseURL: a.v.GetString("database-url"),
		Timeout:     a.v.GetDuration("timeout"),
	}
}

// openStore opens the configured backend and loads the question store.
func (a *app) openStore(ctx context.Context) (*questions.Store, func(), error) {
	b, closeFn, err := backend.Open(ctx, a.backendConfig(strings.ToLower(a.v.GetString("backend"))))
	if err != nil {
		return nil, nil, err
	}
	s := questions.New(b)
	s.Load(ctx)
	if st := s.Status(); st.LastError != "" {
		slog.Debug("Question store loaded with errors", "error", st.LastError)
	}
	return s, closeFn, nil
}

// commandContext bounds a whole command run.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 5*time.Minute)
}

func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
