package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/BTreeMap/PlayaBooth/internal/booth"
	"github.com/BTreeMap/PlayaBooth/internal/metrics"
	"github.com/BTreeMap/PlayaBooth/internal/prompt"
	"github.com/BTreeMap/PlayaBooth/internal/questionnaire"
	"github.com/BTreeMap/PlayaBooth/internal/store"
	"github.com/BTreeMap/PlayaBooth/internal/ui"
	"github.com/spf13/cobra"
)

func newRootCmd(config Config) *cobra.Command {
	flags := Flags{}

	rootCmd := &cobra.Command{
		Use:   "playabooth",
		Short: "Playa nickname booth",
		Long: `playabooth asks a few questions, generates playa nickname candidates with an
LLM provider and records each session and its feedback for later analysis.

Examples:
  playabooth                              # Interactive booth
  playabooth --prefill answers.yaml --once # One non-interactive questionnaire
  playabooth dump                         # All sessions as JSON
  playabooth dump 12                      # One session as JSON`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBooth(cmd.Context(), config, flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.stateDir, "state-dir", config.StateDir, "state directory for the session database and logs (overrides $PLAYABOOTH_STATE_DIR)")
	rootCmd.PersistentFlags().StringVar(&flags.dbDSN, "db-dsn", "", "session store DSN, SQLite path or PostgreSQL URL (overrides $DATABASE_URL)")

	rootCmd.Flags().StringVar(&flags.prefill, "prefill", "", "YAML or JSON file of answers keyed by question id")
	rootCmd.Flags().StringVar(&flags.style, "style", "", "style key used instead of the catalog default")
	rootCmd.Flags().BoolVar(&flags.once, "once", false, "exit after one cycle returns to the start screen")
	rootCmd.Flags().StringArrayVar(&flags.avoid, "avoid", nil, "name the generator must not suggest (repeatable)")
	rootCmd.Flags().BoolVar(&flags.qr, "qr", config.QR, "show a QR code of the generated names (overrides $PLAYABOOTH_QR)")
	rootCmd.Flags().StringVar(&flags.provider, "provider", "", "LLM provider: openai, ollama or claude (overrides $LLM_PROVIDER)")
	rootCmd.Flags().StringVar(&flags.model, "model", "", "model name (overrides the provider's model variable)")

	rootCmd.AddCommand(newDumpCmd(config, &flags))
	rootCmd.AddCommand(newQuestionsCmd(config))
	return rootCmd
}

func runBooth(ctx context.Context, config Config, flags Flags) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	closeLog := initializeLogger(config, flags.stateDir)
	defer closeLog()

	cat, err := loadCatalog(config)
	if err != nil {
		return err
	}
	promptOpts, err := buildPromptOptions(config)
	if err != nil {
		return err
	}
	genaiOpts, err := buildGenAIOptions(flags, config)
	if err != nil {
		return err
	}

	var prefill map[string]string
	if flags.prefill != "" {
		prefill, err = questionnaire.LoadPrefill(flags.prefill, cat.Questions)
		if err != nil {
			return err
		}
	}

	st := openStore(ctx, resolveDSN(flags, config))
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close session store", "error", err)
		}
	}()

	rec := metrics.New(ctx, metrics.LoadConfig())
	defer func() {
		if err := rec.Close(context.Background()); err != nil {
			slog.Warn("failed to flush metrics", "error", err)
		}
	}()

	in, release := ui.CancelableInput(ctx, os.Stdin)
	defer release()
	term := ui.NewTerminal(in, os.Stdout, ui.WithQR(flags.qr))

	machine := booth.NewMachine(booth.Dependencies{
		Screen:    term,
		Catalog:   cat,
		Builder:   prompt.NewBuilder(cat, promptOpts...),
		Generator: newGenerator(genaiOpts),
		Store:     st,
		Metrics:   rec,
	}, buildMachineOptions(flags, prefill)...)

	slog.Info("PlayaBooth starting", "process_id", st.ProcessID(), "style", cat.DefaultStyle, "questions", len(cat.Questions))
	err = machine.Run(ctx)
	if errors.Is(err, booth.ErrInterrupted) {
		term.Goodbye()
		slog.Info("PlayaBooth exited", "cycles", machine.Cycles(), "reason", err)
		return nil
	}
	if err != nil {
		slog.Error("PlayaBooth failed", "error", err)
		return err
	}
	slog.Info("PlayaBooth exited", "cycles", machine.Cycles())
	return nil
}

func newDumpCmd(config Config, flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [SESSION_ID]",
		Short: "Print logged sessions with their feedback as JSON",
		Long: `Print logged sessions as a JSON array, ordered by session id, with feedback
left-joined in. Sessions without feedback report "feedback": null.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer initializeLogger(config, flags.stateDir)()

			var sessionID *int64
			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid session id %q: %w", args[0], err)
				}
				sessionID = &id
			}

			st, err := store.Open(cmd.Context(), resolveDSN(*flags, config))
			if err != nil {
				return fmt.Errorf("failed to open session store: %w", err)
			}
			defer st.Close()

			data, err := store.DumpJSON(cmd.Context(), st, sessionID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newQuestionsCmd(config Config) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List catalog question ids for writing prefill files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(config)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tQUESTION")
			for _, q := range cat.Questions {
				fmt.Fprintf(w, "%s\t%s\n", q.ID, q.Text)
			}
			return w.Flush()
		},
	}
}
