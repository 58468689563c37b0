package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hemchdev/aura/internal/assistant"
	"github.com/hemchdev/aura/internal/assistant/classifier"
	"github.com/hemchdev/aura/internal/config"
	"github.com/hemchdev/aura/internal/logging"
	"github.com/hemchdev/aura/internal/notify"
	"github.com/hemchdev/aura/internal/session"
	"github.com/hemchdev/aura/internal/store"
	"github.com/hemchdev/aura/internal/store/postgres"
	"github.com/hemchdev/aura/internal/store/supabase"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

const sessionCapacity = 32

// app holds the wired components shared by every subcommand.
type app struct {
	cfg       *config.Config
	store     store.Store
	recorder  session.Recorder
	sessions  *session.Manager
	engine    *assistant.Engine
	scheduler *notify.Scheduler
	logger    logging.Logger
	closers   []func() error
}

func (a *app) initialize() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	a.logger = logging.NewComponentLogger("cli")

	a.scheduler = notify.NewScheduler(notify.SinkFunc(printTrigger), logging.NewComponentLogger("notify"))

	sess := store.SessionContext{UserID: cfg.UserID}
	switch cfg.Store.Backend {
	case "postgres":
		if err := postgres.RunMigrations(cfg.Store.PostgresDSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		pg, err := postgres.Open(cfg.Store.PostgresDSN, sess)
		if err != nil {
			return err
		}
		a.store = pg
		a.recorder = pg
		a.closers = append(a.closers, pg.Close)
	case "supabase":
		a.store = supabase.New(supabase.Config{
			ProjectURL: cfg.Store.SupabaseURL,
			AnonKey:    cfg.Store.SupabaseKey,
		}, sess, logging.NewComponentLogger("supabase"))
		a.recorder = session.NewMemoryRecorder()
	default:
		a.store = store.NewMemory(sess)
		a.recorder = session.NewMemoryRecorder()
	}

	a.sessions, err = session.NewManager(sessionCapacity, a.recorder, logging.NewComponentLogger("session"))
	if err != nil {
		return err
	}

	gemini := classifier.NewGemini(classifier.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout(),
	}, logging.NewComponentLogger("classifier"))

	a.engine = assistant.NewEngine(a.store, gemini, a.scheduler, logging.NewComponentLogger("engine"))
	return nil
}

func (a *app) close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logger.Warn("close: %v", err)
		}
	}
}

func printTrigger(_ context.Context, trigger notify.Trigger) {
	fmt.Printf("\n%s %s", yellow("⏰ "+trigger.Title), gray(trigger.Body))
	fmt.Println()
}

// NewRootCommand builds the aura CLI.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "aura [message]",
		Short: "Personal assistant for events and reminders",
		Long: fmt.Sprintf(`%s manages your calendar and reminders through plain language.

%s
  aura                                  # Interactive chat
  aura "remind me to call mom at 6pm"   # Single message
  aura export schedule.ics              # Export events to iCalendar
  aura notify                           # Run the notification loop`,
			bold("Aura"), bold("EXAMPLES:")),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initialize(); err != nil {
				return err
			}
			defer a.close()
			if len(args) > 0 {
				return a.runOnce(cmd.Context(), strings.Join(args, " "))
			}
			return a.runChat(cmd.Context())
		},
	}

	rootCmd.AddCommand(newExportCommand(a))
	rootCmd.AddCommand(newNotifyCommand(a))
	return rootCmd
}
