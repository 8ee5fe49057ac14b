// Package cli provides the command-line interface for the Academic
// Repository client. The root command launches the TUI; subcommands cover
// scripted use (login, upload, download, listings, user admin).
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/davidayox123/acadrepo-tui/internal/api"
	"github.com/davidayox123/acadrepo-tui/internal/app"
	"github.com/davidayox123/acadrepo-tui/internal/config"
	"github.com/davidayox123/acadrepo-tui/internal/dashboard"
	"github.com/davidayox123/acadrepo-tui/internal/identity"
	"github.com/davidayox123/acadrepo-tui/internal/logging"
	"github.com/davidayox123/acadrepo-tui/internal/push"
)

// Version is set at build time.
var Version = "0.1.0"

var cfgFile string

// env bundles the wired client stack shared by all commands.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	ident  *identity.Manager
	client *api.Client
}

// newEnv loads configuration and wires the identity manager and API
// client together.
func newEnv(flags *flag.FlagSet) (*env, error) {
	cfg, err := config.Load(cfgFile, flags)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	ident := identity.NewManager(cfg.SessionFile, logger)
	client := api.NewClient(cfg.APIBaseURL, ident)
	ident.SetClient(client)
	return &env{cfg: cfg, logger: logger, ident: ident, client: client}, nil
}

// requireAuth returns an error when no session is persisted.
func (e *env) requireAuth() error {
	if !e.ident.Authenticated() {
		return fmt.Errorf("not signed in; run `acadrepo login` first")
	}
	return nil
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "acadrepo",
		Short: "Academic Repository terminal client",
		Long: `acadrepo is a terminal client for the Academic Repository document
management system: a live dashboard, a document browser with review
actions, and user administration for admins.

Run with no arguments to launch the TUI.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: user config dir)")
	pf.String("api-base-url", "", "REST base URL, including /api/v1")
	pf.String("ws-url", "", "push channel WebSocket URL")
	pf.Duration("refresh-interval", 0, "dashboard poll period")
	pf.String("log-level", "", "log level (debug|info|warn|error)")

	rootCmd.AddCommand(
		newLoginCommand(),
		newRegisterCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
		newDocsCommand(),
		newUploadCommand(),
		newDownloadCommand(),
		newUsersCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

// runTUI wires the full stack and hands control to Bubble Tea.
func runTUI(cmd *cobra.Command) error {
	e, err := newEnv(cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	if err := e.requireAuth(); err != nil {
		return err
	}

	notices := make(app.Notices, 8)
	store := dashboard.New(e.client, e.ident, notices, e.logger, e.cfg.RefreshInterval)

	pushMsgs := make(chan push.Message, 16)
	policy := push.ReconnectPolicy{
		MaxAttempts: e.cfg.ReconnectMaxAttempts,
		Delay:       e.cfg.ReconnectDelay,
	}
	pushClient := push.NewClient(e.cfg.WSURL, e.ident, store, policy, func(msg push.Message) {
		select {
		case pushMsgs <- msg:
		default:
		}
	}, e.logger)

	m := app.New(e.client, e.ident, store, pushClient, notices, pushMsgs, e.logger)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	pushClient.Disconnect()
	store.StopAutoRefresh()
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
