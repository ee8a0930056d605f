package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/miosa/osa-chat/app"
	"github.com/miosa/osa-chat/client"
	"github.com/miosa/osa-chat/config"
	"github.com/miosa/osa-chat/logging"
	"github.com/miosa/osa-chat/store"
	"github.com/miosa/osa-chat/style"
	"github.com/miosa/osa-chat/tokens"
)

var version = "dev"

var (
	profile   string
	serverURL string
	noColor   bool
	verbose   bool

	clearSession bool
)

var rootCmd = &cobra.Command{
	Use:   "osa-chat",
	Short: "Terminal chat client for the OSA assistant",
	Long: `osa-chat connects to an OSA chat server over WebSocket and streams the
assistant's replies into your terminal.

The connection is retried automatically with exponential backoff. Press
Ctrl+R to reconnect by hand once the client has given up.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the chat server is up",
	RunE:  runHealth,
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the stored session id",
	RunE:  runSession,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Named profile for state isolation (~/.osa-chat/profiles/<name>)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "Chat server base URL (or set OSA_CHAT_SERVER_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")

	sessionCmd.Flags().BoolVar(&clearSession, "clear", false, "Forget the stored session id")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(sessionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "osa-chat: %v\n", err)
		os.Exit(1)
	}
}

// profileDir returns ~/.osa-chat, or ~/.osa-chat/profiles/<name> for a
// named profile.
func profileDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	dir := filepath.Join(home, ".osa-chat")
	if profile != "" {
		dir = filepath.Join(dir, "profiles", profile)
	}
	return dir, nil
}

// loadConfig reads the profile's settings; --url wins over file and env.
func loadConfig() (string, config.Config, error) {
	dir, err := profileDir()
	if err != nil {
		return "", config.Config{}, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return "", config.Config{}, err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	return dir, cfg, nil
}

func runChat(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(dir, cfg.LogLevel, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if noColor {
		lipgloss.SetColorProfile(0)
	}
	pickTheme(cfg.Theme)

	wsURL, err := client.WebSocketURL(cfg.ServerURL)
	if err != nil {
		return err
	}
	logger.Info("starting", zap.String("version", version), zap.String("server", cfg.ServerURL), zap.String("profile", dir))

	transport := client.New(client.Options{
		URL: wsURL,
		Backoff: client.Backoff{
			Base:        cfg.Reconnect.BaseDelay,
			Max:         cfg.Reconnect.MaxDelay,
			MaxAttempts: cfg.Reconnect.MaxAttempts,
		},
		HandshakeTimeout: cfg.HandshakeTimeout,
		Logger:           logger,
	})
	policy := transport.Backoff()
	logger.Debug("reconnect policy",
		zap.Int("max_attempts", policy.MaxAttempts),
		zap.Duration("base", policy.Base),
		zap.Duration("max", policy.Max))
	counter := tokens.NewCounter()

	m := app.New(app.Options{
		Transport:  transport,
		Store:      store.NewFileStore(dir),
		Health:     client.NewHTTP(cfg.ServerURL),
		Tokens:     counter,
		Logger:     logger,
		Version:    version,
		ProfileDir: dir,
		Config:     cfg,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := transport.Start(ctx); err != nil {
		return err
	}
	defer transport.Stop()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err = p.Run()
	if cerr := counter.Err(); cerr != nil {
		logger.Warn("token counts were estimated", zap.Error(cerr))
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("program exited", zap.Error(err))
		return err
	}
	return nil
}

// pickTheme applies the configured theme, or follows the terminal background.
func pickTheme(name string) {
	if _, ok := style.Themes[name]; ok {
		style.SetTheme(name)
		return
	}
	if lipgloss.HasDarkBackground() {
		style.SetTheme("dark")
	} else {
		style.SetTheme("light")
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.NewHTTP(cfg.ServerURL).Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.ServerURL, resp.Status)
	if resp.Status != "ok" {
		return fmt.Errorf("server reports status %q", resp.Status)
	}
	return nil
}

func runSession(cmd *cobra.Command, args []string) error {
	dir, err := profileDir()
	if err != nil {
		return err
	}
	st := store.NewFileStore(dir)
	out := cmd.OutOrStdout()

	if clearSession {
		if err := st.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Stored session id cleared.")
		return nil
	}
	id, err := st.Load()
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(out, "No stored session id.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, id)
	return nil
}
