package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/avstrong/campusnest/internal/bookflow"
	"github.com/avstrong/campusnest/internal/client"
	"github.com/avstrong/campusnest/internal/config"
	"github.com/avstrong/campusnest/internal/logger"
	"github.com/avstrong/campusnest/internal/tui"
)

const defaultLogFile = "book.log"

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file (or CAMPUSNEST_CONFIG)")
	propertyID := pflag.String("property", "", "property to book (required)")
	base := pflag.String("base", "", "backend base URL (default api.base_url)")
	token := pflag.String("token", "", "bearer token (default api.token)")
	pflag.Parse()

	if err := run(*configPath, *propertyID, *base, *token); err != nil {
		fmt.Fprintf(os.Stderr, "book: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, propertyID, base, token string) error {
	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// the terminal belongs to the program, so logs always go to a file.
	if cfg.Log.FilePath == "" {
		cfg.Log.FilePath = defaultLogFile
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer l.Sync()

	if base == "" {
		base = cfg.API.BaseURL
	}

	if token == "" {
		token = cfg.API.Token
	}

	opts := []client.RequestOption{
		client.WithBearerToken(token),
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(l),
		client.WithUserAgent("campusnest-book/1.0"),
	}

	if cfg.API.Debug {
		opts = append(opts, client.WithDebugLog(l))
	}

	c, err := client.New(base, opts...)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	flow, err := bookflow.New(l, c.Bookings, propertyID)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	if _, err := tea.NewProgram(tui.NewModel(ctx, flow), tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}

	if b := flow.Booking(); b != nil {
		fmt.Printf("booking %s created with status %s\n", b.ID, b.Status)
	}

	return nil
}
