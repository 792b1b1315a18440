package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/bioexplorer/internal/chat"
	"github.com/guilhermegouw/bioexplorer/internal/config"
	"github.com/guilhermegouw/bioexplorer/internal/db"
	"github.com/guilhermegouw/bioexplorer/internal/debug"
	"github.com/guilhermegouw/bioexplorer/internal/identity"
	"github.com/guilhermegouw/bioexplorer/internal/pubsub"
	"github.com/guilhermegouw/bioexplorer/internal/query"
	"github.com/guilhermegouw/bioexplorer/internal/role"
	"github.com/guilhermegouw/bioexplorer/internal/session"
	"github.com/guilhermegouw/bioexplorer/internal/storage"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg     *config.Config
	user    identity.Identity
	profile identity.Profile
	client  *query.Client
	hub     *pubsub.Hub
	ctl     *chat.Controller
	db      *db.DB

	// notice is a non-fatal startup problem worth showing the user.
	notice string
}

// newApp loads configuration, resolves the user, opens chat storage and
// restores saved chats.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	enableDebug(cmd, cfg)

	provider := identity.NewConfigProvider(cfg.User.Email, cfg.User.Name)
	user, err := provider.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return nil, fmt.Errorf("%w: run 'bioexplorer config set user.email you@example.com'", err)
		}
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	profile, err := provider.Profile(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	client, err := query.New(cfg.Endpoint, query.WithTimeout(cfg.RequestTimeout()))
	if err != nil {
		return nil, fmt.Errorf("creating query client: %w", err)
	}

	a := &app{
		cfg:     cfg,
		user:    user,
		profile: profile,
		client:  client,
		hub:     pubsub.NewHub(),
	}

	medium, err := a.openMedium(cmd)
	if err != nil {
		a.Close()
		return nil, err
	}

	r := cfg.Role()
	if name, _ := cmd.Flags().GetString("role"); name != "" {
		if r, err = role.Parse(name); err != nil {
			a.Close()
			return nil, err
		}
	}

	store := session.NewStore(medium, session.WithKey(session.DefaultKey+"/"+user.UserID))
	a.ctl = chat.New(store, client,
		chat.WithHub(a.hub),
		chat.WithRole(r),
		chat.WithBackendPort(client.Port()),
	)

	if err := a.ctl.Load(ctx); err != nil {
		var corrupt *session.CorruptError
		if !errors.As(err, &corrupt) {
			a.Close()
			return nil, fmt.Errorf("loading chats: %w", err)
		}
		a.notice = "Saved chats were unreadable and have been reset."
	}

	debug.Event("app", "ready", fmt.Sprintf("user=%s backend=%s storage=%s", user.UserID, cfg.Endpoint, cfg.Storage.Backend))
	return a, nil
}

func (a *app) openMedium(cmd *cobra.Command) (storage.Medium, error) {
	backend := a.cfg.Storage.Backend
	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		backend = config.StorageMemory
	}
	quota := storage.WithQuota(a.cfg.Storage.QuotaBytes)

	switch backend {
	case config.StorageMemory:
		return storage.NewMemoryMedium(quota), nil
	case config.StorageFile:
		return storage.NewFileMedium(a.cfg.SessionsDir(), quota), nil
	case config.StorageSQLite:
		database, err := db.Open(a.cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.db = database
		return storage.NewSQLiteMedium(database.Conn(), quota), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Close releases the hub, the database and the debug log.
func (a *app) Close() {
	if a.hub != nil {
		a.hub.Shutdown()
		debug.Log("%s", a.hub.DebugString())
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			debug.Error("app", err, "closing database")
		}
	}
	if debug.IsEnabled() {
		debug.Disable()
	}
}

// enableDebug turns on debug logging when asked for by flag or config.
func enableDebug(cmd *cobra.Command, cfg *config.Config) {
	on, _ := cmd.Flags().GetBool("debug")
	if !on && !cfg.Options.Debug {
		return
	}
	logPath := cfg.DebugLogPath()
	if err := debug.Enable(logPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to enable debug logging: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Debug: %s\n", logPath)
}
