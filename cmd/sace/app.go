package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sace/internal/api"
	"sace/internal/config"
	"sace/internal/guard"
	"sace/internal/lifecycle"
	"sace/internal/logging"
	"sace/internal/routes"
	"sace/internal/session"
)

var errNotSignedIn = errors.New("not signed in, run `sace login` first")

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg      *config.Client
	logger   *logging.Logger
	client   *api.Client
	session  *session.Provider
	guard    *guard.Guard
	router   *routes.Router
	history  *routes.History
	in       *bufio.Reader
	out      io.Writer
	closers  []func() error
	assumeOK bool
}

func newApp(ctx context.Context, cfg *config.Client, in io.Reader, out io.Writer) (*app, error) {
	a := &app{
		cfg:     cfg,
		guard:   guard.New(),
		history: routes.NewHistory(routes.PathRoot),
		in:      bufio.NewReader(in),
		out:     out,
	}
	a.router = routes.NewRouter(a.guard)

	zapLogger, err := zap.NewProduction(zap.IncreaseLevel(zap.WarnLevel))
	if cfg.Debug {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("cannot create logger: %w", err)
	}
	a.logger = logging.New(zapLogger)
	a.closers = append(a.closers, func() error {
		_ = zapLogger.Sync()
		return nil
	})

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.APIBaseURL, session.NewTokens(store),
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(a.logger),
		api.WithReadRetries(cfg.ReadRetries, 500*time.Millisecond),
	)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	a.client = client
	a.session = session.NewProvider(store, client, a.logger)

	// Any 401 outside a credential exchange ends the session.
	client.OnUnauthorized(func(ctx context.Context) {
		a.session.Invalidate(ctx)
		a.history.Navigate(ctx, routes.PathLogin)
	})

	if err := a.session.Init(ctx); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) (session.Store, error) {
	switch a.cfg.SessionStore {
	case config.StoreMemory:
		return session.NewMemoryStore(), nil
	case config.StoreRedis:
		opts, err := redis.ParseURL(a.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		return session.NewRedisStore(rdb, a.cfg.SessionPrefix, 0), nil
	case config.StoreBolt, "":
		store, err := session.OpenBoltStore(a.cfg.SessionFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", a.cfg.SessionStore)
	}
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// enter navigates to path the way the web client would. It fails when the
// route guard sends the user somewhere else.
func (a *app) enter(path string) (routes.View, error) {
	final, view, err := a.router.Follow(path, a.session.Token())
	if err != nil {
		return "", err
	}
	a.history.Navigate(context.Background(), final)
	if final != path {
		if final == routes.PathLogin {
			return "", errNotSignedIn
		}
		return "", fmt.Errorf("access denied, redirected to %s", final)
	}
	return view, nil
}

func (a *app) controller() *lifecycle.Controller {
	return lifecycle.NewController(a.client,
		lifecycle.WithLogger(a.logger),
		lifecycle.WithUploadPolicy(lifecycle.UploadPolicy{MaxBytes: a.cfg.MaxUploadBytes}),
	)
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// Confirm asks a yes/no question on the terminal. --yes answers for the user.
func (a *app) Confirm(_ context.Context, prompt string) bool {
	if a.assumeOK {
		return true
	}
	a.printf("%s [y/N] ", prompt)
	line, _ := a.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// prompt reads one line for a value that was not given as a flag.
func (a *app) prompt(label, value string) string {
	if value != "" {
		return value
	}
	a.printf("%s: ", label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

type appKey struct{}

func fromCommand(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}
