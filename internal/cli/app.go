package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"welearn/internal/cache"
	"welearn/internal/client"
	"welearn/internal/config"
	"welearn/internal/identity"
	"welearn/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the dependencies shared by every command. Commands read them
// after init has run.
type app struct {
	configPath string

	cfg   *config.Config
	log   *zap.Logger
	store *identity.Store
	api   *client.Client
	in    *bufio.Reader
	now   func() time.Time

	redis *redis.Client
	ready bool
}

func newApp() *app {
	return &app{in: bufio.NewReader(os.Stdin), now: time.Now}
}

func (a *app) init(ctx context.Context) error {
	if a.ready {
		return nil
	}

	var paths []string
	if a.configPath != "" {
		paths = append(paths, a.configPath)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.log = logger.Get()

	mirror, err := a.newMirror(ctx)
	if err != nil {
		return err
	}
	a.store = identity.NewStore(mirror, identity.WithLogger(a.log))
	if _, err := a.store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load saved session: %w", err)
	}

	a.api = client.New(cfg.Client.BaseURL,
		client.WithTimeout(cfg.Client.Timeout),
		client.WithToken(func() string { return a.store.Identity().AuthToken }),
		client.WithLogger(a.log),
	)
	a.ready = true
	return nil
}

func (a *app) newMirror(ctx context.Context) (identity.Mirror, error) {
	switch a.cfg.Client.Mirror {
	case "redis":
		rdb, err := cache.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		return identity.NewRedisMirror(rdb, a.cfg.Client.Profile, a.log), nil
	case "file", "":
		return identity.NewFileMirror(a.cfg.Client.MirrorPath, a.log), nil
	default:
		return nil, fmt.Errorf("unknown identity mirror %q", a.cfg.Client.Mirror)
	}
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	_ = logger.Sync()
}

// requireLogin returns the signed-in identity or an error telling the
// learner to log in.
func (a *app) requireLogin() (identity.Identity, error) {
	id := a.store.Identity()
	if !id.LoggedIn() {
		return id, fmt.Errorf("not logged in: run 'welearn login --token <token>' first")
	}
	return id, nil
}

func (a *app) location() *time.Location {
	return a.cfg.Rewards.Location()
}

func (a *app) today() time.Time {
	return a.now().In(a.location())
}

// prompt asks a yes/no question on out and reads the reply from in.
func (a *app) prompt(out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
