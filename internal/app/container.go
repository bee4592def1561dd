package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	appconfig "github.com/doeshing/cmdverify/internal/application/config"
	"github.com/doeshing/cmdverify/internal/application/doctor"
	"github.com/doeshing/cmdverify/internal/application/impact"
	"github.com/doeshing/cmdverify/internal/application/verify"
	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/infrastructure/cache"
	"github.com/doeshing/cmdverify/internal/infrastructure/config"
	"github.com/doeshing/cmdverify/internal/infrastructure/git"
	"github.com/doeshing/cmdverify/internal/infrastructure/history"
	"github.com/doeshing/cmdverify/internal/infrastructure/knowledge"
	"github.com/doeshing/cmdverify/internal/infrastructure/markdown"
	"github.com/doeshing/cmdverify/internal/infrastructure/metrics"
	"github.com/doeshing/cmdverify/internal/infrastructure/probe"
	"github.com/doeshing/cmdverify/internal/infrastructure/security"
	"github.com/doeshing/cmdverify/internal/pkg/logger"
	"github.com/doeshing/cmdverify/internal/ports"
)

// Options select the project and logging behaviour.
type Options struct {
	Root       string
	ConfigPath string
	Verbose    bool
	Silent     bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Root           string
	Config         domain.Config
	ConfigLoader   *config.FileLoader
	VerifyService  *verify.Service
	Resolver       *knowledge.Resolver
	Patterns       *security.PatternClassifier
	CommandCache   *cache.CommandCache
	Store          ports.KeyValueStore
	Watermark      *cache.Watermark
	Git            *git.Client
	HistoryStore   *history.SQLiteStore
	Logger         *logger.StdLogger
	KnowledgeFound bool

	closers []func() error
}

// NewLogger picks the level from the CLI flags.
func NewLogger(opts Options) *logger.StdLogger {
	if opts.Silent && !opts.Verbose {
		return logger.NewLevel(slog.LevelError)
	}
	return logger.NewStd(opts.Verbose)
}

// BuildContainer constructs the dependency graph. Invalid configuration and a
// malformed knowledge base surface as *domain.ConfigurationError.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	log := NewLogger(opts)

	cfgLoader := config.NewFileLoader(root, opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return nil, err
	}
	cfg.ResolvePaths(root)

	kb, found, err := knowledge.Load(cfg.KnowledgeBase, cfg.FailOnMissingKnowledgeBase)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Debug("no knowledge base, using built-in patterns only", map[string]interface{}{"path": cfg.KnowledgeBase})
	}
	resolver := knowledge.NewResolver(kb, log)
	patterns := security.NewPatternClassifier()

	c := &Container{
		Root:           root,
		Config:         cfg,
		ConfigLoader:   cfgLoader,
		Resolver:       resolver,
		Patterns:       patterns,
		Logger:         log,
		KnowledgeFound: found,
	}

	store, err := c.openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	c.Store = store
	c.CommandCache = cache.NewCommandCache(store, cfg.CacheDir, log)
	c.Watermark = cache.NewWatermark(cfg.CacheDir)
	c.Git = git.NewClient(root, domain.DefaultGitTimeout)

	configPath, _ := cfgLoader.Path()
	settings := cfg.SettingsFiles(root, configPath, config.CandidateNames)

	svc := &verify.Service{
		Source:                markdown.NewSource(root, cfg, markdown.NewExtractor(), log),
		Analyzer:              impact.NewAnalyzer(c.Git, c.Watermark, resolver.FileRules(), settings, log),
		Classifiers:           verify.Chain{resolver, patterns},
		Prober:                probe.NewPathProber(cfg.ProbeTimeoutDuration()),
		Cache:                 c.CommandCache,
		Watermark:             c.Watermark,
		Logger:                log,
		TreatUnknownAsWarning: cfg.TreatUnknownAsWarning,
	}
	if cfg.HistoryDB != "" {
		c.HistoryStore = history.NewSQLiteStore(cfg.HistoryDB)
		c.closers = append(c.closers, c.HistoryStore.Close)
		svc.History = c.HistoryStore
	}
	if cfg.MetricsFile != "" {
		sink, err := metrics.NewTextfileSink(cfg.MetricsFile)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		svc.Metrics = sink
	}
	c.VerifyService = svc
	return c, nil
}

func (c *Container) openStore(cfg domain.Config, log *logger.StdLogger) (ports.KeyValueStore, error) {
	if cfg.CacheBackend() == domain.CacheBackendBadger {
		store, err := cache.OpenBadgerStore(cache.BadgerConfig{
			Path:   filepath.Join(cfg.CacheDir, domain.BadgerDir),
			Logger: log.Slog(),
		})
		if err != nil {
			return nil, fmt.Errorf("open badger cache: %w", err)
		}
		c.closers = append(c.closers, store.Close)
		return store, nil
	}
	return cache.NewFileStore(filepath.Join(cfg.CacheDir, domain.CommandsDir)), nil
}

// Close releases database handles. Safe to call more than once.
func (c *Container) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// BuildDoctor wires the diagnostics service. It never validates the
// configuration itself so a broken setup can still be diagnosed.
func BuildDoctor(opts Options) (*doctor.Service, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	client := git.NewClient(root, domain.DefaultGitTimeout)
	return &doctor.Service{
		ConfigProvider: config.NewFileLoader(root, opts.ConfigPath),
		Root:           root,
		Git:            client,
		LookupTool:     probe.LookupTool(),
		Knowledge: func(cfg domain.Config) (bool, []string, error) {
			kb, found, err := knowledge.Load(cfg.KnowledgeBase, false)
			if err != nil {
				return false, nil, err
			}
			var invalid []string
			for _, p := range knowledge.NewResolver(kb, logger.Nop()).Invalid() {
				invalid = append(invalid, fmt.Sprintf("%s: %s", p.Category, p.Pattern))
			}
			return found, invalid, nil
		},
		Documents: func(ctx context.Context, cfg domain.Config) (int, error) {
			files, err := markdown.NewSource(root, cfg, markdown.NewExtractor(), logger.Nop()).Files(ctx)
			return len(files), err
		},
	}, nil
}
