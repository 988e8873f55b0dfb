// Package phasergun is the dependency-injection facade a caller uses to
// construct one Service and drive the whole retrieval-augmented generation
// pipeline spec.md describes, without wiring the internal packages by
// hand. Grounded on the teacher's cmd/amanmcp/cmd package's one-shot
// "build everything from config" bootstrap pattern.
package phasergun

import (
	"context"
	"log/slog"

	"github.com/phazer-schmid/phasergun/internal/cache"
	"github.com/phazer-schmid/phasergun/internal/config"
	"github.com/phazer-schmid/phasergun/internal/embed"
	"github.com/phazer-schmid/phasergun/internal/generator"
	"github.com/phazer-schmid/phasergun/internal/logging"
	"github.com/phazer-schmid/phasergun/internal/orchestrator"
	"github.com/phazer-schmid/phasergun/internal/retrieval"
)

// defaultRoleFraming is used when the caller supplies no primary-context
// role/regulatory framing text.
const defaultRoleFraming = "You are a regulatory affairs assistant. Answer using only the supplied procedures and context."

// Service wires the full core: config, logging, embedder, cache
// coordinator, retrieval service, generator, and orchestrator.
type Service struct {
	Config       config.Config
	Logger       *slog.Logger
	Embedder     embed.Embedder
	Coordinator  *cache.Coordinator
	Retriever    *retrieval.Service
	Orchestrator *orchestrator.Orchestrator

	closeLogging func()
	memoStore    *embed.MemoStore
}

// Option customizes Service construction.
type Option func(*options)

type options struct {
	cfg         *config.Config
	gen         generator.TextGenerator
	roleFraming string
	mcpMode     bool
}

// WithConfig overrides the layered configuration that would otherwise be
// loaded from disk+environment.
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = &cfg }
}

// WithGenerator overrides the TextGenerator; the default is
// generator.EchoGenerator, a deterministic stub suitable for offline use.
func WithGenerator(gen generator.TextGenerator) Option {
	return func(o *options) { o.gen = gen }
}

// WithRoleFraming overrides Tier 1's role and regulatory framing text.
func WithRoleFraming(text string) Option {
	return func(o *options) { o.roleFraming = text }
}

// WithMCPMode switches logging to internal/logging.SetupMCPMode: log writes
// never reach stderr, since the serve subcommand shares that process with
// an MCP stdio transport that owns stdin/stdout/stderr for JSON-RPC framing.
func WithMCPMode() Option {
	return func(o *options) { o.mcpMode = true }
}

// New constructs a Service. projectRoot is used only to locate an optional
// phasergun.yaml config file; it is not baked into the Service, since one
// Service can serve Generate calls against multiple project roots.
func New(projectRoot string, opts ...Option) (*Service, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.cfg
	if cfg == nil {
		loaded, err := config.Load(projectRoot)
		if err != nil {
			return nil, err
		}
		cfg = &loaded
	}

	logCfg := logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.FilePath,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxFiles:      cfg.Logging.MaxFiles,
		WriteToStderr: true,
	}

	var (
		logger       *slog.Logger
		closeLogging func()
		err          error
	)
	if o.mcpMode {
		logger, closeLogging, err = logging.SetupMCPMode(logCfg)
	} else {
		logger, closeLogging, err = logging.Setup(logCfg)
	}
	if err != nil {
		return nil, err
	}

	static := embed.NewStaticEmbedder()

	var embedder embed.Embedder = static
	var memoStore *embed.MemoStore
	if cfg.Embeddings.MemoStorePath != "" {
		memoStore, err = embed.OpenMemoStore(cfg.Embeddings.MemoStorePath, cfg.Embeddings.MemoLRUSize)
		if err != nil {
			closeLogging()
			return nil, err
		}
		embedder = embed.NewCachedEmbedder(static, memoStore)
	}

	coordinator := cache.New(*cfg, embedder, logger)

	roleFraming := o.roleFraming
	if roleFraming == "" {
		roleFraming = defaultRoleFraming
	}
	retriever := retrieval.New(coordinator, embedder, cfg.Retrieval, roleFraming)

	gen := o.gen
	if gen == nil {
		gen = generator.NewEchoGenerator()
	}
	orch := orchestrator.New(retriever, gen)

	return &Service{
		Config:       *cfg,
		Logger:       logger,
		Embedder:     embedder,
		Coordinator:  coordinator,
		Retriever:    retriever,
		Orchestrator: orch,
		closeLogging: closeLogging,
		memoStore:    memoStore,
	}, nil
}

// Generate runs the full retrieve-then-generate pipeline for one project
// and prompt (spec.md §4.10).
func (s *Service) Generate(ctx context.Context, projectRoot, primaryContextPath, promptText string) (*orchestrator.Output, error) {
	return s.Orchestrator.Generate(ctx, projectRoot, primaryContextPath, promptText, retrieval.DefaultOptions(s.Config.Retrieval))
}

// Close releases the log file handle and the embedding memoization store.
func (s *Service) Close() error {
	if s.closeLogging != nil {
		s.closeLogging()
	}
	if s.memoStore != nil {
		return s.memoStore.Close()
	}
	return nil
}
