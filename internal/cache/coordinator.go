// Package cache implements spec.md §4.7's CacheCoordinator: a
// fingerprint-validated cache lifecycle layered over the fingerprint,
// lock, docparse, chunk, embed, vectorstore, and summary packages.
// Grounded on the teacher's internal/index/coordinator.go (reconciliation
// and on-disk-state-machine shape), rebuilt around spec.md's MISSING →
// BUILDING → VALID → STALE states and its atomic-pointer/singleflight
// concurrency design (SPEC_FULL.md §4.7, §5).
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/phazer-schmid/phasergun/internal/chunk"
	"github.com/phazer-schmid/phasergun/internal/config"
	"github.com/phazer-schmid/phasergun/internal/docparse"
	"github.com/phazer-schmid/phasergun/internal/embed"
	"github.com/phazer-schmid/phasergun/internal/fingerprint"
	"github.com/phazer-schmid/phasergun/internal/lock"
	"github.com/phazer-schmid/phasergun/internal/perrors"
	"github.com/phazer-schmid/phasergun/internal/project"
	"github.com/phazer-schmid/phasergun/internal/summary"
	"github.com/phazer-schmid/phasergun/internal/vectorstore"
)

// Entry is the in-memory CacheEntry spec.md §3 names: an immutable,
// published snapshot of one project's index.
type Entry struct {
	Fingerprint        string
	ModelVersion       string
	BuiltAt            time.Time
	Vectors            *vectorstore.Store
	ProcedureSummaries *summary.Store
	ContextSummaries   *summary.Store
}

// Coordinator implements getOrBuild for any number of projects, sharing a
// single embedder and configuration.
type Coordinator struct {
	cfg      config.Config
	embedder embed.Embedder
	logger   *slog.Logger

	mu        sync.Mutex
	published map[string]*atomic.Pointer[Entry]
	sf        singleflight.Group
}

// New builds a Coordinator.
func New(cfg config.Config, embedder embed.Embedder, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		cfg:       cfg,
		embedder:  embedder,
		logger:    logger,
		published: make(map[string]*atomic.Pointer[Entry]),
	}
}

func (c *Coordinator) pointerFor(hash string) *atomic.Pointer[Entry] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.published[hash]; ok {
		return p
	}
	p := &atomic.Pointer[Entry]{}
	c.published[hash] = p
	return p
}

// GetOrBuild returns the current CacheEntry for projectRoot, building or
// reloading it as needed (spec.md §4.7's state machine). Concurrent calls
// for the same project collapse into a single build via singleflight, and
// every caller receives the identical resulting Entry (spec.md §8 property
// #6).
func (c *Coordinator) GetOrBuild(ctx context.Context, projectRoot, primaryContextPath string) (*Entry, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, perrors.IOError("resolve project root "+projectRoot, err)
	}

	hash := projectHash(absRoot)
	ptr := c.pointerFor(hash)

	currentFP, err := fingerprint.ProjectFingerprint(absRoot, primaryContextPath)
	if err != nil {
		return nil, err
	}

	if e := ptr.Load(); e != nil && e.Fingerprint == currentFP {
		return e, nil
	}

	result, err, _ := c.sf.Do(hash, func() (interface{}, error) {
		return c.buildOrLoad(ctx, ptr, absRoot, hash, currentFP)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Entry), nil
}

func (c *Coordinator) buildOrLoad(ctx context.Context, ptr *atomic.Pointer[Entry], absRoot, hash, currentFP string) (*Entry, error) {
	if e := ptr.Load(); e != nil && e.Fingerprint == currentFP {
		return e, nil
	}

	if !c.cfg.Cache.Enabled {
		entry, err := c.build(ctx, absRoot, currentFP)
		if err != nil {
			return nil, err
		}
		ptr.Store(entry)
		return entry, nil
	}

	if e, err := c.loadFromDisk(hash, currentFP); err != nil {
		return nil, err
	} else if e != nil {
		ptr.Store(e)
		return e, nil
	}

	heldLock, err := lock.Acquire(ctx, lockFilePath(c.cfg.Cache, hash), lock.Options{
		StaleMs:      c.cfg.Lock.StaleMs,
		MaxRetries:   c.cfg.Lock.MaxRetries,
		MinBackoffMs: c.cfg.Lock.MinBackoffMs,
		MaxBackoffMs: c.cfg.Lock.MaxBackoffMs,
	})
	if err != nil {
		return nil, err
	}
	defer heldLock.Release()

	if e := ptr.Load(); e != nil && e.Fingerprint == currentFP {
		return e, nil
	}
	if e, err := c.loadFromDisk(hash, currentFP); err != nil {
		return nil, err
	} else if e != nil {
		ptr.Store(e)
		return e, nil
	}

	entry, err := c.build(ctx, absRoot, currentFP)
	if err != nil {
		return nil, err
	}

	if err := c.persist(hash, absRoot, entry); err != nil {
		return nil, err
	}

	ptr.Store(entry)
	return entry, nil
}

// loadFromDisk reads the four cache files for hash if cache-metadata.json
// is present and its Fingerprint matches currentFP. A missing metadata
// file, a stale fingerprint, or a corrupt file all yield (nil, nil): every
// one of those is "no usable cache", to be handled by rebuilding, not by
// failing the request (spec.md §7).
func (c *Coordinator) loadFromDisk(hash, currentFP string) (*Entry, error) {
	meta, err := readMetadata(metadataPath(c.cfg.Cache, hash))
	if err != nil {
		c.logger.Warn("cache metadata unreadable, will rebuild", slog.String("error", err.Error()))
		return nil, nil
	}
	if meta == nil || meta.Fingerprint != currentFP {
		return nil, nil
	}

	vstore, _, err := vectorstore.Load(vectorStorePath(c.cfg.Cache, hash))
	if err != nil {
		c.logger.Warn("vector store unreadable, will rebuild", slog.String("error", err.Error()))
		return nil, nil
	}

	sopSummaries, err := summary.Load(sopSummariesPath(c.cfg.Cache, hash))
	if err != nil {
		c.logger.Warn("sop summaries unreadable, will rebuild", slog.String("error", err.Error()))
		return nil, nil
	}

	ctxSummaries, err := summary.Load(contextSummariesPath(c.cfg.Cache, hash))
	if err != nil {
		c.logger.Warn("context summaries unreadable, will rebuild", slog.String("error", err.Error()))
		return nil, nil
	}

	return &Entry{
		Fingerprint:        meta.Fingerprint,
		ModelVersion:       meta.ModelVersion,
		BuiltAt:            meta.IndexedAt,
		Vectors:            vstore,
		ProcedureSummaries: sopSummaries,
		ContextSummaries:   ctxSummaries,
	}, nil
}

// build parses, chunks, embeds, and assembles an Entry entirely in
// memory, in the insertion order spec.md §4.5 requires: procedures
// precede context, each sorted by fileName, each file's chunks in
// chunkIndex order.
func (c *Coordinator) build(ctx context.Context, absRoot, currentFP string) (*Entry, error) {
	parser := docparse.NewPlainTextParser()
	vstore := vectorstore.New()
	sopSummaries := summary.New()
	ctxSummaries := summary.New()

	procedureFiles, err := project.ListProcedures(absRoot)
	if err != nil {
		return nil, err
	}
	contextFiles, err := project.ListContext(absRoot)
	if err != nil {
		return nil, err
	}

	if err := c.indexFiles(ctx, parser, procedureFiles, chunk.CategoryProcedure, vstore, sopSummaries); err != nil {
		return nil, err
	}
	if err := c.indexFiles(ctx, parser, contextFiles, chunk.CategoryContext, vstore, ctxSummaries); err != nil {
		return nil, err
	}

	return &Entry{
		Fingerprint:        currentFP,
		ModelVersion:       c.embedder.ModelVersion(),
		BuiltAt:            time.Now().UTC(),
		Vectors:            vstore,
		ProcedureSummaries: sopSummaries,
		ContextSummaries:   ctxSummaries,
	}, nil
}

func (c *Coordinator) indexFiles(ctx context.Context, parser docparse.DocumentParser, files []project.File, category chunk.Category, vstore *vectorstore.Store, summaries *summary.Store) error {
	for _, f := range files {
		doc, err := parser.Parse(f.Path)
		if err != nil {
			c.logger.Warn("parse failed, skipping file", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if doc == nil {
			continue
		}

		chunks := chunk.ChunkDocument(chunk.Input{SourcePath: f.Path, FileName: f.FileName, Text: doc.Text}, category, f.Subfolder)
		if len(chunks) == 0 {
			continue
		}

		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}

		vectors, err := c.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return perrors.EmbedderUnavailable(fmt.Sprintf("embed chunks for %s", f.FileName), err)
		}

		entries := make([]vectorstore.Entry, len(chunks))
		for i, ch := range chunks {
			entries[i] = vectorstore.Entry{
				ID:               ch.ID,
				SourcePath:       ch.SourcePath,
				FileName:         ch.FileName,
				Category:         ch.Category,
				ContextSubfolder: ch.ContextSubfolder,
				ChunkIndex:       ch.ChunkIndex,
				ContentHash:      ch.ContentHash,
				Text:             ch.Text,
				Vector:           vectors[i],
			}
		}
		vstore.AddAll(entries)

		summaries.UpsertIfChanged(summary.Document{FileName: f.FileName, Text: doc.Text}, c.cfg.Embeddings.SummaryWords)
	}
	return nil
}

// persist atomically writes the four cache files, metadata last, so a
// peer process that observes metadata can trust the other three are
// complete (spec.md §4.7 step f, §5).
func (c *Coordinator) persist(hash, absRoot string, entry *Entry) error {
	if err := entry.Vectors.Save(vectorStorePath(c.cfg.Cache, hash), entry.ModelVersion); err != nil {
		return err
	}
	if err := entry.ProcedureSummaries.Save(sopSummariesPath(c.cfg.Cache, hash)); err != nil {
		return err
	}
	if err := entry.ContextSummaries.Save(contextSummariesPath(c.cfg.Cache, hash)); err != nil {
		return err
	}

	meta := Metadata{
		ProjectPath:            absRoot,
		Fingerprint:            entry.Fingerprint,
		VectorStoreFingerprint: entry.Vectors.Fingerprint(entry.ModelVersion),
		IndexedAt:              entry.BuiltAt,
		ModelVersion:           entry.ModelVersion,
	}
	return writeMetadata(metadataPath(c.cfg.Cache, hash), meta)
}
