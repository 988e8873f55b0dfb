// Package retrieval implements spec.md §4.8's RetrievalService: query
// embedding, per-category top-K cosine search, stable presentation
// ordering, three-tier context assembly, and token-cap enforcement.
// Grounded on the teacher's pkg/searcher/fusion.go multi-result assembly
// and stable secondary sort idiom, adapted from BM25/vector score fusion
// to this spec's fixed two-bucket (procedure/context) tiering template.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phazer-schmid/phasergun/internal/cache"
	"github.com/phazer-schmid/phasergun/internal/chunk"
	"github.com/phazer-schmid/phasergun/internal/config"
	"github.com/phazer-schmid/phasergun/internal/embed"
	"github.com/phazer-schmid/phasergun/internal/footnote"
	"github.com/phazer-schmid/phasergun/internal/summary"
	"github.com/phazer-schmid/phasergun/internal/vectorstore"
)

// charsPerToken is the 4:1 character/token heuristic spec.md §4.8 step 8
// names for maxTokens enforcement.
const charsPerToken = 4

// Options are RetrievalService.retrieve's per-call overrides of
// config.RetrievalConfig (spec.md §4.8's options table).
type Options struct {
	TopKProcedures   int
	TopKContext      int
	IncludeSummaries bool
	MaxTokens        int
}

// resolve fills unset fields from defaults. For TopKProcedures and
// TopKContext a negative value means "unset, use default"; zero is a
// meaningful value (disables that category) and is preserved. MaxTokens
// zero or below means "use default".
func resolve(o Options, defaults config.RetrievalConfig) Options {
	out := o
	if out.TopKProcedures < 0 {
		out.TopKProcedures = defaults.TopKProcedures
	}
	if out.TopKContext < 0 {
		out.TopKContext = defaults.TopKContext
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = defaults.MaxTokens
	}
	return out
}

// DefaultOptions returns Options populated from defaults, matching
// config.RetrievalConfig's defaults verbatim.
func DefaultOptions(defaults config.RetrievalConfig) Options {
	return Options{
		TopKProcedures:   defaults.TopKProcedures,
		TopKContext:      defaults.TopKContext,
		IncludeSummaries: defaults.IncludeSummaries,
		MaxTokens:        defaults.MaxTokens,
	}
}

// Result is RetrievalResult (spec.md §4.8 step 9).
type Result struct {
	AssembledContext string
	ProcResults      []vectorstore.SearchResult
	CtxResults       []vectorstore.SearchResult
	ProcSummaries    []summary.Summary
	CtxSummaries     []summary.Summary
	Sources          []int
}

// Service drives getOrBuild then assembles a three-tier context for a
// prompt.
type Service struct {
	coordinator *cache.Coordinator
	embedder    embed.Embedder
	defaults    config.RetrievalConfig
	roleFraming string
}

// New builds a Service. roleFraming is the Tier 1 "role + regulatory
// framing" text spec.md §4.8 step 7 sources from the primary-context
// configuration.
func New(coordinator *cache.Coordinator, embedder embed.Embedder, defaults config.RetrievalConfig, roleFraming string) *Service {
	return &Service{coordinator: coordinator, embedder: embedder, defaults: defaults, roleFraming: roleFraming}
}

// Retrieve implements spec.md §4.8's retrieve(projectRoot,
// primaryContextPath, promptText, options) → RetrievalResult.
func (s *Service) Retrieve(ctx context.Context, projectRoot, primaryContextPath, promptText string, opts Options) (*Result, error) {
	opts = resolve(opts, s.defaults)

	entry, err := s.coordinator.GetOrBuild(ctx, projectRoot, primaryContextPath)
	if err != nil {
		return nil, err
	}

	qVec, err := s.embedder.Embed(ctx, promptText)
	if err != nil {
		return nil, err
	}

	procCategory := chunk.CategoryProcedure
	ctxCategory := chunk.CategoryContext

	var procResults, ctxResults []vectorstore.SearchResult
	if opts.TopKProcedures > 0 {
		procResults = entry.Vectors.Search(qVec, opts.TopKProcedures, &procCategory)
	}
	if opts.TopKContext > 0 {
		ctxResults = entry.Vectors.Search(qVec, opts.TopKContext, &ctxCategory)
	}

	sortByPresentation(procResults)
	sortByPresentation(ctxResults)

	var procSummaries, ctxSummaries []summary.Summary
	if opts.IncludeSummaries {
		procSummaries = sortedSummaries(entry.ProcedureSummaries)
		ctxSummaries = sortedSummaries(entry.ContextSummaries)
	}

	tracker := footnote.New()
	sources := recordSources(tracker, procResults, ctxResults)

	assembled := assembleEnvelope(s.roleFraming, procSummaries, ctxSummaries, procResults, ctxResults, promptText, opts.MaxTokens)

	return &Result{
		AssembledContext: assembled,
		ProcResults:      procResults,
		CtxResults:       ctxResults,
		ProcSummaries:    procSummaries,
		CtxSummaries:     ctxSummaries,
		Sources:          sources,
	}, nil
}

func sortByPresentation(results []vectorstore.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Entry.FileName != results[j].Entry.FileName {
			return results[i].Entry.FileName < results[j].Entry.FileName
		}
		return results[i].Entry.ChunkIndex < results[j].Entry.ChunkIndex
	})
}

func sortedSummaries(store *summary.Store) []summary.Summary {
	all := store.All()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]summary.Summary, len(names))
	for i, name := range names {
		out[i] = all[name]
	}
	return out
}

func recordSources(tracker *footnote.Tracker, procResults, ctxResults []vectorstore.SearchResult) []int {
	var ids []int
	for _, r := range procResults {
		ids = append(ids, tracker.AddChunk(r.Entry.Category, r.Entry.FileName, r.Entry.ChunkIndex))
	}
	for _, r := range ctxResults {
		ids = append(ids, tracker.AddChunk(r.Entry.Category, r.Entry.FileName, r.Entry.ChunkIndex))
	}
	return ids
}

// assembleEnvelope builds the context string per spec.md §6's exact
// layout, then enforces maxTokens by dropping Tier 2 entries from the
// bottom (context chunks first, then procedure chunks), never touching
// Tier 1 or Tier 3.
func assembleEnvelope(roleFraming string, procSummaries, ctxSummaries []summary.Summary, procResults, ctxResults []vectorstore.SearchResult, promptText string, maxTokens int) string {
	procExcerpts := append([]vectorstore.SearchResult(nil), procResults...)
	ctxExcerpts := append([]vectorstore.SearchResult(nil), ctxResults...)

	for {
		rendered := renderEnvelope(roleFraming, procSummaries, ctxSummaries, procExcerpts, ctxExcerpts, promptText)
		if estimateTokens(rendered) <= maxTokens || (len(procExcerpts) == 0 && len(ctxExcerpts) == 0) {
			return rendered
		}
		if len(ctxExcerpts) > 0 {
			ctxExcerpts = ctxExcerpts[:len(ctxExcerpts)-1]
			continue
		}
		procExcerpts = procExcerpts[:len(procExcerpts)-1]
	}
}

func estimateTokens(text string) int {
	return len(text) / charsPerToken
}

func renderEnvelope(roleFraming string, procSummaries, ctxSummaries []summary.Summary, procResults, ctxResults []vectorstore.SearchResult, promptText string) string {
	var b strings.Builder
	b.WriteString("ROLE & BEHAVIORAL INSTRUCTIONS\n")
	b.WriteString(roleFraming)
	b.WriteString("\n\n")

	b.WriteString("COMPANY PROCEDURES OVERVIEW\n")
	for _, sum := range procSummaries {
		b.WriteString(sum.Text)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("PROJECT CONTEXT OVERVIEW\n")
	for _, sum := range ctxSummaries {
		b.WriteString(sum.Text)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("RELEVANT PROCEDURE EXCERPTS\n")
	for _, r := range procResults {
		fmt.Fprintf(&b, "[%s (Section %d)]\n%s\n", r.Entry.FileName, r.Entry.ChunkIndex, r.Entry.Text)
	}
	b.WriteString("\n")

	b.WriteString("RELEVANT CONTEXT EXCERPTS\n")
	for _, r := range ctxResults {
		fmt.Fprintf(&b, "[%s (Section %d)]\n%s\n", r.Entry.FileName, r.Entry.ChunkIndex, r.Entry.Text)
	}
	b.WriteString("\n")

	b.WriteString("=== TASK ===\n")
	b.WriteString(promptText)

	return b.String()
}
