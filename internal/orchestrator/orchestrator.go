// Package orchestrator implements spec.md §4.10's core-facing Orchestrator:
// reference-notation parsing, retrieval, LLM envelope assembly, footnote
// rendering, and confidence scoring. Grounded on the teacher's
// pkg/agent/pipeline.go request-to-response pipeline shape, adapted from a
// tool-calling agent loop to this spec's single-pass retrieve-then-generate
// flow.
package orchestrator

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/phazer-schmid/phasergun/internal/footnote"
	"github.com/phazer-schmid/phasergun/internal/generator"
	"github.com/phazer-schmid/phasergun/internal/retrieval"
)

const taskDelimiter = "=== TASK ==="

// outputTokenCeiling is the 32k ceiling spec.md §4.10 step 6 names for
// confidence scoring.
const outputTokenCeiling = 32_000

// minProceduresForExplicitReference is the floor spec.md §4.10 step 1
// names: any [Procedure|...] reference forces at least this many
// procedure chunks.
const minProceduresForExplicitReference = 5

// ConfidenceLevel is a closed rating of how trustworthy a generation is.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Confidence is the {level, rationale, criteria} bag spec.md §4.10 step 6
// describes as heuristic, not a fixed formula.
type Confidence struct {
	Level     ConfidenceLevel
	Rationale string
	Criteria  map[string]float64
}

// UsageStats mirrors the underlying TextGenerator's token accounting.
type UsageStats struct {
	InputTokens  int
	OutputTokens int
}

// Output is GenerationOutput (spec.md §4.10 step 7).
type Output struct {
	Status           string
	GeneratedContent string
	References       []int
	Confidence       Confidence
	Usage            UsageStats
	Metadata         map[string]string
}

// Orchestrator wires a RetrievalService and a TextGenerator into a single
// generate() call.
type Orchestrator struct {
	retriever *retrieval.Service
	generator generator.TextGenerator
}

// New builds an Orchestrator.
func New(retriever *retrieval.Service, gen generator.TextGenerator) *Orchestrator {
	return &Orchestrator{retriever: retriever, generator: gen}
}

// Generate implements spec.md §4.10's generate(projectRoot,
// promptFileText, options) → GenerationOutput.
func (o *Orchestrator) Generate(ctx context.Context, projectRoot, primaryContextPath, promptFileText string, opts retrieval.Options) (*Output, error) {
	requestID := uuid.NewString()

	refs := parseReferences(promptFileText)
	opts = applyReferenceHints(opts, refs)

	result, err := o.retriever.Retrieve(ctx, projectRoot, primaryContextPath, promptFileText, opts)
	if err != nil {
		return &Output{
			Status:   "error",
			Metadata: map[string]string{"error": err.Error(), "requestId": requestID},
		}, nil
	}

	systemText, taskText := splitEnvelope(result.AssembledContext)

	genResult, err := o.generator.Generate(ctx, systemText, taskText, generator.DeterministicOptions(opts.MaxTokens))
	if err != nil {
		return &Output{
			Status:   "error",
			Metadata: map[string]string{"error": err.Error(), "requestId": requestID},
		}, nil
	}

	tracker := footnote.New()
	for _, r := range result.ProcResults {
		tracker.AddChunk(r.Entry.Category, r.Entry.FileName, r.Entry.ChunkIndex)
	}
	for _, r := range result.CtxResults {
		tracker.AddChunk(r.Entry.Category, r.Entry.FileName, r.Entry.ChunkIndex)
	}

	body := genResult.Text
	if rendered := tracker.Render(); rendered != "" {
		body = body + "\n\n" + rendered
	}

	confidence := computeConfidence(opts, result, genResult, refs)

	return &Output{
		Status:           "ok",
		GeneratedContent: body,
		References:       result.Sources,
		Confidence:       confidence,
		Usage:            UsageStats{InputTokens: genResult.InputTokens, OutputTokens: genResult.OutputTokens},
		Metadata:         map[string]string{"requestId": requestID},
	}, nil
}

// splitEnvelope divides the assembled context on the mandatory task
// delimiter into system context and the user's task message (spec.md
// §4.10 step 3, §6).
func splitEnvelope(envelope string) (systemText, taskText string) {
	idx := strings.Index(envelope, taskDelimiter)
	if idx < 0 {
		return envelope, ""
	}
	systemText = envelope[:idx]
	taskText = strings.TrimPrefix(envelope[idx:], taskDelimiter)
	taskText = strings.TrimPrefix(taskText, "\n")
	return systemText, taskText
}

func computeConfidence(opts retrieval.Options, result *retrieval.Result, gen generator.Result, refs []reference) Confidence {
	criteria := make(map[string]float64)

	coverage := sourceCoverage(opts, result)
	criteria["sourceCoverage"] = coverage

	tokenRatio := float64(gen.OutputTokens) / float64(outputTokenCeiling)
	if tokenRatio > 1 {
		tokenRatio = 1
	}
	criteria["outputTokenRatio"] = tokenRatio

	requiredCategoriesPresent := 1.0
	for _, ref := range refs {
		if ref.kind == refKindProcedure && len(result.ProcResults) == 0 {
			requiredCategoriesPresent = 0
		}
	}
	criteria["requiredCategoriesPresent"] = requiredCategoriesPresent

	score := (coverage + requiredCategoriesPresent) / 2
	level := ConfidenceLow
	rationale := "low source coverage or a referenced category returned no results"
	switch {
	case score >= 0.8:
		level = ConfidenceHigh
		rationale = "requested sources were returned in full and all referenced categories resolved"
	case score >= 0.4:
		level = ConfidenceMedium
		rationale = "some requested sources were missing or a referenced category was partially covered"
	}

	return Confidence{Level: level, Rationale: rationale, Criteria: criteria}
}

func sourceCoverage(opts retrieval.Options, result *retrieval.Result) float64 {
	requested := opts.TopKProcedures + opts.TopKContext
	if requested <= 0 {
		return 1
	}
	returned := len(result.ProcResults) + len(result.CtxResults)
	coverage := float64(returned) / float64(requested)
	if coverage > 1 {
		coverage = 1
	}
	return coverage
}
