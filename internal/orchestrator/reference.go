package orchestrator

import (
	"regexp"

	"github.com/phazer-schmid/phasergun/internal/retrieval"
)

type refKind int

const (
	refKindProcedure refKind = iota
	refKindMasterRecord
	refKindContext
)

// reference is one parsed occurrence of spec.md §4.10 step 1's reference
// notation: [Procedure|{category}], [Master Record|{field}], or
// [Context|{folder}|{filename}].
type reference struct {
	kind   refKind
	fields []string
}

var referencePattern = regexp.MustCompile(`\[(Procedure|Master Record|Context)\|([^\]]+)\]`)

// parseReferences scans promptText for every reference-notation occurrence,
// in order of appearance.
func parseReferences(promptText string) []reference {
	matches := referencePattern.FindAllStringSubmatch(promptText, -1)
	refs := make([]reference, 0, len(matches))
	for _, m := range matches {
		var kind refKind
		switch m[1] {
		case "Procedure":
			kind = refKindProcedure
		case "Master Record":
			kind = refKindMasterRecord
		case "Context":
			kind = refKindContext
		default:
			continue
		}
		refs = append(refs, reference{kind: kind, fields: splitFields(m[2])})
	}
	return refs
}

func splitFields(raw string) []string {
	var fields []string
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '|' {
			fields = append(fields, raw[start:i])
			start = i + 1
		}
	}
	fields = append(fields, raw[start:])
	return fields
}

// applyReferenceHints adjusts opts per spec.md §4.10 step 1: any
// [Procedure|...] reference forces topKProcedures to at least
// minProceduresForExplicitReference.
func applyReferenceHints(opts retrieval.Options, refs []reference) retrieval.Options {
	for _, ref := range refs {
		if ref.kind == refKindProcedure && opts.TopKProcedures < minProceduresForExplicitReference {
			opts.TopKProcedures = minProceduresForExplicitReference
		}
	}
	return opts
}
