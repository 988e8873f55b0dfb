// Package logging provides structured, slog-based logging with file
// rotation for the phasergun retrieval and cache core. Every component is
// handed an injected *slog.Logger rather than reaching for a package-level
// default, per spec.md §9's "explicit dependency-injected handles" note.
package logging
