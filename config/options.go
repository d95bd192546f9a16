// Package config holds the three option surfaces a caller uses to steer
// parsing, writing, and process-wide behaviour: ParseOptions travel with a
// single read, WriteOptions with a single write, and GlobalOptions are
// installed for the duration of a WithOptions call (process-wide, not per
// goroutine).
package config

// ParsingMode controls how aggressively a codec recovers from malformed
// input.
type ParsingMode int

const (
	// Strict surfaces every decode anomaly; no partial tag is returned.
	Strict ParsingMode = iota
	// BestAttempt continues past recoverable errors (the default).
	BestAttempt
	// Relaxed additionally accepts spec-violating layouts.
	Relaxed
)

// ParseOptions governs a single read.
type ParseOptions struct {
	ReadProperties       bool
	ReadTags             bool
	ParsingMode          ParsingMode
	MaxJunkBytes         int
	ReadCoverArt         bool
	ImplicitConversions  bool
}

// DefaultParseOptions matches §6's documented defaults.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		ReadProperties:      true,
		ReadTags:            true,
		ParsingMode:         BestAttempt,
		MaxJunkBytes:        1024,
		ReadCoverArt:        true,
		ImplicitConversions: true,
	}
}

// WriteOptions governs a single write.
type WriteOptions struct {
	// PreferredPadding is the padding budget reserved when rewriting a tag;
	// nil (via HasPadding) opts out of padding entirely.
	PreferredPadding   uint32
	HasPadding         bool
	RemoveOthers       bool
	RespectReadOnly    bool
	UppercaseID3v2Chunk bool
}

// DefaultWriteOptions matches §6's documented defaults (preferred padding
// of 1024 bytes).
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		PreferredPadding:    1024,
		HasPadding:          true,
		RemoveOthers:        false,
		RespectReadOnly:     true,
		UppercaseID3v2Chunk: true,
	}
}

// GlobalOptions is process-wide configuration: the allocation guard, the
// custom-resolver toggle, and PreserveFormatSpecificItems. No code reads
// PreserveFormatSpecificItems: a generic Tag keeps its format-specific
// companion whatever its value.
type GlobalOptions struct {
	UseCustomResolvers            bool
	AllocationLimit               uint64
	PreserveFormatSpecificItems   bool
}

// DefaultGlobalOptions matches §6's documented defaults (16 MiB allocation
// limit).
func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		UseCustomResolvers:          true,
		AllocationLimit:             16 << 20,
		PreserveFormatSpecificItems: true,
	}
}

// current holds the scope stack installed by WithOptions. It starts with a
// single DefaultGlobalOptions entry, so callers who never call WithOptions
// always read the defaults. The stack is one package-level variable shared
// by every goroutine and is not synchronised: a scope installed by one
// goroutine is what Current returns in all of them until it ends.
var current = []GlobalOptions{DefaultGlobalOptions()}

// Current returns the GlobalOptions of the innermost active WithOptions
// scope, or the defaults when none is active. Scopes are process-wide, not
// per goroutine.
func Current() GlobalOptions {
	return current[len(current)-1]
}

// WithOptions runs fn with opts installed as the current GlobalOptions,
// restoring the previous scope on return (including on panic). This is the
// scoped alternative to unscoped global mutation called out in §9.
func WithOptions(opts GlobalOptions, fn func()) {
	current = append(current, opts)
	defer func() {
		current = current[:len(current)-1]
	}()
	fn()
}
