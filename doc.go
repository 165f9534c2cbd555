// Package markupguard sanitizes untrusted HTML fragments before they are
// rendered as live markup.
//
// # Overview
//
// markupguard parses a fragment with the golang.org/x/net/html parser in
// <body> context, walks the resulting node tree, and renders what is left
// back to a string. The walk removes everything a [Policy] forbids:
//   - Forbidden elements (script, object, embed, form, ...) together with
//     their entire subtree
//   - Attributes whose name starts with "on" (inline event handlers)
//   - Attributes whose value carries a dangerous scheme such as
//     javascript:, wherever it appears in the value
//
// Names and values are normalized before matching: case is folded,
// compatibility forms are composed, and whitespace, control and format
// characters are dropped from values, so "JaVa\tScRiPt:" is caught.
//
// # Modes
//
// Every call takes an explicit strict flag. In strict mode the pipeline
// runs and any failure yields [FallbackHTML]. With strict false the input
// is returned byte-identical; there is no package-level switch.
//
// # Limits
//
// [Limits] cap input size, element depth and node count per item. A
// breach is reported as [CodeLimitExceeded] and degrades to the fallback.
// Depth and node count are checked on the token stream before the tree
// is built, so deeply nested input is rejected in linear time.
//
// Output is returned only if parsing and sanitizing it again reproduces
// it exactly. Markup that changes on reparse, as with some MathML and SVG
// constructs, fails with [CodeSerialize].
//
// # Thread Safety
//
// A [Sanitizer] and a [Policy] are read-only after construction and safe
// for concurrent use. Each item gets its own tree.
//
// # Example
//
//	clean := markupguard.SanitizeMarkup(userInput, true)
package markupguard
