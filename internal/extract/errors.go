package extract

import (
	"errors"
	"fmt"
)

// Kind classifies extraction failures so the orchestrator can decide
// between tier fallthrough and terminating the cascade.
type Kind int

const (
	// KindNotExtractable means the URL shape did not match any known
	// pattern for the extractor (for example no job ID was found).
	KindNotExtractable Kind = iota
	// KindParseFailure means an expected embedded-data marker or
	// selector was missing from otherwise fetched content.
	KindParseFailure
	// KindValidationRejected means content was fetched but failed the
	// usability heuristics.
	KindValidationRejected
	// KindKnownBlockedSite means the domain is on the curated list of
	// sites that resist every available strategy. Terminal.
	KindKnownBlockedSite
	// KindUnscrapableAggregator means a Google Jobs page had no
	// resolvable source link. Terminal.
	KindUnscrapableAggregator
	// KindAllTiersExhausted means every applicable tier failed or was
	// unavailable. Terminal.
	KindAllTiersExhausted
)

func (k Kind) String() string {
	switch k {
	case KindNotExtractable:
		return "not-extractable"
	case KindParseFailure:
		return "parse-failure"
	case KindValidationRejected:
		return "validation-rejected"
	case KindKnownBlockedSite:
		return "known-blocked-site"
	case KindUnscrapableAggregator:
		return "unscrapable-aggregator"
	case KindAllTiersExhausted:
		return "all-tiers-exhausted"
	}
	return "unknown"
}

// Error is a classified extraction failure. Message is always safe to
// show to an end user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a classified error around an underlying cause.
func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the classification from an error chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsTerminal reports whether the error must short-circuit the cascade
// instead of triggering fallthrough to the next tier.
func IsTerminal(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	switch k {
	case KindKnownBlockedSite, KindUnscrapableAggregator, KindAllTiersExhausted:
		return true
	}
	return false
}
