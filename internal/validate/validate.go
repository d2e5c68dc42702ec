package validate

import "strings"

// Thresholds for deciding whether extracted text is usable. The
// description minimum is measured against the portion after the
// "Job Description:" marker when one is present.
const (
	MinDescriptionLen = 500
	LoginWallMaxLen   = 1000
)

const descriptionMarker = "Job Description:"

// Reason identifies which heuristic rejected a piece of content.
type Reason string

const (
	ReasonOK              Reason = ""
	ReasonTooShort        Reason = "description too short"
	ReasonSignInTruncated Reason = "sign-in prompt with truncated content"
	ReasonKeepMeLoggedIn  Reason = "login wall detected"
)

// Check runs the content heuristics and reports the first one that
// rejects the text. It is a pure function over the input.
func Check(raw string) Reason {
	lower := strings.ToLower(raw)

	// "keep me logged in" is a strong login-wall signal regardless of
	// how much text came back with it.
	if strings.Contains(lower, "keep me logged in") {
		return ReasonKeepMeLoggedIn
	}

	if strings.Contains(lower, "sign in") && len(raw) < LoginWallMaxLen {
		return ReasonSignInTruncated
	}

	desc := raw
	if idx := strings.Index(raw, descriptionMarker); idx >= 0 {
		desc = raw[idx+len(descriptionMarker):]
	}
	if len(strings.TrimSpace(desc)) < MinDescriptionLen {
		return ReasonTooShort
	}

	return ReasonOK
}

// IsValid reports whether the extracted text passes every heuristic.
func IsValid(raw string) bool {
	return Check(raw) == ReasonOK
}
