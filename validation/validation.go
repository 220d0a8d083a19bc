// Package validation carries the non-fatal anomaly side channel used across
// the compiler. Warnings never abort a compilation; they accumulate on the
// context and are drained by the caller once the run completes.
package validation

import (
	"context"
	"fmt"
	"sync"
)

const (
	// RuleSkippedContentType is reported when a request body or response
	// declares only non-JSON content and is ignored.
	RuleSkippedContentType = "skipped-content-type"
	// RuleSkippedStatusCode is reported when a response status code is not
	// purely numeric (wildcard forms such as "4XX" or "default").
	RuleSkippedStatusCode = "skipped-status-code"
	// RuleSanitizedIdentifier is reported whenever identifier sanitization
	// alters a name from the source document.
	RuleSanitizedIdentifier = "sanitized-identifier"
	// RuleSkippedParameter is reported when a parameter cannot be carried to
	// the output, either because its location is unknown or because the
	// target has no slot for it (cookies).
	RuleSkippedParameter = "skipped-parameter"
)

// Warning is a non-fatal anomaly found while compiling a document.
type Warning struct {
	Rule    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Rule, w.Message)
}

type contextKey string

const warningsContextKey = contextKey("warnings")

// collector is safe for concurrent use; schema compilation may report
// warnings from parallel goroutines.
type collector struct {
	mu       sync.Mutex
	warnings []Warning
}

// ContextWithWarnings installs a warning collector on the context. Without
// one, AddWarning is a no-op, keeping the compiler usable from callers that
// don't care about warnings.
func ContextWithWarnings(ctx context.Context) context.Context {
	return context.WithValue(ctx, warningsContextKey, &collector{})
}

// AddWarning records a warning against the given rule.
func AddWarning(ctx context.Context, rule, format string, args ...any) {
	c, ok := ctx.Value(warningsContextKey).(*collector)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, Warning{Rule: rule, Message: fmt.Sprintf(format, args...)})
}

// GetWarnings returns the warnings collected so far, in the order they were
// reported.
func GetWarnings(ctx context.Context) []Warning {
	c, ok := ctx.Value(warningsContextKey).(*collector)
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.warnings) == 0 {
		return nil
	}

	return append([]Warning(nil), c.warnings...)
}
