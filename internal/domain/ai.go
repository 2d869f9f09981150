package domain

import "context"

// ChatProvider is the primary hosted AI provider: a structured chat
// call carrying the resume document plus instruction text. The reply
// is provider-native and of unknown shape; callers must run it through
// the response extractor before parsing. Any error, including
// rate-limit and credit-exhaustion conditions, means "unavailable,
// fall back" — the provider's error taxonomy is opaque.
type ChatProvider interface {
	AnalyzeDocument(ctx context.Context, document []byte, instructions string) (any, error)
}

// CompletionProvider is the secondary, locally reachable model
// endpoint. It takes a fully assembled prompt and returns raw text;
// a non-2xx response is a hard failure for that attempt.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	// Ready probes the endpoint. Callers apply a bounded timeout and
	// treat a miss as permanent unavailability rather than waiting.
	Ready(ctx context.Context) error
}

// FeedbackResolver obtains a feedback payload for a record, falling
// back from the primary to the secondary provider. The result is the
// extracted reply text (string) on the primary path or an
// already-structured record (map[string]any) on the secondary path;
// the secondary path never yields an empty result.
type FeedbackResolver interface {
	Resolve(ctx context.Context, rec *ResumeRecord) (any, error)
}
