package core

import "context"

// TextService is any collaborator that can phrase short natural-language
// snippets (the actual generative backend lives outside this process).
// Implementations must return a usable string or an error; callers are
// expected to fall back to a static phrasing on failure.
type TextService interface {
	// PrepTitle phrases the title of a derived prep reminder for an
	// upcoming assignment.
	PrepTitle(ctx context.Context, assignmentTitle string) (string, error)
}
