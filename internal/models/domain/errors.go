package domain

import "errors"

// Blocking precondition and lifecycle errors surfaced to users as plain text.
var (
	// ErrDraftExists means the user already has a draft for today and must
	// resume or delete it before starting another.
	ErrDraftExists = errors.New("a draft assessment already exists for today")

	// ErrNoStations means the station directory is empty; no assessment can
	// be started until at least one station is configured.
	ErrNoStations = errors.New("no stations are configured")

	// ErrNotFound covers missing or inaccessible records.
	ErrNotFound = errors.New("assessment not found")

	// ErrNotAllowed means the caller lacks edit permission.
	ErrNotAllowed = errors.New("not permitted to edit assessments")

	// ErrNotPublishable means publish was requested outside the review step.
	ErrNotPublishable = errors.New("assessment is not ready to publish")

	// ErrPublishFailed means the final record write did not complete; the
	// assessment remains a draft.
	ErrPublishFailed = errors.New("publishing the assessment failed")

	// ErrNoActiveFlow means the user has no in-progress assessment session.
	ErrNoActiveFlow = errors.New("no assessment in progress")
)
