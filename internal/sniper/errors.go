package sniper

import "errors"

var (
	// ErrNotFound means the prospect id does not exist in the store.
	ErrNotFound = errors.New("sniper: prospect not found")

	// ErrInvalidTransition means the prospect is no longer in the status the
	// action requires; a double-click on approve lands here instead of
	// enqueueing a second outreach task.
	ErrInvalidTransition = errors.New("sniper: status transition not allowed")

	// ErrOutreachFailed means the status write succeeded but the outreach
	// task could not be enqueued; the status write was compensated.
	ErrOutreachFailed = errors.New("sniper: outreach enqueue failed")
)
