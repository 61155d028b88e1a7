// Package notifications delivers push notifications through ntfy.
//
// NewService returns a noop implementation when no topic is configured, so
// callers never need to guard their notification calls. Batch start and
// completion pushes honor the notify_on_start and notify_on_complete config
// toggles; session lifecycle and test pushes are always sent.
package notifications
