package domain

import "errors"

var (
	// ErrContactNotFound is returned when a contact does not exist on the queried side
	ErrContactNotFound = errors.New("contact not found")

	// ErrMappingNotFound is returned when no mapping links the given contact
	ErrMappingNotFound = errors.New("mapping not found")

	// ErrMissingContactID is returned when a record carries no usable identifier
	ErrMissingContactID = errors.New("missing contact id")

	// ErrUnknownEventType is returned when a webhook carries an unrecognized event type
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrUnknownSide is returned when a side discriminator is neither "a" nor "b"
	ErrUnknownSide = errors.New("unknown side")
)
