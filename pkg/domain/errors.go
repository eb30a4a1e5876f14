package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the registry or store.
var ErrSessionNotFound = errors.New("session not found")

// ErrDuplicateSession is returned when a session ID is registered twice.
var ErrDuplicateSession = errors.New("session already registered")

// ErrUnknownRecipient is returned when a message is addressed to an actor that was never registered.
var ErrUnknownRecipient = errors.New("unknown recipient")

// ErrTimeout is returned when a session does not reach a terminal status within its budget.
var ErrTimeout = errors.New("session timed out")

// ErrInvalidDecision is returned when a planner decision fails validation.
var ErrInvalidDecision = errors.New("invalid decision")

// ErrUnknownCategory is returned when a knowledge category is outside the known category space.
var ErrUnknownCategory = errors.New("unknown knowledge category")
