// File: utils/constants.go
package utils

// BookingLockPrefix is the prefix used for Redis booking lock keys.
const BookingLockPrefix = "lock:appointments:"

// Context keys set by the auth middleware.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)
