package session

import "errors"

var (
	// ErrInvalidCredentials means the auth service rejected the request
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoToken means the operation needs a stored token and there is none
	ErrNoToken = errors.New("no session token")
	// ErrUnauthenticated means the caller is not logged in
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrOperationInProgress means another login, register, verify or refresh is pending
	ErrOperationInProgress = errors.New("another session operation is in progress")
	// ErrSessionInvalidated means Logout ran while the operation was pending;
	// its result was discarded
	ErrSessionInvalidated = errors.New("session was logged out during the operation")
)
