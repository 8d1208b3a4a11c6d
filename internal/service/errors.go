package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("error invalid credentials")
	ErrNotAuthenticated   = errors.New("error not authenticated")
	ErrNothingToReport    = errors.New("error nothing to report")
)
