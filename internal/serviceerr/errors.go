package serviceerr

import "errors"

var ErrNotFound = errors.New("not found")
var ErrInvalidInput = errors.New("invalid input")
var ErrNotLoggedIn = errors.New("not logged in")
