package model

import "errors"

var (
	ErrNotFound   = errors.New("record not found")
	ErrNotAllowed = errors.New("not allowed")
)
