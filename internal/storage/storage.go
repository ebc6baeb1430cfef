package storage

import "errors"

var (
	ErrHerbNotFound  = errors.New("herb not found")
	ErrHerbExists    = errors.New("herb already exists")
	ErrImageNotFound = errors.New("image not found")
	ErrFileNotFound  = errors.New("file not found")
)
