// Package usecase implements the business logic for the posts feature.
package usecase

import "errors"

var (
	// ErrPostNotFound is returned when no post exists for the given ID.
	ErrPostNotFound = errors.New("post not found")

	// ErrNotOwner is returned when a user tries to mutate a post they do
	// not own.
	ErrNotOwner = errors.New("not the owner of this post")
)
