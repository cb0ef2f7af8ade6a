package domain

import "errors"

var (
	// ErrCategoryNotFound is returned when a category name is not present in the store.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCategoryExists is returned when creating a category that is already present.
	ErrCategoryExists = errors.New("category already exists")

	// ErrInvalidCategoryName is returned for blank category names.
	ErrInvalidCategoryName = errors.New("invalid category name")

	// ErrEmptyCategory is returned when starting a quiz on a category with no questions.
	ErrEmptyCategory = errors.New("category has no questions")

	// ErrInvalidQuestion is returned when a question fails structural validation.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrNoSession is returned when the caller has no active quiz session.
	ErrNoSession = errors.New("no active quiz session")

	// ErrSessionFinished is returned when acting on the current question of a finished session.
	ErrSessionFinished = errors.New("quiz session finished")
)
