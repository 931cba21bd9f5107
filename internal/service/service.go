package service

import (
	"errors"

	"practice-planner/internal/repository"
)

var (
	// ErrInvalidInput marks validation failures; no state was changed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCategoryExists is returned when a category name is already taken, ignoring case.
	ErrCategoryExists = errors.New("category already exists")
)

// StoreProvider resolves the store that reads and writes are directed at.
type StoreProvider interface {
	Store() repository.Store
}

// StoreFunc adapts a function to StoreProvider.
type StoreFunc func() repository.Store

func (f StoreFunc) Store() repository.Store {
	return f()
}

// Fixed returns a provider that always resolves to store.
func Fixed(store repository.Store) StoreProvider {
	return StoreFunc(func() repository.Store { return store })
}
