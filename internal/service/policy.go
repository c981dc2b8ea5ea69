package service

import (
	"errors"
	"log/slog"

	domainerrors "github.com/recipeapp/recipe-server/internal/errors"
	"github.com/recipeapp/recipe-server/internal/store"
)

// visibility is the outcome of an access check on a user-owned record.
type visibility int

const (
	hidden visibility = iota
	visible
)

// authorize decides whether callerID may see a record owned by ownerID.
// Records are private to their owner; everything else is hidden.
func authorize(callerID, ownerID int64) visibility {
	if callerID != 0 && callerID == ownerID {
		return visible
	}
	return hidden
}

// notFound is the error for a missing record and for a hidden one alike,
// so other users' IDs cannot be probed.
func notFound(label string) error {
	return domainerrors.NotFoundf("%s not found", label)
}

// translateStoreError maps store sentinels to domain errors.
func translateStoreError(err error, label string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(label)
	}
	return err
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
