// Package id generates opaque identifiers: token IDs and media file names.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// tokenAlphabet omits '-' and '_' so token IDs survive copy and paste from logs.
const tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// tokenSize gives roughly 190 bits of entropy.
const tokenSize = 32

// TokenID returns a new auth token identifier ("tok-" + 32 alphanumerics).
func TokenID() (string, error) {
	id, err := gonanoid.Generate(tokenAlphabet, tokenSize)
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	return "tok-" + id, nil
}

// FileName returns a random UUID file name with the given extension.
// The extension is lowercased and may be passed with or without its dot.
func FileName(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return uuid.NewString()
	}
	return uuid.NewString() + "." + ext
}
