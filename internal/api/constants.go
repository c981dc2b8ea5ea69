package api

// API limits and constants.
const (
	// MaxUploadSize is the default limit for recipe image uploads (10 MB).
	MaxUploadSize = 10 << 20

	// mediaPrefix is where uploaded files are served from.
	mediaPrefix = "/media/"
)

// Cache-Control header values.
const (
	CacheOneDayPrivate = "private, max-age=86400"
)
