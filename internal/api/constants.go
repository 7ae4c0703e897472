package api

// API limits and constants.
const (
	// MaxUploadSize is the default limit of a single photo (10 MB).
	MaxUploadSize = 10 << 20

	// maxPhotoFiles sizes the request body limit of an upload in maximum-size
	// photos. The wizard keeps at most five; the rest are counted as truncated.
	maxPhotoFiles = 16

	// photoFormField is the multipart field holding photo files.
	photoFormField = "photos"
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheOneDay  = "public, max-age=86400"
	CacheNoStore = "no-store"
)
