package realtime

// Named streams clients may subscribe to.
const (
	StreamToasts  = "toasts"
	StreamCatalog = "catalog"
)

// IsKnownStream reports whether stream is served by the hub.
func IsKnownStream(stream string) bool {
	switch normalizeStream(stream) {
	case StreamToasts, StreamCatalog:
		return true
	}
	return false
}
