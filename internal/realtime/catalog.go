package realtime

import "github.com/carehub/storefront/internal/catalog"

// EventCatalogReloaded announces that a file-backed catalog picked up new fixtures.
const EventCatalogReloaded = "catalog.reloaded"

// CatalogMessage summarises a fixture set so clients know to refetch.
func CatalogMessage(source string, fixtures *catalog.Fixtures) Message {
	data := map[string]any{"source": source}
	if fixtures != nil {
		data["banners"] = len(fixtures.Banners)
		data["services"] = len(fixtures.Services)
		data["emergency"] = len(fixtures.Emergency)
		data["categories"] = len(fixtures.Categories)
	}
	return Message{Stream: StreamCatalog, Event: EventCatalogReloaded, Data: data}
}
