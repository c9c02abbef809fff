package cache

import "fmt"

// Catalog kinds cached as existence markers.
const (
	KindCategory = "category"
	KindColor    = "color"
)

// TransactionKey is where a transaction snapshot is cached.
func TransactionKey(id int64) string {
	return fmt.Sprintf("transactions:%d", id)
}

// TransactionKeys maps ids onto their snapshot keys.
func TransactionKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = TransactionKey(id)
	}
	return keys
}

// CatalogKey marks a category or color id as known to exist.
func CatalogKey(kind string, id int64) string {
	return fmt.Sprintf("catalog:%s:%d", kind, id)
}
