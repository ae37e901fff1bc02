package catalog

// Key schema for the pebble catalog:
//
//   item:<id> → Item (JSON)

const prefixItem = "item:"

// itemKey returns the key for an item
func itemKey(id string) []byte {
	return []byte(prefixItem + id)
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
