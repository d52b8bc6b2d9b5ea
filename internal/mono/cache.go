package mono

import (
	"fmt"

	"ferrum/internal/types"
)

// cacheKey is (template identity, fingerprint). Templates are pointers, so
// identity is pointer equality.
type cacheKey struct {
	tmpl any
	fp   uint64
}

type cacheEntry struct {
	table *types.GenericsTable
	value any
}

// Record describes one cached instantiation, for reporting.
type Record struct {
	Template    string
	Args        []types.Type
	Fingerprint uint64
	Result      string
}

// Cache memoizes instantiations by (template, fingerprint). On a fingerprint
// hit the stored table is compared with the requested one, so a hash
// collision produces a second entry instead of a wrong result.
// A nil *Cache is valid and caches nothing.
type Cache struct {
	entries map[cacheKey][]cacheEntry
	records []Record
	hits    int
	misses  int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]cacheEntry, 32)}
}

func (c *Cache) lookup(key cacheKey, table *types.GenericsTable) (any, bool) {
	if c == nil {
		return nil, false
	}
	for _, e := range c.entries[key] {
		if e.table.Equal(table) {
			c.hits++
			return e.value, true
		}
	}
	c.misses++
	return nil, false
}

func (c *Cache) store(key cacheKey, table *types.GenericsTable, name string, value any) {
	if c == nil {
		return
	}
	if c.entries == nil {
		c.entries = make(map[cacheKey][]cacheEntry)
	}
	c.entries[key] = append(c.entries[key], cacheEntry{table: table, value: value})
	c.records = append(c.records, Record{
		Template:    name,
		Args:        table.Types(),
		Fingerprint: table.Fingerprint(),
		Result:      describe(value),
	})
}

// Len returns the number of cached instantiations.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Hits returns how many requests were served from the cache.
func (c *Cache) Hits() int {
	if c == nil {
		return 0
	}
	return c.hits
}

// Misses returns how many requests had to generate a value.
func (c *Cache) Misses() int {
	if c == nil {
		return 0
	}
	return c.misses
}

// Entries lists cached instantiations in the order they were produced.
func (c *Cache) Entries() []Record {
	if c == nil || len(c.records) == 0 {
		return nil
	}
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

func describe(v any) string {
	switch x := v.(type) {
	case *types.Struct:
		return types.StructType(x).String()
	case *types.Enum:
		return types.EnumType(x).String()
	case *types.Tuple:
		return types.TupleType(x).String()
	case *Function:
		return fmt.Sprintf("fn %s", x.Header.Namespace.Qualify(x.Header.Name))
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%T", v)
	}
}
