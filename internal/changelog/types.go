package changelog

import (
	"cloud.google.com/go/civil"
)

// Changelog is a parsed Keep a Changelog document: its release entries in
// document order, typically newest first.
type Changelog struct {
	Entries []*Entry
}

// Entry is one "## [version]" block and everything under it.
type Entry struct {
	Version Version
	// Date is nil when the heading carried no date.
	Date   *civil.Date
	Yanked bool
	// Changes holds the category sections present on the entry. A category
	// never appears twice; a section without bullets maps to an empty slice.
	Changes map[Category][]string
	// CompareURL is set from a trailing "[version]: url" link definition.
	CompareURL string
}

// Item is a flattened view of a single change, used for querying and display
// where the version and category are needed alongside the text.
type Item struct {
	Text     string
	Category Category
	Version  Version
}

// Category is one of the six Keep a Changelog change types.
type Category int

// Categories in their canonical rendering order.
const (
	Added Category = iota
	Changed
	Deprecated
	Removed
	Fixed
	Security
)

var categoryNames = [...]string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"}

var categoryKeys = [...]string{"added", "changed", "deprecated", "removed", "fixed", "security"}

// Categories returns all categories in canonical order.
func Categories() []Category {
	return []Category{Added, Changed, Deprecated, Removed, Fixed, Security}
}

// ValidCategories returns the lower-case category keys in canonical order.
func ValidCategories() []string {
	return categoryKeys[:]
}

// String returns the heading name, e.g. "Added".
func (c Category) String() string {
	if c < Added || c > Security {
		return "Unknown"
	}
	return categoryNames[c]
}

// Key returns the lower-case key, e.g. "added".
func (c Category) Key() string {
	if c < Added || c > Security {
		return "unknown"
	}
	return categoryKeys[c]
}

// ParseCategory matches a "### " heading name. Only the exact capitalized
// form is accepted.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return 0, false
}

// ParseCategoryKey matches a lower-case category key.
func ParseCategoryKey(key string) (Category, bool) {
	for i, k := range categoryKeys {
		if k == key {
			return Category(i), true
		}
	}
	return 0, false
}

// NewEntry returns an entry for v with an initialized Changes map.
func NewEntry(v Version) *Entry {
	return &Entry{Version: v, Changes: make(map[Category][]string)}
}

// Add appends items to category c, creating the section if needed.
func (e *Entry) Add(c Category, items ...string) {
	if e.Changes == nil {
		e.Changes = make(map[Category][]string)
	}
	if _, ok := e.Changes[c]; !ok {
		e.Changes[c] = []string{}
	}
	e.Changes[c] = append(e.Changes[c], items...)
}

// Has reports whether the entry has a section for c.
func (e *Entry) Has(c Category) bool {
	_, ok := e.Changes[c]
	return ok
}

// IsEmpty returns true if the entry has no items in any category.
func (e *Entry) IsEmpty() bool {
	return e.Count() == 0
}

// Count returns the total number of items across all categories.
func (e *Entry) Count() int {
	n := 0
	for _, items := range e.Changes {
		n += len(items)
	}
	return n
}

// Items returns the entry's changes flattened in canonical category order.
func (e *Entry) Items() []Item {
	items := make([]Item, 0, e.Count())
	for _, c := range Categories() {
		for _, text := range e.Changes[c] {
			items = append(items, Item{Text: text, Category: c, Version: e.Version})
		}
	}
	return items
}
