package engine

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/tartampluch/go-birthday-web/internal/config"
)

// Author is one entry of the author directory.
type Author struct {
	// Key is the lower-case last name used in URLs.
	Key         string
	FullName    string
	Nationality string
	NotableWork string
	Born        CalendarDate
}

// BornDisplay renders the birth date as "January 19, 1809".
func (a Author) BornDisplay() string {
	return a.Born.Time(time.UTC).Format(config.DateFormatBorn)
}

// Directory is an immutable lookup table of authors keyed by last name.
// It is built once at start and safe for concurrent reads.
type Directory struct {
	byKey map[string]Author
}

// NewDirectory indexes the given authors. On duplicate keys the first one wins.
func NewDirectory(authors ...Author) *Directory {
	d := &Directory{byKey: make(map[string]Author, len(authors))}
	for _, a := range authors {
		key := normalizeKey(a.Key)
		if _, exists := d.byKey[key]; exists {
			continue
		}
		a.Key = key
		d.byKey[key] = a
	}
	return d
}

// Lookup finds an author by key, ignoring case and surrounding spaces.
func (d *Directory) Lookup(key string) (Author, bool) {
	a, ok := d.byKey[normalizeKey(key)]
	return a, ok
}

// All returns every author sorted by key.
func (d *Directory) All() []Author {
	keys := slices.Sorted(maps.Keys(d.byKey))
	out := make([]Author, 0, len(keys))
	for _, k := range keys {
		out = append(out, d.byKey[k])
	}
	return out
}

// Len reports the number of authors.
func (d *Directory) Len() int {
	return len(d.byKey)
}

// Anniversaries projects the directory onto calendar entries, one per author.
func (d *Directory) Anniversaries() []Anniversary {
	authors := d.All()
	out := make([]Anniversary, 0, len(authors))
	for _, a := range authors {
		out = append(out, Anniversary{Name: a.FullName, Date: a.Born})
	}
	return out
}

// DefaultAuthors returns the built-in directory entries.
func DefaultAuthors() []Author {
	return []Author{
		{
			Key:         "poe",
			FullName:    "Edgar Allan Poe",
			Nationality: "US",
			NotableWork: "The Raven",
			Born:        CalendarDate{Year: 1809, Month: time.January, Day: 19},
		},
		{
			Key:         "borges",
			FullName:    "Jorge Luis Borges",
			Nationality: "Argentine",
			NotableWork: "The Aleph",
			Born:        CalendarDate{Year: 1899, Month: time.August, Day: 24},
		},
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
