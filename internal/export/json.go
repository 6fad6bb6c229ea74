package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"clubscraper/internal/scrapers/clubsma"
)

// JSONFile writes listings as an indented json array followed by a newline,
// non-ascii text is kept as is.
type JSONFile struct {
	Path string
}

func (j JSONFile) Name() string {
	return j.Path
}

func (j JSONFile) Write(_ context.Context, listings []clubsma.Listing) error {
	f, err := create(j.Path)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(f)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	err = encoder.Encode(normalize(listings))
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// normalize makes sure empty collections are written as [] and never as null.
func normalize(listings []clubsma.Listing) []clubsma.Listing {
	out := make([]clubsma.Listing, len(listings))
	for i, l := range listings {
		if l.Activities == nil {
			l.Activities = []string{}
		}
		out[i] = l
	}
	return out
}

// ReadJSONFile reads back a file written by JSONFile.
func ReadJSONFile(path string) ([]clubsma.Listing, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var listings []clubsma.Listing
	err = json.Unmarshal(contents, &listings)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return listings, nil
}
