package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"clubscraper/internal/scrapers/clubsma"

	"github.com/gocarina/gocsv"
)

// ActivitiesSeparator joins the activities of a listing into a single csv cell.
const ActivitiesSeparator = ", "

// csvRow is a Listing flattened for a spreadsheet, the field order is the column order.
type csvRow struct {
	Name            string  `csv:"name"`
	Type            string  `csv:"type"`
	Address         string  `csv:"address"`
	Quarter         string  `csv:"quarter"`
	City            string  `csv:"city"`
	Phone           string  `csv:"phone"`
	Rating          float64 `csv:"rating"`
	Verified        bool    `csv:"verified"`
	IsTopPartner    bool    `csv:"is_top_partner"`
	SpecialBadge    string  `csv:"special_badge"`
	Description     string  `csv:"description"`
	ImageUrl        string  `csv:"image_url"`
	Url             string  `csv:"url"`
	Activities      string  `csv:"activities"`
	HasContactForm  bool    `csv:"has_contact_form"`
	OffersFreeTrial bool    `csv:"offers_free_trial"`
}

func toCsvRow(l clubsma.Listing) csvRow {
	return csvRow{
		Name:            l.Name,
		Type:            l.Type,
		Address:         l.Address,
		Quarter:         l.Quarter,
		City:            l.City,
		Phone:           l.Phone,
		Rating:          l.Rating,
		Verified:        l.Verified,
		IsTopPartner:    l.IsTopPartner,
		SpecialBadge:    l.SpecialBadge,
		Description:     l.Description,
		ImageUrl:        l.ImageUrl,
		Url:             l.Url,
		Activities:      strings.Join(l.Activities, ActivitiesSeparator),
		HasContactForm:  l.HasContactForm,
		OffersFreeTrial: l.OffersFreeTrial,
	}
}

// CSVFile writes listings as a csv file with a header row. Booleans are written
// as true/false and ratings in their shortest form (4.5, 4, 0).
type CSVFile struct {
	Path string
}

func (c CSVFile) Name() string {
	return c.Path
}

func (c CSVFile) Write(_ context.Context, listings []clubsma.Listing) error {
	rows := make([]csvRow, len(listings))
	for i, l := range listings {
		rows[i] = toCsvRow(l)
	}

	f, err := create(c.Path)
	if err != nil {
		return err
	}
	err = gocsv.MarshalFile(&rows, f)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func create(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
