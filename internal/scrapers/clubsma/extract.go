package clubsma

import (
	"strconv"
	"strings"

	"clubscraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	selectorListing      = "li[itemprop=itemListElement]"
	selectorName         = "h3[itemprop=name]"
	selectorVerified     = ".verified-check"
	classTopPartner      = "top-partner"
	selectorType         = ".locality strong"
	selectorAddress      = "span[itemprop=address]"
	selectorQuarter      = "a[title*='Quartier'], a[title*='quartier']"
	selectorCity         = "a[title*='Casablanca'], a[title*='casablanca']"
	selectorPhone        = "span.club-phone"
	selectorDescription  = "p[itemprop=description]"
	selectorImage        = "img[itemprop=image]"
	selectorUrl          = "a[itemprop=url]"
	selectorRating       = ".rating-input"
	selectorSpecialBadge = ".badge-partner-1"
	selectorActivities   = ".club-sports a.badge"
	selectorContactForm  = "a[href*='#contact']"
	selectorFreeTrial    = "a[href*='#essai']"
)

// lookup finds a single field inside a listing node, ok is false when the
// markup the field comes from is absent.
type lookup[T any] func(item *goquery.Selection) (value T, ok bool)

func lookupOr[T any](item *goquery.Selection, fn lookup[T], fallback T) T {
	value, ok := fn(item)
	if !ok {
		return fallback
	}
	return value
}

func firstText(selector string) lookup[string] {
	return func(item *goquery.Selection) (string, bool) {
		return htmlutil.FirstText(item.Find(selector))
	}
}

func exists(selector string) lookup[bool] {
	return func(item *goquery.Selection) (bool, bool) {
		return item.Find(selector).Length() > 0, true
	}
}

func lookupTopPartner(item *goquery.Selection) (bool, bool) {
	return item.HasClass(classTopPartner), true
}

type address struct {
	full    string
	quarter string
	city    string
}

// quarter and city are only looked for inside the address container.
func lookupAddress(item *goquery.Selection) (address, bool) {
	container := item.Find(selectorAddress).First()
	full, ok := htmlutil.FirstText(container)
	if !ok {
		return address{}, false
	}
	return address{
		full:    full,
		quarter: lookupOr(container, firstText(selectorQuarter), NotAvailable),
		city:    lookupOr(container, firstText(selectorCity), NotAvailable),
	}, true
}

// a non-empty src wins, otherwise data-src is used as long as the attribute exists.
func lookupImageUrl(item *goquery.Selection) (string, bool) {
	img := item.Find(selectorImage).First()
	if img.Length() == 0 {
		return "", false
	}
	if src := img.AttrOr("src", ""); src != "" {
		return src, true
	}
	return img.Attr("data-src")
}

func lookupUrl(origin string) lookup[string] {
	return func(item *goquery.Selection) (string, bool) {
		href := item.Find(selectorUrl).First().AttrOr("href", "")
		if href == "" {
			return "", false
		}
		return origin + href, true
	}
}

func lookupRating(item *goquery.Selection) (float64, bool) {
	value, ok := item.Find(selectorRating).First().Attr("value")
	if !ok {
		return 0, false
	}
	rating, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return rating, true
}

func lookupActivities(item *goquery.Selection) ([]string, bool) {
	activities := htmlutil.Texts(item.Find(selectorActivities))
	return activities, len(activities) > 0
}

// Extractor turns a listing page into Listings.
type Extractor struct {
	// SiteOrigin is prepended to the relative link of every listing.
	SiteOrigin string
}

// ExtractListing reads every field of a single listing node, a field whose markup
// is missing gets its default instead of failing the listing.
func (e Extractor) ExtractListing(item *goquery.Selection) Listing {
	addr := lookupOr(item, lookupAddress, address{
		full:    NotAvailable,
		quarter: NotAvailable,
		city:    NotAvailable,
	})

	return Listing{
		Name:            lookupOr(item, firstText(selectorName), NotAvailable),
		Verified:        lookupOr(item, exists(selectorVerified), false),
		IsTopPartner:    lookupOr(item, lookupTopPartner, false),
		Type:            lookupOr(item, firstText(selectorType), NotAvailable),
		Address:         addr.full,
		Quarter:         addr.quarter,
		City:            addr.city,
		Phone:           lookupOr(item, firstText(selectorPhone), NotAvailable),
		Description:     lookupOr(item, firstText(selectorDescription), NotAvailable),
		ImageUrl:        lookupOr(item, lookupImageUrl, NotAvailable),
		Url:             lookupOr(item, lookupUrl(e.SiteOrigin), NotAvailable),
		Rating:          lookupOr(item, lookupRating, 0),
		SpecialBadge:    lookupOr(item, firstText(selectorSpecialBadge), NotAvailable),
		Activities:      lookupOr(item, lookupActivities, []string{}),
		HasContactForm:  lookupOr(item, exists(selectorContactForm), false),
		OffersFreeTrial: lookupOr(item, exists(selectorFreeTrial), false),
	}
}

// ExtractListings returns the listings of a page in document order.
func (e Extractor) ExtractListings(doc *goquery.Document) []Listing {
	nodes := doc.Find(selectorListing)
	listings := make([]Listing, 0, nodes.Length())
	nodes.Each(func(_ int, item *goquery.Selection) {
		listings = append(listings, e.ExtractListing(item))
	})
	return listings
}
