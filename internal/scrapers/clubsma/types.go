package clubsma

// NotAvailable is the value of any text field whose source element is missing.
const NotAvailable = "N/A"

// Listing is a single club of the clubs.ma directory.
//
// The json field order is the order the fields are extracted in.
type Listing struct {
	Name            string   `json:"name"`
	Verified        bool     `json:"verified"`
	IsTopPartner    bool     `json:"is_top_partner"`
	Type            string   `json:"type"`
	Address         string   `json:"address"`
	Quarter         string   `json:"quarter"`
	City            string   `json:"city"`
	Phone           string   `json:"phone"`
	Description     string   `json:"description"`
	ImageUrl        string   `json:"image_url"`
	Url             string   `json:"url"`
	Rating          float64  `json:"rating"`
	SpecialBadge    string   `json:"special_badge"`
	Activities      []string `json:"activities"`
	HasContactForm  bool     `json:"has_contact_form"`
	OffersFreeTrial bool     `json:"offers_free_trial"`
}
