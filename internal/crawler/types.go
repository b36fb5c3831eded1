package crawler

import "jaekwon721/nikewatcher/helpers"

// Category represents one configured category source
type Category struct {
	EntryURL string
	Name     string
}

// NewCategory builds a Category from its entry URL, deriving the display name
// from the URL slug
func NewCategory(entryURL string) Category {
	return Category{
		EntryURL: entryURL,
		Name:     helpers.CategoryNameFromURL(entryURL),
	}
}

// ProductRecord is one flat product row harvested from the wall API.
// Code is the stable identity key across categories and runs; everything else
// is mutable snapshot state. Subtitle, Badge and ImageURL are optional and may
// be empty.
type ProductRecord struct {
	Code     string
	Title    string
	Subtitle string
	Badge    string
	Category string
	Currency string
	Price    float64
	URL      string
	ImageURL string
}

// Result is the typed outcome of one category's pipeline run. Either Err is
// set, or Records holds the category's harvested rows (possibly zero).
type Result struct {
	Category Category
	Records  []ProductRecord
	Pages    int
	Err      error
}

// Wall API response shapes. Only the fields the normalizer consumes are
// declared; everything else in the payload is ignored by the decoder.

type wallPages struct {
	TotalResources int    `json:"totalResources"`
	Next           string `json:"next"`
}

type wallCopy struct {
	Title    string `json:"title"`
	SubTitle string `json:"subTitle"`
}

type wallPrices struct {
	Currency     string  `json:"currency"`
	CurrentPrice float64 `json:"currentPrice"`
}

type wallPdpURL struct {
	URL string `json:"url"`
}

type wallColorwayImages struct {
	PortraitURL string `json:"portraitURL"`
}

type wallProduct struct {
	ProductCode    string             `json:"productCode"`
	BadgeLabel     string             `json:"badgeLabel"`
	Copy           wallCopy           `json:"copy"`
	Prices         wallPrices         `json:"prices"`
	PdpURL         wallPdpURL         `json:"pdpUrl"`
	ColorwayImages wallColorwayImages `json:"colorwayImages"`
}

type wallGrouping struct {
	Products []wallProduct `json:"products"`
}

type wallResponse struct {
	Pages            wallPages      `json:"pages"`
	ProductGroupings []wallGrouping `json:"productGroupings"`
}
