package places

// MaxResultCount is the page size the service caps text searches at.
const MaxResultCount = 20

var (
	CountFields     = []string{"places.id", "nextPageToken"}
	DiscoveryFields = []string{"places.id", "places.displayName", "places.formattedAddress", "places.location"}
	DetailFields    = []string{
		"places.id", "places.displayName", "places.rating", "places.userRatingCount",
		"places.formattedAddress", "places.location", "places.photos", "places.currentOpeningHours",
	}
)

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type LocationBias struct {
	Circle Circle `json:"circle"`
}

// SearchRequest is the body of places:searchText.
type SearchRequest struct {
	TextQuery      string        `json:"textQuery"`
	LanguageCode   string        `json:"languageCode"`
	MaxResultCount int           `json:"maxResultCount"`
	IncludedType   string        `json:"includedType,omitempty"`
	PageToken      string        `json:"pageToken,omitempty"`
	LocationBias   *LocationBias `json:"locationBias,omitempty"`
}

type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
}

type Photo struct {
	Name     string `json:"name"`
	WidthPx  int    `json:"widthPx"`
	HeightPx int    `json:"heightPx"`
}

type OpeningHours struct {
	OpenNow             *bool    `json:"openNow,omitempty"`
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

type Place struct {
	ID                  string         `json:"id"`
	DisplayName         *LocalizedText `json:"displayName,omitempty"`
	FormattedAddress    string         `json:"formattedAddress"`
	Location            *LatLng        `json:"location,omitempty"`
	Rating              float64        `json:"rating"`
	UserRatingCount     int            `json:"userRatingCount"`
	Photos              []Photo        `json:"photos"`
	CurrentOpeningHours *OpeningHours  `json:"currentOpeningHours,omitempty"`
}

// Name returns the display name text or an empty string.
func (p Place) Name() string {
	if p.DisplayName == nil {
		return ""
	}
	return p.DisplayName.Text
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type SearchResponse struct {
	Places        []Place   `json:"places"`
	NextPageToken string    `json:"nextPageToken"`
	Error         *apiError `json:"error,omitempty"`
}
