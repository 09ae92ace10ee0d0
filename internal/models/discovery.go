package models

// Restaurant is a place surfaced by the discovery scan.
// Restaurant is one listing found by the discovery scan. PlaceID is nil when
// the search result carried no id and is written as null.
type Restaurant struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	PlaceID *string `json:"placeId"`
	Area    string  `json:"area"`
}

// AreaDiscovery is what one area contributed to a discovery: the raw result
// count and the listings behind it.
type AreaDiscovery struct {
	Count       int          `json:"count"`
	Restaurants []Restaurant `json:"restaurants"`
}

// Discovery groups the rare-band results of one cuisine. Only areas whose
// count fell in the band appear in ByArea.
type Discovery struct {
	CuisineName string                   `json:"cuisineName"`
	Flag        string                   `json:"flag"`
	TotalCount  int                      `json:"totalCount"`
	ByArea      map[string]AreaDiscovery `json:"byArea"`
}

// DiscoveryDocument is the persisted discoveries file.
type DiscoveryDocument struct {
	LastUpdated string      `json:"lastUpdated"`
	Discoveries []Discovery `json:"discoveries"`
}
