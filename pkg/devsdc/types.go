package devsdc

import "encoding/json"

// Response is the body returned by the address-lookup API for a postcode or
// address query.
type Response struct {
	// AddressPicker is true when the postcode maps to multiple addresses
	// with differing ballots and the caller must pick one.
	AddressPicker     bool               `json:"address_picker"`
	Addresses         []Address          `json:"addresses"`
	Dates             []DateGroup        `json:"dates"`
	ElectoralServices *ElectoralServices `json:"electoral_services"`
}

// Address is one entry in the address picker.
type Address struct {
	Address  string `json:"address"`
	Postcode string `json:"postcode"`
	UPRN     string `json:"uprn"`
	URL      string `json:"url"`
}

// DateGroup bundles the ballots sharing one poll date, plus what is known
// about the polling station for that date.
type DateGroup struct {
	Date           string          `json:"date"`
	Ballots        []BallotRef     `json:"ballots"`
	PollingStation *PollingStation `json:"polling_station"`
}

// BallotRef is the upstream's reference to a ballot; only the paper id is
// load-bearing here.
type BallotRef struct {
	BallotPaperID string `json:"ballot_paper_id"`
	Cancelled     bool   `json:"cancelled"`
}

// PollingStation reports whether the station is known for an address, and
// the station payload when it is. Station is kept raw: its GeoJSON shape
// belongs to presentation.
type PollingStation struct {
	PollingStationKnown bool            `json:"polling_station_known"`
	CustomFinder        string          `json:"custom_finder"`
	ReportProblemURL    string          `json:"report_problem_url"`
	Station             json.RawMessage `json:"station"`
}

// ElectoralServices is the council contact for the searched postcode.
type ElectoralServices struct {
	CouncilID string `json:"council_id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Postcode  string `json:"postcode"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
}
