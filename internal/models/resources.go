package models

// Hotline is a crisis support line the user can call or text.
type Hotline struct {
	Name        string `json:"name"`
	Number      string `json:"number"`
	Description string `json:"description,omitempty"`
	Available   string `json:"available,omitempty"`
}

// OnlineResource points at a website or chat service.
type OnlineResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CrisisResourceSet holds the country-specific emergency contacts shown to
// the user when crisis support is needed.
type CrisisResourceSet struct {
	Country         string           `json:"country"`
	CountryName     string           `json:"country_name"`
	EmergencyNumber string           `json:"emergency_number"`
	Hotlines        []Hotline        `json:"hotlines"`
	OnlineResources []OnlineResource `json:"online_resources"`
}

// Empty reports whether the set carries no actionable contact at all.
func (r CrisisResourceSet) Empty() bool {
	return r.EmergencyNumber == "" && len(r.Hotlines) == 0 && len(r.OnlineResources) == 0
}
