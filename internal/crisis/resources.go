package crisis

import "github.com/serenelabs/serene/internal/models"

// FallbackResources returns the built-in US resource set used when the
// backend cannot be reached and no profile country is known. The UI is never
// left without at least one actionable contact.
func FallbackResources() models.CrisisResourceSet {
	return models.CrisisResourceSet{
		Country:         "US",
		CountryName:     "United States",
		EmergencyNumber: "911",
		Hotlines: []models.Hotline{
			{
				Name:        "988 Suicide & Crisis Lifeline",
				Number:      "988",
				Description: "Free, confidential support for people in distress",
				Available:   "24/7",
			},
			{
				Name:        "Crisis Text Line",
				Number:      "741741",
				Description: "Text HOME to connect with a crisis counselor",
				Available:   "24/7",
			},
		},
		OnlineResources: []models.OnlineResource{
			{
				Name: "988 Lifeline Chat",
				URL:  "https://988lifeline.org/chat",
			},
		},
	}
}
