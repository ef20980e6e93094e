package models

// JobListing is one opportunity extracted from the model reply.
// Any field may be empty when the model left it out.
type JobListing struct {
	Title           string `json:"title"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	Description     string `json:"description"`
	ApplicationLink string `json:"application_link,omitempty"`
}

// IsEmpty reports whether none of the identifying fields were found.
func (j JobListing) IsEmpty() bool {
	return j.Title == "" && j.Company == "" && j.ApplicationLink == ""
}

type SearchQuery struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"` // empty means anywhere
}
