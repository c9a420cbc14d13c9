package models

// CandidateProfile is the subset of /api/candidateprofile/me the client reads.
type CandidateProfile struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	City        string   `json:"city,omitempty"`
	JobTitles   []string `json:"jobTitles,omitempty"`
}
