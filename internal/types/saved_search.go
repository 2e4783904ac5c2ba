package types

// SavedSearch is a named search the watcher runs on a schedule.
type SavedSearch struct {
	Name     string   `json:"name" validate:"required"`
	Keywords []string `json:"keywords"`
	Location string   `json:"location"`
}

// Request returns the search request for the saved search.
func (s SavedSearch) Request() SearchRequest {
	return SearchRequest{Keywords: s.Keywords, Location: s.Location}
}

// Validate checks the name and the search request.
func (s *SavedSearch) Validate() error {
	if err := toValidationError(validate.Struct(s)); err != nil {
		return err
	}
	req := s.Request()
	return req.Validate()
}
