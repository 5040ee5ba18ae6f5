package models

// Stats aggregates the dashboard counters.
type Stats struct {
	BachelorSubjects int `json:"bachelor_subjects"`
	DiplomaSubjects  int `json:"diploma_subjects"`
	Activities       int `json:"activities"`
	PublishedBlogs   int `json:"published_blogs"`
}
