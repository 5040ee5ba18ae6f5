package models

import "time"

// Course types distinguish the two study tracks.
const (
	CourseTypeBachelor = "bachelor"
	CourseTypeDiploma  = "diploma"
)

// Subject represents a course subject within one study track.
type Subject struct {
	ID         int64     `db:"id" json:"id"`
	CourseType string    `db:"course_type" json:"course_type"`
	GroupName  string    `db:"group_name" json:"group_name"`
	Code       string    `db:"code" json:"code"`
	Title      string    `db:"title" json:"title"`
	Credits    int       `db:"credits" json:"credits"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectDetail holds the optional per-subject descriptive record (1:1).
type SubjectDetail struct {
	ID             int64   `db:"id" json:"id"`
	SubjectID      int64   `db:"subject_id" json:"subject_id"`
	TheoryHours    *int    `db:"theory_hours" json:"theory_hours"`
	PracticalHours *int    `db:"practical_hours" json:"practical_hours"`
	SelfStudyHours *int    `db:"self_study_hours" json:"self_study_hours"`
	EnglishTitle   *string `db:"english_title" json:"english_title"`
	OriginalCode   *string `db:"original_code" json:"original_code"`
	OriginalTitle  *string `db:"original_title" json:"original_title"`
	Description    *string `db:"description" json:"description"`
}

// SubjectDetailWithSubject joins a detail row with its owning subject.
type SubjectDetailWithSubject struct {
	SubjectDetail
	Subject Subject `json:"subject"`
}

// SubjectWithRelations is the list projection: subject plus prerequisite
// subjects and an optional detail record.
type SubjectWithRelations struct {
	Subject
	Prereqs []Subject      `json:"prereqs"`
	Detail  *SubjectDetail `json:"detail"`
}

// Display order for subject groups. Unknown groups sort last.
var subjectGroupOrder = map[string]int{
	"":                 0,
	"พื้นฐานวิชาชีพ":   1,
	"ชีพบังคับ":        2,
	"ชีพเลือก":         3,
}

// GroupOrder returns the fixed display rank of a subject group name.
func GroupOrder(groupName string) int {
	if rank, ok := subjectGroupOrder[groupName]; ok {
		return rank
	}
	return 999
}
