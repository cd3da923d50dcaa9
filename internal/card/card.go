package card

import (
	"regexp"
	"strings"
	"time"
)

// Request is a validated library card request.
type Request struct {
	FullName         string `json:"fullName" yaml:"fullName" validate:"required"`
	EnrollmentNumber string `json:"enrollmentNumber" yaml:"enrollmentNumber" validate:"required"`
	Department       string `json:"department" yaml:"department" validate:"required"`
	Course           string `json:"course" yaml:"course" validate:"required"`
	Semester         string `json:"semester" yaml:"semester" validate:"required"`
	ValidityYears    int    `json:"validityYears" yaml:"validityYears" validate:"min=1,max=5"`
	PhotoURL         string `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty" validate:"omitempty,max=8388608"`
}

// StoredCard is a request accepted by a record store.
type StoredCard struct {
	ID int64 `json:"id"`
	Request
	CreatedAt time.Time `json:"createdAt"`
}

// CourseRecommendation is advisory content; it is never persisted.
type CourseRecommendation struct {
	Course   string `json:"course"`
	Reason   string `json:"reason"`
	Semester string `json:"semester,omitempty"`
}

const dateLayout = "02/01/2006"

// FormatDate renders t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ValidUntil adds years to the calendar year of issue, keeping day and month.
// 29 February maps to 28 February when the target year has no leap day.
func ValidUntil(issue time.Time, years int) time.Time {
	y, m, d := issue.Date()
	target := y + years
	if m == time.February && d == 29 && !isLeap(target) {
		d = 28
	}
	hh, mm, ss := issue.Clock()
	return time.Date(target, m, d, hh, mm, ss, issue.Nanosecond(), issue.Location())
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var whitespace = regexp.MustCompile(`\s+`)

// Filename derives the download name for a student's card.
func Filename(fullName string) string {
	name := whitespace.ReplaceAllString(strings.TrimSpace(fullName), "_")
	if name == "" {
		name = "Student"
	}
	return name + "_Library_Card.pdf"
}
