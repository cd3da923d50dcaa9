package catalog

import "strings"

// Level is the degree level of a course.
type Level int

const (
	LevelUnknown Level = iota
	LevelUndergraduate
	LevelPostgraduate
)

func (l Level) String() string {
	switch l {
	case LevelUndergraduate:
		return "undergraduate"
	case LevelPostgraduate:
		return "postgraduate"
	default:
		return "unknown"
	}
}

// degreeLevels maps the leading degree code of a course name to its level.
// Levels follow the degree, not its first letter: LLB is undergraduate.
var degreeLevels = map[string]Level{
	"BA":    LevelUndergraduate,
	"BSc":   LevelUndergraduate,
	"BCom":  LevelUndergraduate,
	"BCA":   LevelUndergraduate,
	"BEd":   LevelUndergraduate,
	"LLB":   LevelUndergraduate,
	"MA":    LevelPostgraduate,
	"MSc":   LevelPostgraduate,
	"MCom":  LevelPostgraduate,
	"MCA":   LevelPostgraduate,
	"MEd":   LevelPostgraduate,
	"MTech": LevelPostgraduate,
	"MBA":   LevelPostgraduate,
	"LLM":   LevelPostgraduate,
}

// defaultSemesters is the suggested starting semester per level. It is a
// heuristic for suggestions, not a curriculum rule.
var defaultSemesters = map[Level]string{
	LevelUndergraduate: "1st",
	LevelPostgraduate:  "3rd",
	LevelUnknown:       "3rd",
}

// DegreeLevelOf classifies a course by its leading degree code.
func DegreeLevelOf(course string) Level {
	code, _, _ := strings.Cut(strings.TrimSpace(course), " ")
	return degreeLevels[code]
}

// DefaultSemester returns the suggested semester for a degree level.
func DefaultSemester(l Level) string {
	if s, ok := defaultSemesters[l]; ok {
		return s
	}
	return defaultSemesters[LevelUnknown]
}

// SuggestedSemester combines DegreeLevelOf and DefaultSemester.
func SuggestedSemester(course string) string {
	return DefaultSemester(DegreeLevelOf(course))
}
