package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartments(t *testing.T) {
	deps := Departments()
	require.Len(t, deps, 21)
	assert.Equal(t, "Anthropology", deps[0])
	assert.Equal(t, "Zoology", deps[len(deps)-1])
	assert.IsIncreasing(t, deps)
}

func TestCoursesForReturnsCopy(t *testing.T) {
	got, ok := CoursesFor("Physics")
	require.True(t, ok)
	assert.Equal(t, []string{"BSc in Physics", "MSc in Physics"}, got)

	got[0] = "mutated"
	again, _ := CoursesFor("Physics")
	assert.Equal(t, "BSc in Physics", again[0])

	_, ok = CoursesFor("Nonexistent Department")
	assert.False(t, ok)
}

func TestEveryMappedCourseHasAKnownLevel(t *testing.T) {
	for _, dep := range Departments() {
		list, _ := CoursesFor(dep)
		for _, c := range list {
			assert.NotEqual(t, LevelUnknown, DegreeLevelOf(c), "course %q of %q", c, dep)
		}
	}
}

func TestSuggestedSemester(t *testing.T) {
	cases := map[string]string{
		"BSc in Physics": "1st",
		"BCom":           "1st",
		"LLB":            "1st",
		"MSc in Physics": "3rd",
		"MBA":            "3rd",
		"MTech in Computer Science & Engineering": "3rd",
		"Diploma in Computerized Accounting (DCA)": "3rd",
	}
	for course, want := range cases {
		assert.Equal(t, want, SuggestedSemester(course), course)
	}
}

func TestDegreeLevelString(t *testing.T) {
	assert.Equal(t, "undergraduate", DegreeLevelOf("BA in History").String())
	assert.Equal(t, "postgraduate", DegreeLevelOf("MA in History").String())
	assert.Equal(t, "unknown", DegreeLevelOf("Certificate Course in Communicative English (CCCE)").String())
}

func TestDepartmentCode(t *testing.T) {
	assert.Equal(t, "CSE", DepartmentCode("Computer Science & Engineering"))
	assert.Equal(t, "BOT", DepartmentCode("Botany"))
	assert.Equal(t, "PS", DepartmentCode("Political Science"))
	assert.Equal(t, "MC", DepartmentCode("Mathematics & Computing"))
	assert.Equal(t, "LAW", DepartmentCode("Law"))
	assert.Equal(t, "", DepartmentCode(""))
}

func TestTableSatisfiesCourseLookup(t *testing.T) {
	var tbl Table
	list, ok := tbl.CoursesFor("Law")
	require.True(t, ok)
	assert.Equal(t, []string{"LLB", "LLM"}, list)
}

func TestSemesters(t *testing.T) {
	assert.Equal(t, []string{"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th"}, Semesters())
	assert.Len(t, Courses(), 38)
}
