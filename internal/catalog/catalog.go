// Package catalog holds the university's static department, course and
// semester data. All values are immutable after package initialisation.
package catalog

import (
	"slices"
	"strings"
)

var departmentCourses = map[string][]string{
	"Anthropology":                   {"BA in Anthropology", "MA in Anthropology"},
	"Botany":                         {"BSc in Botany", "MSc in Botany"},
	"Chemistry":                      {"BSc in Chemistry", "MSc in Chemistry"},
	"Commerce":                       {"BCom", "MCom"},
	"Computer Science & Engineering": {"BCA", "MCA", "MTech in Computer Science & Engineering"},
	"Economics":                      {"BA in Economics", "MA in Economics"},
	"Education":                      {"BEd", "MEd"},
	"English":                        {"BA in English", "MA in English"},
	"Geography":                      {"BSc in Geography", "MSc in Geography"},
	"Hindi":                          {"BA in Hindi", "MA in Hindi"},
	"History":                        {"BA in History", "MA in History"},
	"Law":                            {"LLB", "LLM"},
	"Management":                     {"MBA"},
	"Mass Communication":             {"BA in Mass Communication", "MA in Mass Communication"},
	"Mathematics & Computing":        {"BSc in Mathematics", "MSc in Mathematics"},
	"Physics":                        {"BSc in Physics", "MSc in Physics"},
	"Political Science":              {"BA in Political Science", "MA in Political Science"},
	"Psychology":                     {"BA in Psychology", "MA in Psychology"},
	"Sociology":                      {"BA in Sociology", "MA in Sociology"},
	"Tribal Studies":                 {"BA in Tribal Studies", "MA in Tribal Studies"},
	"Zoology":                        {"BSc in Zoology", "MSc in Zoology"},
}

// courses is the form's course picker list; it includes programmes that no
// department table entry lists (diplomas, certificates).
var courses = []string{
	"BA in Anthropology",
	"BA in Economics",
	"BA in English",
	"BA in Hindi",
	"BA in History",
	"BA in Political Science",
	"BA in Sociology",
	"BSc in Botany",
	"BSc in Chemistry",
	"BSc in Physics",
	"BSc in Zoology",
	"BSc in Geography",
	"BSc in Mathematics",
	"BCom",
	"BCA",
	"BEd",
	"MA in Economics",
	"MA in English",
	"MA in History",
	"MA in Hindi",
	"MA in Political Science",
	"MA in Sociology",
	"MSc in Botany",
	"MSc in Chemistry",
	"MSc in Physics",
	"MSc in Zoology",
	"MSc in Geography",
	"MSc in Mathematics",
	"MCom",
	"MCA",
	"MTech in Computer Science & Engineering",
	"MTech in Electronics & Communication",
	"LLB",
	"LLM",
	"Diploma in Computerized Accounting (DCA)",
	"PG Diploma in Yoga Therapy Education (PGDYTE)",
	"Certificate Course in Communicative English (CCCE)",
	"Certificate in Strength Training & Conditioning (CCSTC)",
}

var semesters = []string{"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th"}

// Table is the static department table. It satisfies card.CourseCatalog.
type Table struct{}

// CoursesFor returns the courses a department offers.
func (Table) CoursesFor(department string) ([]string, bool) {
	return CoursesFor(department)
}

// CoursesFor returns a copy of the department's course list.
func CoursesFor(department string) ([]string, bool) {
	list, ok := departmentCourses[department]
	if !ok {
		return nil, false
	}
	return slices.Clone(list), true
}

// Departments returns the department names in alphabetical order.
func Departments() []string {
	out := make([]string, 0, len(departmentCourses))
	for d := range departmentCourses {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// Courses returns every course offered on the card form.
func Courses() []string { return slices.Clone(courses) }

// Semesters returns the ordinal semester labels.
func Semesters() []string { return slices.Clone(semesters) }

// DepartmentCode shortens a department name, e.g. "Political Science" -> "PS".
func DepartmentCode(department string) string {
	if department == "Computer Science & Engineering" {
		return "CSE"
	}
	words := strings.Fields(department)
	switch len(words) {
	case 0:
		return ""
	case 1:
		w := []rune(words[0])
		if len(w) > 3 {
			w = w[:3]
		}
		return strings.ToUpper(string(w))
	}
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)
		if r[0] == '&' {
			continue
		}
		b.WriteRune(r[0])
	}
	return strings.ToUpper(b.String())
}
