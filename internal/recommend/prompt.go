package recommend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Prompt asks for suggestions in the JSON shape Parse accepts.
func Prompt(department string) string {
	return fmt.Sprintf(`I am a student at Rajiv Gandhi University, Arunachal Pradesh, interested in the %s department.
Suggest courses and a semester appropriate for this department.
Respond only with JSON in this format:
{
  "recommendations": [
    {"course": "course name", "reason": "reason for recommendation", "semester": "recommended semester"}
  ],
  "message": "a short message explaining the recommendations"
}`, department)
}

// ErrMalformed is returned by Parse for output that is not a suggestion document.
var ErrMalformed = errors.New("recommend: malformed backend output")

// Parse decodes backend output strictly: unknown fields, trailing data, an
// empty list or a recommendation without a course are rejected.
func Parse(text string) (Suggestions, error) {
	text = stripFence(strings.TrimSpace(text))
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var s Suggestions
	if err := dec.Decode(&s); err != nil {
		return Suggestions{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return Suggestions{}, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	if len(s.Recommendations) == 0 {
		return Suggestions{}, fmt.Errorf("%w: no recommendations", ErrMalformed)
	}
	for i, r := range s.Recommendations {
		if strings.TrimSpace(r.Course) == "" {
			return Suggestions{}, fmt.Errorf("%w: recommendation %d has no course", ErrMalformed, i)
		}
	}
	return s, nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := []byte(text)
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = bytes.TrimSpace(body)
	body = bytes.TrimSuffix(body, []byte("```"))
	return string(bytes.TrimSpace(body))
}
