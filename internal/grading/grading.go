// Package grading converts marks into letter grades and grade-point summaries.
//
// A Scale is an ordered cutoff table. Exactly one scale is active per process;
// StandardScale is the default and BoardScale is selectable through configuration.
package grading

import (
	"fmt"
	"math"
	"strings"
)

// Letter grades.
const (
	APlus  = "A+"
	A      = "A"
	AMinus = "A-"
	B      = "B"
	C      = "C"
	D      = "D"
	F      = "F"

	// NotApplicable is reported when there is nothing to grade.
	NotApplicable = "N/A"
)

// points is the fixed grade-point scale shared by every cutoff table.
var points = map[string]float64{
	APlus:  5,
	A:      4,
	AMinus: 3.5,
	B:      3,
	C:      2,
	D:      1,
	F:      0,
}

// Band is one row of a cutoff table.
type Band struct {
	MinPercent float64
	Letter     string
}

// Scale is a cutoff table ordered highest threshold first. The last band is the floor.
type Scale struct {
	Name  string
	Bands []Band
}

// StandardScale is the canonical table: 90/80/70/60/50.
var StandardScale = Scale{
	Name: "standard",
	Bands: []Band{
		{90, APlus},
		{80, A},
		{70, B},
		{60, C},
		{50, D},
		{math.Inf(-1), F},
	},
}

// BoardScale is the secondary-board table: 80/70/60/50/40/33.
var BoardScale = Scale{
	Name: "board",
	Bands: []Band{
		{80, APlus},
		{70, A},
		{60, AMinus},
		{50, B},
		{40, C},
		{33, D},
		{math.Inf(-1), F},
	},
}

// ScaleByName resolves a configured scale name. Empty selects StandardScale.
func ScaleByName(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StandardScale.Name:
		return StandardScale, nil
	case BoardScale.Name:
		return BoardScale, nil
	}
	return Scale{}, fmt.Errorf("unknown grading scale %q", name)
}

// Grade maps a percentage to a letter. It never panics; NaN grades as F.
func (s Scale) Grade(pct float64) string {
	if math.IsNaN(pct) {
		return F
	}
	for _, b := range s.Bands {
		if pct >= b.MinPercent {
			return b.Letter
		}
	}
	return F
}

// GradeMarks grades obtained out of max.
func (s Scale) GradeMarks(obtained, max float64) string {
	return s.Grade(Percentage(obtained, max))
}

// Percentage returns obtained/max*100, or 0 when max is not positive.
func Percentage(obtained, max float64) float64 {
	if max <= 0 || math.IsNaN(max) || math.IsNaN(obtained) {
		return 0
	}
	return obtained / max * 100
}

// Points returns the grade point for a letter. Unknown letters score as F.
func Points(letter string) float64 {
	if p, ok := points[strings.ToUpper(strings.TrimSpace(letter))]; ok {
		return p
	}
	return 0
}

// Summary is the aggregate outcome over a set of subjects.
type Summary struct {
	GPA        float64 `json:"gpa"`
	Grade      string  `json:"grade"`
	Applicable bool    `json:"applicable"`
	Failed     bool    `json:"failed"`
}

// Summarize averages the subject grade points and re-derives an overall letter
// from the scale's own letters. Any F fails the whole record.
// An empty map yields the NotApplicable sentinel.
func (s Scale) Summarize(subjectGrades map[string]string) Summary {
	if len(subjectGrades) == 0 {
		return Summary{Grade: NotApplicable}
	}
	var total float64
	failed := false
	for _, letter := range subjectGrades {
		p := Points(letter)
		if p == 0 {
			failed = true
		}
		total += p
	}
	gpa := math.Round(total/float64(len(subjectGrades))*100) / 100
	if failed {
		return Summary{GPA: gpa, Grade: F, Applicable: true, Failed: true}
	}
	return Summary{GPA: gpa, Grade: s.letterForPoints(gpa), Applicable: true}
}

// letterForPoints walks the scale's bands in point space: the first letter whose
// point value does not exceed gpa wins.
func (s Scale) letterForPoints(gpa float64) string {
	for _, b := range s.Bands {
		if gpa >= points[b.Letter] {
			return b.Letter
		}
	}
	return F
}
