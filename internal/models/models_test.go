package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassName(t *testing.T) {
	cases := map[string]ClassName{
		"Class_6":   Class6,
		"Class 7":   Class7,
		"CLASS_8":   Class8,
		"9":         Class9,
		" class-10": Class10,
	}
	for raw, want := range cases {
		got, ok := ParseClassName(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseClassName("Class_11")
	assert.False(t, ok)
	_, ok = ParseClassName("")
	assert.False(t, ok)
}

func TestClassNameNext(t *testing.T) {
	next, ok := Class6.Next()
	assert.True(t, ok)
	assert.Equal(t, Class7, next)

	_, ok = Class10.Next()
	assert.False(t, ok)

	_, ok = ClassName("Class_5").Next()
	assert.False(t, ok)
	assert.True(t, Class9.Upper())
	assert.False(t, Class8.Upper())
	assert.Equal(t, "Class 10", Class10.Label())
}

func TestLatestClassRecord(t *testing.T) {
	assert.Nil(t, LatestClassRecord(nil))
	records := []ClassRecord{
		{ID: "a", ClassName: Class6, Year: 2023},
		{ID: "b", ClassName: Class7, Year: 2024},
		{ID: "c", ClassName: Class6, Year: 2022},
	}
	assert.Equal(t, "b", LatestClassRecord(records).ID)
}

func TestParseExamType(t *testing.T) {
	for _, raw := range []string{"Mid_Term", "Mid Term", "mid-term", "MIDTERM"} {
		got, ok := ParseExamType(raw)
		require.True(t, ok, raw)
		assert.Equal(t, ExamMidTerm, got)
	}
	for _, raw := range []string{"Final", "Yearly"} {
		got, ok := ParseExamType(raw)
		require.True(t, ok, raw)
		assert.Equal(t, ExamFinal, got)
	}
	_, ok := ParseExamType("Quiz")
	assert.False(t, ok)
}

func TestSubjectScoresMergeIsShallow(t *testing.T) {
	existing := SubjectScores{
		"Mathematics": {WrittenMark: 50, MCQMark: 30, TotalMark: 80, Grade: "A"},
		"English":     {WrittenMark: 40, MCQMark: 20, TotalMark: 60},
	}
	incoming := SubjectScores{
		"Mathematics": {WrittenMark: 55, TotalMark: 55},
		"Science":     {WrittenMark: 45, MCQMark: 30, TotalMark: 75},
	}

	merged := existing.Merge(incoming)

	require.Len(t, merged, 3)
	assert.Equal(t, SubjectMark{WrittenMark: 55, TotalMark: 55}, merged["Mathematics"])
	assert.Equal(t, float64(60), merged["English"].TotalMark)
	assert.Equal(t, float64(75), merged["Science"].TotalMark)
	assert.Equal(t, float64(80), existing["Mathematics"].TotalMark)
	assert.Equal(t, float64(190), merged.Total())
}

func TestSubjectScoresScanValue(t *testing.T) {
	var s SubjectScores
	require.NoError(t, s.Scan([]byte(`{"Mathematics":{"writtenMark":50,"mcqMark":30,"totalMark":80}}`)))
	assert.Equal(t, float64(80), s["Mathematics"].TotalMark)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)
	assert.Error(t, s.Scan(42))

	v, err := SubjectScores(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestAddressScan(t *testing.T) {
	var a Address
	require.NoError(t, a.Scan(`{"district":"Dhaka"}`))
	assert.Equal(t, "Dhaka", a.District)
	assert.Error(t, a.Scan(3.5))
}

func TestNormalisePage(t *testing.T) {
	p, s := NormalisePage(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, 20, s)
	p, s = NormalisePage(3, 500)
	assert.Equal(t, 3, p)
	assert.Equal(t, 20, s)
}
