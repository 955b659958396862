package workflow

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MarkRow is one line of a marksheet: a student's marks in one subject.
type MarkRow struct {
	Line    int
	Roll    int
	Subject string
	Written float64
	MCQ     float64
}

var marksheetHeader = []string{"roll", "subject", "written", "mcq"}

// ReadMarksheet parses a CSV with columns roll,subject,written,mcq. The header
// row is optional.
func ReadMarksheet(r io.Reader) ([]MarkRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(marksheetHeader)
	reader.TrimLeadingSpace = true

	var rows []MarkRow
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("marksheet line %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), marksheetHeader[0]) {
			continue
		}
		row, err := parseMarkRow(line, record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseMarkRow(line int, record []string) (MarkRow, error) {
	roll, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return MarkRow{}, fmt.Errorf("marksheet line %d: invalid roll %q", line, record[0])
	}
	written, err := parseMark(record[2])
	if err != nil {
		return MarkRow{}, fmt.Errorf("marksheet line %d: invalid written mark %q", line, record[2])
	}
	mcq, err := parseMark(record[3])
	if err != nil {
		return MarkRow{}, fmt.Errorf("marksheet line %d: invalid mcq mark %q", line, record[3])
	}
	return MarkRow{Line: line, Roll: roll, Subject: strings.TrimSpace(record[1]), Written: written, MCQ: mcq}, nil
}

func parseMark(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// Apply drives the workflow from marksheet rows. Subjects are selected first,
// then students by roll, then marks are entered. The workflow must already be
// configured and hold a roster.
func (w *Workflow) Apply(rows []MarkRow) error {
	for _, row := range rows {
		if err := w.AddSubject(row.Subject); err != nil {
			return fmt.Errorf("marksheet line %d: %w", row.Line, err)
		}
	}
	for _, row := range rows {
		student, ok := w.FindByRoll(row.Roll)
		if !ok {
			return fmt.Errorf("marksheet line %d: %w: roll %d", row.Line, ErrUnknownStudent, row.Roll)
		}
		if err := w.AddStudent(student.StudentID); err != nil {
			return fmt.Errorf("marksheet line %d: %w", row.Line, err)
		}
		if err := w.SetMark(student.StudentID, row.Subject, Written, row.Written); err != nil {
			return fmt.Errorf("marksheet line %d: %w", row.Line, err)
		}
		if err := w.SetMark(student.StudentID, row.Subject, MCQ, row.MCQ); err != nil {
			return fmt.Errorf("marksheet line %d: %w", row.Line, err)
		}
	}
	return nil
}
