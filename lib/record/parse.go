package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMalformed     = errors.New("malformed record")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNoRecords     = errors.New("no records")
)

const (
	commentChar   = "#"
	maxLineLength = 1024 * 1024
)

// ParseError locates a malformed line. Column is empty when the field count
// is wrong.
type ParseError struct {
	Line   int
	Column string
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d, column %s: %s", e.Line, e.Column, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// Load reads a measurement table from path.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// Parse reads whitespace-separated records, one per line. Text after '#' is
// ignored and blank lines are skipped.
func Parse(r io.Reader) (Table, error) {
	var table Table

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.Index(line, commentChar); i >= 0 {
			line = line[:i]
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		rec, err := parseFields(lineNo, fields)
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: lineNo + 1, Msg: fmt.Sprintf("line longer than %d bytes", maxLineLength)}
		}
		return nil, err
	}

	return table, nil
}

func parseFields(lineNo int, fields []string) (Record, error) {
	if len(fields) != len(Columns) {
		return Record{}, &ParseError{
			Line: lineNo,
			Msg:  fmt.Sprintf("expected %d fields, got %d", len(Columns), len(fields)),
		}
	}

	rec := Record{Name: fields[0]}

	ints := []struct {
		col string
		dst *int
	}{
		{ColNr, &rec.Nr},
		{ColTransfers, &rec.Transfers},
		{ColBytesPerTransfer, &rec.BytesPerTransfer},
	}
	for i, c := range ints {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return Record{}, &ParseError{Line: lineNo, Column: c.col, Msg: fmt.Sprintf("invalid integer %q", fields[i+1])}
		}
		*c.dst = v
	}

	d, err := strconv.ParseFloat(fields[4], 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return Record{}, &ParseError{Line: lineNo, Column: ColTransferDuration, Msg: fmt.Sprintf("invalid duration %q", fields[4])}
	}
	rec.TransferDuration = d

	return rec, nil
}
