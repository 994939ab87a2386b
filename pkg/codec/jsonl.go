// Package codec reads and writes the newline-delimited JSON record files
// that connect the scoring engine to its upstream fetcher and downstream
// renderer. One corrupt line never loses the rest of the batch: bad lines
// are skipped, counted, and surfaced in a Summary.
package codec

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/SureOnThisShiningNight/openrank/pkg/score"
)

// maxLineBytes bounds a single input line. Records carry pass-through
// publication metadata, so lines can be far larger than typical JSON rows;
// a line past this bound is counted as malformed, not a fatal read error.
const maxLineBytes = 4 * 1024 * 1024

// Summary reports what happened to a batch at the decode boundary.
// Line numbers are 1-based positions in the input file, blank lines included,
// so a reported number points at the actual line in the source.
type Summary struct {
	Lines          int   `json:"lines" yaml:"lines"`
	Records        int   `json:"records" yaml:"records"`
	MalformedLines []int `json:"malformed_lines,omitempty" yaml:"malformedLines,omitempty"`
	MissingIDLines []int `json:"missing_id_lines,omitempty" yaml:"missingIDLines,omitempty"`
}

// Skipped is the number of input lines that produced no record.
func (s *Summary) Skipped() int {
	return len(s.MalformedLines) + len(s.MissingIDLines)
}

// ReadRecords decodes one RawRepoRecord per line. Unparsable or oversized
// lines and records without an id are skipped and reported in the Summary;
// only a failure to read the source itself is an error, and it yields an
// empty collection.
func ReadRecords(r io.Reader) ([]score.RawRepoRecord, *Summary, error) {
	var (
		records []score.RawRepoRecord
		sum     Summary
	)

	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, rerr := br.ReadString('\n')
		if line == "" && rerr != nil {
			if rerr == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("reading input: %w", rerr)
		}
		sum.Lines++

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			// blank lines keep their place in the numbering but yield nothing
		case len(trimmed) > maxLineBytes:
			sum.MalformedLines = append(sum.MalformedLines, sum.Lines)
		default:
			var rec score.RawRepoRecord
			if err := json.Unmarshal([]byte(trimmed), &rec); err != nil {
				sum.MalformedLines = append(sum.MalformedLines, sum.Lines)
			} else if rec.ID == "" {
				sum.MissingIDLines = append(sum.MissingIDLines, sum.Lines)
			} else {
				records = append(records, rec)
			}
		}

		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("reading input: %w", rerr)
		}
	}

	sum.Records = len(records)
	return records, &sum, nil
}

// WriteRecords emits one JSON object per line: the raw fields preserved
// plus the three score fields.
func WriteRecords(w io.Writer, records []score.ScoredRepoRecord) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding record %d (%s): %w", i, rec.ID, err)
		}
	}
	return nil
}
