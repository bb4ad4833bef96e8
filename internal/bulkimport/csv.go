package bulkimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log"
)

// skipBOM strips a UTF-8 BOM if present; spreadsheet exports routinely
// prepend one.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	peeked, err := br.Peek(3)
	if err != nil {
		return br
	}
	if peeked[0] == 0xEF && peeked[1] == 0xBB && peeked[2] == 0xBF {
		br.Read(make([]byte, 3))
	}
	return br
}

// ReadRows reads the uploaded CSV into raw rows, skipping the header line.
// Field-count validation is left to per-row validation; lines the CSV reader
// cannot parse at all are logged and skipped.
func ReadRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	} else if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	var rows [][]string
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARN: CSV line %d unreadable (skipped): %v", line, err)
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
