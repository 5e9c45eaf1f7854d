package rf2

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"
)

// readAheadBufferSize is the initial read-ahead buffer of every RF2 scanner
// (§4.1). The buffer grows only to hold one long line, up to 16 times this
// size, so memory use never grows with file size.
const readAheadBufferSize = 64 * 1024

// lineReader scans a tab-delimited RF2 file one line at a time, discarding
// the header row. It never materializes more than one line in memory.
type lineReader struct {
	file    *os.File
	scanner *bufio.Scanner

	// TotalLines counts every non-empty line scanned after the header,
	// whether or not it produced a record. Yielded counts those that did.
	// Together they let a caller derive how many lines were silently
	// dropped as malformed, per §4.1.
	TotalLines int
	Yielded    int
}

// openLineReader opens path for shared read, skips the header line, and
// returns a reader positioned at the first data row.
func openLineReader(path string) (*lineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, readAheadBufferSize), readAheadBufferSize*16)

	// Discard the header line. An empty file has no header to discard;
	// that's not an error here, it simply yields zero rows.
	if s.Scan() {
		// header consumed
	}

	return &lineReader{file: f, scanner: s}, nil
}

// next returns the next non-empty raw line, or io.EOF once the file is
// exhausted. It checks ctx between lines so cancellation is observed
// promptly, per §4.1 and §5.
func (r *lineReader) next(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}

		line := r.scanner.Text()
		if strings.TrimRight(line, "\r\n\t ") == "" {
			continue
		}
		r.TotalLines++
		return line, nil
	}
}

func (r *lineReader) close() error {
	return r.file.Close()
}

// splitColumns splits a tab-delimited RF2 line into its columns. Trailing
// whitespace on the final column is preserved (no TrimSpace), per §6.1.
func splitColumns(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r\n"), "\t")
}

// parseActive parses the RF2 "1"/"0" active column. Any value that fails
// integer parse discards the row, per §3.
func parseActive(s string) (bool, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return false, false
	}
	return n != 0, true
}

// parseGroup parses the relationshipGroup column, defaulting to 0 on parse
// failure, per §3.
func parseGroup(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
