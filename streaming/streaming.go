package streaming

import (
	"bufio"
	"io"
	"strings"
)

// ProcessWords calls handler for every non-blank line of r, trimmed. Lines
// are taken whole: a line holding several words is handed over as is.
func ProcessWords(r io.Reader, handler func(string) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		if err := handler(word); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// StemLines writes stem(word) for every word line of r to w, one per line.
func StemLines(r io.Reader, w io.Writer, stem func(string) string) error {
	bw := bufio.NewWriter(w)
	err := ProcessWords(r, func(word string) error {
		if _, err := bw.WriteString(stem(word)); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
