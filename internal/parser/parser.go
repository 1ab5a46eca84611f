// Package parser splits a content file into its header block and body.
//
// A header block is opened by a first line containing "---" and closed by the
// first following line that ends in "---". Each line in between is a
// "key: value" pair.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const delim = "---"

var (
	// ErrMalformedHeader is returned for a header line without a ':' separator.
	ErrMalformedHeader = errors.New("parser: malformed header line")
	// ErrUnterminatedHeader is returned when the input ends inside the header block.
	ErrUnterminatedHeader = errors.New("parser: unterminated header")
)

// Result holds the output of parsing a content file.
type Result struct {
	// Header maps lowercased keys to trimmed raw values. Nil when the file
	// has no header block.
	Header map[string]string
	Body   []byte
}

// Get returns the header value for key with surrounding quotes removed.
func (r *Result) Get(key string) (string, bool) {
	v, ok := r.Header[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return CleanQuotes(v), true
}

// Bool returns the header value for key interpreted as a flag.
func (r *Result) Bool(key string) bool {
	v, ok := r.Get(key)
	return ok && ParseBool(v)
}

// Parse reads the header block (if any) and the remaining body from r.
func Parse(r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)

	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parser: read: %w", err)
	}

	if !strings.Contains(first, delim) {
		rest, err := io.ReadAll(br)
		if err != nil {
			return nil, fmt.Errorf("parser: read body: %w", err)
		}
		return &Result{Body: append([]byte(first), rest...)}, nil
	}
	if errors.Is(err, io.EOF) {
		return nil, ErrUnterminatedHeader
	}

	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("parser: read body: %w", err)
	}
	return &Result{Header: header, Body: body}, nil
}

// readHeader consumes header lines up to and including the closing delimiter.
func readHeader(br *bufio.Reader) (map[string]string, error) {
	header := make(map[string]string)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parser: read header: %w", err)
		}
		eof := err != nil

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasSuffix(trimmed, delim):
			return header, nil
		case trimmed == "":
			// blank lines carry nothing
		default:
			key, value, ok := strings.Cut(trimmed, ":")
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, trimmed)
			}
			header[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
		}

		if eof {
			return nil, ErrUnterminatedHeader
		}
	}
}

// CleanQuotes removes one pair of matching surrounding quotes.
func CleanQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// ParseBool interprets a header flag. Anything unparsable is false.
func ParseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
