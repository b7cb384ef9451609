package headers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// includePattern matches the first include directive on a line. It is not a
// preprocessor: directives inside comments or disabled #if blocks match too.
// The capture is lazy so a second directive on the same line is ignored.
var includePattern = regexp.MustCompile(`#include\s*[<"](.+?\.h)[">]`)

// IncludeReference is the header path captured from one #include line,
// e.g. "../foo/bar.h" or "sys/types.h".
type IncludeReference string

func (r IncludeReference) String() string {
	return string(r)
}

// SearchPattern returns the basename pattern used to look the reference up in
// the search roots. The trailing ".h" is cut off and every "../" is removed,
// wherever it appears in the path.
func (r IncludeReference) SearchPattern() string {
	s := string(r)
	if len(s) >= 2 {
		s = s[:len(s)-2]
	}
	return strings.ReplaceAll(s, "../", "")
}

// ParseIncludeLine extracts the include reference from a single line.
func ParseIncludeLine(line string) (IncludeReference, bool) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	matches := includePattern.FindStringSubmatch(line)
	if matches == nil {
		return "", false
	}
	return IncludeReference(matches[1]), true
}

// ScanIncludes returns the include references of r in line order.
// Only one include per physical line is recognized. Lines have no length limit.
func ScanIncludes(r io.Reader) ([]IncludeReference, error) {
	reader := bufio.NewReader(r)

	var refs []IncludeReference
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if ref, ok := ParseIncludeLine(line); ok {
				refs = append(refs, ref)
			}
		}
		if errors.Is(err, io.EOF) {
			return refs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan includes: %w", err)
		}
	}
}
