package generate

import (
	"bytes"
	"io"
	"os"

	"github.com/arthur-debert/pastry/pkg/errors"
)

// sniffLen is how many leading bytes the binary heuristic inspects
const sniffLen = 1024

// textBytes marks the byte values considered printable for the
// heuristic: ASCII printables plus common whitespace and the high
// half, so UTF-8 multibyte text stays classified as text.
var textBytes = buildTextTable()

func buildTextTable() [256]bool {
	var t [256]bool
	for i := 32; i < 256; i++ {
		t[i] = true
	}
	for _, b := range []byte{'\n', '\r', '\t', '\f', '\b', 0x1b} {
		t[b] = true
	}
	t[127] = false
	return t
}

// isBinary applies content sniffing to the file's leading bytes: a
// NUL byte or a high share of non-text bytes classifies the file as
// binary. The heuristic is deliberately loose; a misclassification is
// a known edge case, not a contract violation.
func isBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot open %q", path)
	}
	defer f.Close()

	chunk := make([]byte, sniffLen)
	n, err := f.Read(chunk)
	if err != nil && err != io.EOF {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", path)
	}
	chunk = chunk[:n]

	if len(chunk) == 0 {
		return false, nil
	}
	if bytes.IndexByte(chunk, 0) != -1 {
		return true, nil
	}

	nonText := 0
	for _, b := range chunk {
		if !textBytes[b] {
			nonText++
		}
	}
	return float64(nonText)/float64(len(chunk)) > 0.30, nil
}
