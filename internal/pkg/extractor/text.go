package extractor

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText reads UTF-8 and falls back to Latin-1, which accepts any byte sequence.
func decodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(decoded)
}
