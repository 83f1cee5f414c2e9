package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/unicode/norm"
)

// encodingFor returns the encoding of input called name. Encoding "auto"
// selects an encoding by the character width in bytes an OCP declares for
// its input: 1 is Latin-1, 2 is UTF-16, 4 is UTF-32. Byte order marks are
// honoured, big-endian is assumed in their absence.
func encodingFor(name string, width int) (encoding.Encoding, error) {
	if strings.ToLower(name) == "auto" {
		switch width {
		case 1:
			name = "latin1"
		case 2:
			name = "utf16"
		case 4:
			name = "utf32"
		default:
			return nil, fmt.Errorf("no encoding for characters of %d bytes", width)
		}
	}
	switch strings.ToLower(name) {
	case "", "utf8", "utf-8":
		return unicode.UTF8, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "utf16", "utf-16":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "utf32", "utf-32":
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM), nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

// decodeInput decodes data into characters.
func decodeInput(data []byte, enc encoding.Encoding) ([]rune, error) {
	text, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	if !utf8.Valid(text) {
		return nil, fmt.Errorf("decoding input: invalid characters")
	}
	return []rune(string(text)), nil
}

// normalForm interprets the --normalize flag.
func normalForm(name string) (norm.Form, bool, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return 0, false, nil
	case "nfc":
		return norm.NFC, true, nil
	case "nfd":
		return norm.NFD, true, nil
	case "nfkc":
		return norm.NFKC, true, nil
	case "nfkd":
		return norm.NFKD, true, nil
	}
	return 0, false, fmt.Errorf("unknown normal form %q", name)
}
