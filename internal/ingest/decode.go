package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeBytes converts the raw file bytes to UTF-8. With name == "" the
// encoding is guessed: a BOM wins, valid UTF-8 passes through, and anything
// else is treated as Windows-1252 (the superset of Latin-1 that carries the
// euro sign at 0x80). A non-empty name forces that encoding.
func DecodeBytes(raw []byte, name string) ([]byte, error) {
	if name != "" {
		enc, err := lookupEncoding(name)
		if err != nil {
			return nil, err
		}
		return decodeWith(enc, raw)
	}
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return bytes.TrimPrefix(raw, bomUTF8), nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), raw)
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), raw)
	case utf8.Valid(raw):
		return raw, nil
	default:
		return decodeWith(charmap.Windows1252, raw)
	}
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func decodeWith(enc encoding.Encoding, raw []byte) ([]byte, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("decode input: %v", err)
	}
	return out, nil
}
