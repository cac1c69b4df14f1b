package strcodec

import (
	"encoding/binary"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
)

var (
	// UTF8 is the default charset of narrow strings.
	UTF8 encoding.Encoding = unicode.UTF8
	// Latin1 is ISO-8859-1.
	Latin1 encoding.Encoding = charmap.ISO8859_1
	// Windows1252 is the Windows ANSI code page for western languages.
	Windows1252 encoding.Encoding = charmap.Windows1252
)

// Charset looks up a charset by its WHATWG label, e.g. "utf-8", "latin1" or
// "shift_jis".
func Charset(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Detail("unknown charset %q", label).
			Cause(err).
			Build()
	}
	return enc, nil
}

// WideCharset is the charset of wchar_t strings: UTF-16 for 2-byte and UTF-32
// for 4-byte units, in the given byte order.
func WideCharset(width uint64, order binary.ByteOrder) encoding.Encoding {
	little := nativeptr.IsLittleEndian(order)
	if width == 2 {
		if little {
			return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		}
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	if little {
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	}
	return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
}

func encodeString(cs encoding.Encoding, s string) ([]byte, error) {
	b, err := cs.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Detail("string not representable in charset").
			Value(s).
			Cause(err).
			Build()
	}
	return b, nil
}

func decodeString(cs encoding.Encoding, raw []byte) (string, error) {
	b, err := cs.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Detail("bytes not decodable in charset").
			Cause(err).
			Build()
	}
	return string(b), nil
}
