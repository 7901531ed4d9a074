package filters

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// ASCIIHexDecode decodes ASCII hexadecimal encoded data.
// Whitespace is ignored, > marks end of data, and an odd final digit is
// treated as if followed by 0.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)
	var hi byte
	half := false

	for _, c := range data {
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, err := hexDigitToByte(c)
		if err != nil {
			return nil, err
		}
		if half {
			out = append(out, hi<<4|v)
			half = false
		} else {
			hi = v
			half = true
		}
	}
	if half {
		out = append(out, hi<<4)
	}
	return out, nil
}

// ASCII85Decode decodes Adobe ASCII base-85 data.
//
// An optional <~ prefix is stripped and the data must be closed by ~>;
// anything after the terminator is ignored. Whitespace and bytes that are
// not valid UTF-8 are skipped. Every other character that is not a base-85
// digit or 'z' is an error, including control bytes and well-formed
// non-ASCII characters.
func ASCII85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimLeft(data, " \t\r\n\f\x00")
	data = bytes.TrimPrefix(data, []byte("<~"))
	end := bytes.Index(data, []byte("~>"))
	if end < 0 {
		return nil, fmt.Errorf("ASCII85 data is missing the ~> terminator")
	}
	data = data[:end]

	out := make([]byte, 0, len(data)*4/5+4)
	var group [5]byte
	n := 0

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if r >= utf8.RuneSelf {
			return nil, fmt.Errorf("invalid ASCII85 character %q", r)
		}

		c := byte(r)
		switch {
		case isWhitespace(c):
			continue
		case c == 'z':
			if n != 0 {
				return nil, fmt.Errorf("'z' inside ASCII85 group")
			}
			out = append(out, 0, 0, 0, 0)
			continue
		case c < '!' || c > 'u':
			return nil, fmt.Errorf("invalid ASCII85 character %q", c)
		}

		group[n] = c - '!'
		n++
		if n == 5 {
			v, err := base85Value(group[:])
			if err != nil {
				return nil, err
			}
			out = append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
			n = 0
		}
	}

	// A final group of n digits yields n-1 bytes, so a lone digit yields none.
	if n > 0 {
		for i := n; i < 5; i++ {
			group[i] = 84
		}
		v, err := base85Value(group[:])
		if err != nil {
			return nil, err
		}
		full := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
		out = append(out, full[:n-1]...)
	}

	return out, nil
}

// base85Value folds five digits into a 32-bit word.
func base85Value(digits []byte) (uint32, error) {
	var v uint64
	for _, d := range digits {
		v = v*85 + uint64(d)
	}
	if v > 0xFFFFFFFF {
		return 0, fmt.Errorf("ASCII85 group overflows 32 bits")
	}
	return uint32(v), nil
}

// hexDigitToByte converts a hexadecimal character to its numeric value (0-15).
func hexDigitToByte(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit: %c", c)
	}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
