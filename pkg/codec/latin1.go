package codec

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// latin1Bytes encodes s as ISO-8859-1, dropping runes it cannot represent.
func latin1Bytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			out = append(out, b)
		}
	}
	return out
}

func latin1String(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(charmap.ISO8859_1.DecodeByte(c))
	}
	return sb.String()
}

// Latin1 reduces s to the runes that survive a Latin-1 round trip.
func Latin1(s string) string {
	return latin1String(latin1Bytes(s))
}
