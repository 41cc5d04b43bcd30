package version

import (
	"bytes"
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// fixedFileInfoSignature starts a VS_FIXEDFILEINFO block.
const fixedFileInfoSignature = 0xFEEF04BD

var productVersionKey = utf16le("ProductVersion\x00")

// ProductVersion extracts the product version embedded in a Windows binary's
// version resource. The StringFileInfo "ProductVersion" entry wins; the binary
// VS_FIXEDFILEINFO product version is the fallback. Returns Unknown and false
// when neither yields a version.
func ProductVersion(data []byte) (Version, bool) {
	if s := productVersionString(data); s != "" {
		if v, ok := Parse(leadingVersion(s)); ok {
			return v, true
		}
	}
	return fixedProductVersion(data)
}

func productVersionString(data []byte) string {
	offset := 0
	for {
		idx := bytes.Index(data[offset:], productVersionKey)
		if idx < 0 {
			return ""
		}
		start := offset + idx + len(productVersionKey)
		offset = start

		// The value is 32-bit aligned after the key; padding is zero WCHARs.
		for start+1 < len(data) && data[start] == 0 && data[start+1] == 0 {
			start += 2
		}

		end := start
		for end+1 < len(data) && (data[end] != 0 || data[end+1] != 0) {
			end += 2
		}
		if end <= start {
			continue
		}

		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data[start:end])
		if err != nil {
			continue
		}
		if s := strings.TrimSpace(string(decoded)); s != "" {
			return s
		}
	}
}

// leadingVersion trims decorations such as "1, 63, 0, 0" or "1.63.0 (release)".
func leadingVersion(s string) string {
	s = strings.ReplaceAll(s, ", ", ".")
	s = strings.ReplaceAll(s, ",", ".")
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	return strings.TrimRight(s[:end], ".")
}

func fixedProductVersion(data []byte) (Version, bool) {
	sig := make([]byte, 4)
	binary.LittleEndian.PutUint32(sig, fixedFileInfoSignature)

	idx := bytes.Index(data, sig)
	// signature, struc version, file version MS/LS, product version MS/LS
	if idx < 0 || idx+24 > len(data) {
		return Unknown, false
	}
	ms := binary.LittleEndian.Uint32(data[idx+16:])
	ls := binary.LittleEndian.Uint32(data[idx+20:])
	if ms == 0 && ls == 0 {
		return Unknown, false
	}

	return Version{
		Major:    int(ms >> 16),
		Minor:    int(ms & 0xFFFF),
		Patch:    int(ls >> 16),
		Revision: int(ls & 0xFFFF),
		parts:    4,
	}, true
}

func utf16le(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}
