package hdkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned for malformed derivation paths.
var ErrInvalidPath = errors.New("invalid derivation path")

// Derivation is a textual derivation path such as "m/44'/0'/0'/0/0".
// It is parsed only when applied.
type Derivation string

// BIP44 path levels.
const (
	PurposeBIP44   = 44
	ChangeExternal = 0
	ChangeInternal = 1
)

// BIP44Path returns m/44'/coin'/account'/change/index.
func BIP44Path(coin, account, change, index uint32) Derivation {
	return Derivation(fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", PurposeBIP44, coin, account, change, index))
}

// Indices parses the path.
func (d Derivation) Indices() ([]uint32, error) {
	return ParsePath(string(d))
}

func (d Derivation) String() string { return string(d) }

// ParsePath splits a path on '/' into child indices. A leading "m" or "M"
// marks the root and produces no index. A segment ending in ', h or H is
// hardened. Segment values must be below 2^31.
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	segments := strings.Split(path, "/")
	if segments[0] == "m" || segments[0] == "M" {
		segments = segments[1:]
	}

	indices := make([]uint32, 0, len(segments))
	for _, seg := range segments {
		idx, err := parseSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %v", ErrInvalidPath, seg, err)
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func parseSegment(seg string) (uint32, error) {
	hardened := false
	if n := len(seg); n > 0 {
		switch seg[n-1] {
		case '\'', 'h', 'H':
			hardened = true
			seg = seg[:n-1]
		}
	}
	if seg == "" {
		return 0, errors.New("missing index")
	}
	// ParseUint accepts a leading '+'; BIP32 paths never carry one.
	if seg[0] < '0' || seg[0] > '9' {
		return 0, errors.New("not a number")
	}
	v, err := strconv.ParseUint(seg, 10, 32)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if uint32(v) >= HardenedOffset {
		return 0, errors.New("index out of range")
	}
	if hardened {
		return uint32(v) + HardenedOffset, nil
	}
	return uint32(v), nil
}

// FormatPath renders indices as a path rooted at "m", using ' for hardened.
func FormatPath(indices []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, idx := range indices {
		b.WriteByte('/')
		b.WriteString(formatIndex(idx))
	}
	return b.String()
}

func formatIndex(idx uint32) string {
	if idx >= HardenedOffset {
		return strconv.FormatUint(uint64(idx-HardenedOffset), 10) + "'"
	}
	return strconv.FormatUint(uint64(idx), 10)
}
