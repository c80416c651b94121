package compare

import (
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dbdiff/pkg/catalog"
)

// floatPrecision is the number of decimal digits kept when normalizing
// real values. Differences beyond it are representational noise, not
// data drift.
const floatPrecision = 10

// normalizeValue maps a raw scalar to its canonical comparison form:
// nulls stay null, text is trimmed, reals are rounded, integers and
// blobs pass through. Any other type is a normalization failure.
func normalizeValue(v any) (any, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.TrimSpace(s), nil
	case float64:
		return roundFloat(s), nil
	case int64:
		return s, nil
	case []byte:
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// roundFloat rounds f to floatPrecision decimal digits. Values too large
// to carry fractional digits are returned unchanged so the shift cannot
// overflow them.
func roundFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e15 {
		return f
	}
	shift := math.Pow(10, floatPrecision)
	return math.Round(f*shift) / shift
}

// rowKey builds the canonical fingerprint of a row: column-name-sorted,
// type-tagged, with every segment quoted so embedded separators cannot
// forge a boundary. Two rows are the same row iff their fingerprints are
// equal, regardless of column order.
func rowKey(row catalog.Row) (string, error) {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		norm, err := normalizeValue(row[name])
		if err != nil {
			return "", fmt.Errorf("column %s: %w", name, err)
		}
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Quote(name))
		sb.WriteByte('=')
		sb.WriteString(encodeValue(norm))
	}
	return sb.String(), nil
}

// encodeValue renders a normalized scalar with a storage-class tag so
// values of different classes never collide.
func encodeValue(v any) string {
	switch s := v.(type) {
	case nil:
		return "n:"
	case int64:
		return "i:" + strconv.FormatInt(s, 10)
	case float64:
		return "r:" + strconv.FormatFloat(s, 'g', -1, 64)
	case string:
		return "t:" + strconv.Quote(s)
	case []byte:
		return "b:" + hex.EncodeToString(s)
	default:
		// normalizeValue rejects everything else first.
		return fmt.Sprintf("?:%v", v)
	}
}
