// Package contenthash computes deterministic fingerprints over the
// semantically meaningful fields of a synced record. Two records with the
// same field values always produce the same digest regardless of map
// iteration order; any changed field value produces a different digest.
package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Value renderers. Every field value is rendered to a type-tagged canonical
// string before hashing so that nil, the empty string, and numeric lookalikes
// stay distinguishable ("s:1" vs "f:1" vs "z").
const nullValue = "z"

// String renders a required string value
func String(v string) string {
	return "s:" + v
}

// StringPtr renders an optional string value; nil is distinct from ""
func StringPtr(v *string) string {
	if v == nil {
		return nullValue
	}
	return "s:" + *v
}

// TimePtr renders an optional timestamp in UTC with nanosecond precision
func TimePtr(v *time.Time) string {
	if v == nil {
		return nullValue
	}
	return "t:" + v.UTC().Format(time.RFC3339Nano)
}

// Float64Ptr renders an optional numeric value
func Float64Ptr(v *float64) string {
	if v == nil {
		return nullValue
	}
	return "f:" + strconv.FormatFloat(*v, 'g', -1, 64)
}

// Int64 renders a required integer value
func Int64(v int64) string {
	return "i:" + strconv.FormatInt(v, 10)
}

// Int64Ptr renders an optional integer value
func Int64Ptr(v *int64) string {
	if v == nil {
		return nullValue
	}
	return "i:" + strconv.FormatInt(*v, 10)
}

// escaper makes the field separators unambiguous inside names and values:
// a literal backslash, equals sign, or newline can never be confused with
// the encoding's own structure.
var escaper = strings.NewReplacer(`\`, `\\`, `=`, `\=`, "\n", `\n`)

// Sum returns the lowercase hex SHA-256 digest of the canonical encoding of
// fields. Names are sorted, then each pair is written as "name=value\n" with
// backslash escaping applied to both halves. The digest is 64 characters.
func Sum(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(escaper.Replace(name)))
		h.Write([]byte{'='})
		h.Write([]byte(escaper.Replace(fields[name])))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
