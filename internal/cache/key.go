package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Key is an arbitrary key-data dictionary. Callers populate it with every
// parameter that affects the cached artifact's content (transcoder
// version, chosen hardware kind, video/audio params, upstream cache-key
// hashes, and so on). Path-like values should already be plain strings.
type Key map[string]interface{}

// Hash returns the SHA-256 hex digest of k's canonical JSON encoding (keys
// sorted at every nesting level), so two Keys built in different field
// order hash identically.
func (k Key) Hash() string {
	var buf bytes.Buffer
	writeCanonical(&buf, map[string]interface{}(k))
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func writeCanonical(buf *bytes.Buffer, v interface{}) {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			writeCanonical(buf, t[k])
		}
		buf.WriteByte('}')
	case []interface{}:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, e)
		}
		buf.WriteByte(']')
	default:
		b, _ := json.Marshal(t)
		buf.Write(b)
	}
}
