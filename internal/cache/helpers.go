package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
)

func hashJSON(v interface{}) string {
	data, _ := json.Marshal(v)
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// GenerateCacheKey builds a key from a prefix and the filter params that
// shape the result. Same params, same key.
func GenerateCacheKey(prefix string, params ...interface{}) string {
	if len(params) == 0 {
		return prefix
	}
	return prefix + ":" + hashJSON(params)
}

// GetETag returns a quoted content hash suitable for the ETag header
func GetETag(data interface{}) string {
	return `"` + hashJSON(data) + `"`
}
