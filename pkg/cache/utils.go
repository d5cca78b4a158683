package cache

import "fmt"

// Key joins a prefix and segments into a colon-delimited cache key.
func Key(prefix string, segments ...interface{}) string {
	key := prefix
	for _, s := range segments {
		key = fmt.Sprintf("%s:%v", key, s)
	}
	return key
}
