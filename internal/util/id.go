package util

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// NewID returns a URL-safe hex string ID.
func NewID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewTimeID returns a millisecond-timestamp ID. Book documents use these;
// collisions are not a concern at single-user upload rates.
func NewTimeID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
