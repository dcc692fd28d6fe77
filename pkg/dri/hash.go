package dri

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewHash returns an opaque 40 character hex identifier. It labels new
// records and names upload directories.
func NewHash() string {
	h := sha1.New()
	id := uuid.New()
	h.Write(id[:])
	h.Write([]byte(strconv.FormatInt(time.Now().UnixNano(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}
