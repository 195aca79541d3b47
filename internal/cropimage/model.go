package cropimage

import (
	"errors"
	"time"
)

var ErrImageNotFound = errors.New("image not found")

// Image is the metadata of a stored listing image. The payload itself is only
// loaded by GetPayload.
type Image struct {
	ID        int64
	ListingID int64
	Size      int64
	CreatedAt time.Time
}
