// Package storage keeps image attachments outside the structured records.
// Records hold a relative reference such as "img/1729332000000000000.jpg".
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var (
	// ErrInvalidPayload is returned when an attachment is not valid base64.
	ErrInvalidPayload = errors.New("invalid attachment payload")
	// ErrEmptyPayload is returned when an attachment decodes to zero bytes.
	ErrEmptyPayload = errors.New("empty attachment payload")
)

// ImagePrefix is the namespace every reference lives under.
const ImagePrefix = "img"

// Store persists attachment blobs.
type Store interface {
	// Write decodes a base64 payload, stores it under a fresh reference and
	// returns that reference.
	Write(ctx context.Context, payload string) (string, error)
	// Remove deletes the blob behind ref. A missing blob is not an error.
	Remove(ctx context.Context, ref string) error
}

// Decode turns a base64 attachment into bytes. Data URL prefixes such as
// "data:image/png;base64," are tolerated.
func Decode(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}

var lastStamp atomic.Int64

// newReference returns "img/<unix-nano>.jpg". Stamps are strictly increasing
// within the process so two writes in the same nanosecond never share a name.
func newReference(now time.Time) string {
	stamp := now.UnixNano()
	for {
		prev := lastStamp.Load()
		if stamp <= prev {
			stamp = prev + 1
		}
		if lastStamp.CompareAndSwap(prev, stamp) {
			break
		}
	}
	return path.Join(ImagePrefix, strconv.FormatInt(stamp, 10)+".jpg")
}

// validReference rejects references that could escape the image namespace.
func validReference(ref string) error {
	clean := path.Clean(ref)
	if ref == "" || clean != ref || !strings.HasPrefix(clean, ImagePrefix+"/") || strings.Contains(clean, "..") {
		return fmt.Errorf("invalid attachment reference %q", ref)
	}
	return nil
}
