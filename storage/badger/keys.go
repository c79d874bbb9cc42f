package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	jobRecordPrefix  = "jobrec"
	jobCreatedPrefix = "jobcre"
	inputBlobPrefix  = "docblb"
	outputBlobPrefix = "artblb"
)

// makeJobKey generates a key for a job record by ID.
func makeJobKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", jobRecordPrefix, id))
}

// makeJobCreatedKey generates a composite key for the creation-time index.
// Format: prefix:timestamp:id
func makeJobCreatedKey(createdAt time.Time, id string) []byte {
	prefix := jobCreatedPrefix + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 8 + len(id)
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makeInputBlobKey generates a key for a stored input document.
func makeInputBlobKey(checksum string) []byte {
	return []byte(fmt.Sprintf("%s:%s", inputBlobPrefix, checksum))
}

// makeOutputBlobKey generates a key for a stored result artifact.
func makeOutputBlobKey(checksum string) []byte {
	return []byte(fmt.Sprintf("%s:%s", outputBlobPrefix, checksum))
}
