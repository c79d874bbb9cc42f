// Package artifact encodes computed embedding vectors into a self-describing
// binary container and decodes them back. The round trip is exact for finite
// float32 values, including the empty sequence.
package artifact

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Container layout: magic, format version, varint chunk count, varint vector
// dimension, then count*dim little-endian float32 values in order.
var magic = []byte("EQVB")

const formatVersion = byte(1)

var (
	// ErrDimensionMismatch indicates the vectors do not share one length.
	ErrDimensionMismatch = errors.New("vectors must have equal dimensionality")

	// ErrZeroDimension indicates non-empty vectors with no components.
	ErrZeroDimension = errors.New("vectors must have at least one component")

	// ErrBadContainer indicates the data is not an embedding artifact.
	ErrBadContainer = errors.New("not an embedding artifact")

	// ErrUnsupportedVersion indicates an unknown container format version.
	ErrUnsupportedVersion = errors.New("unsupported artifact version")

	// ErrTruncated indicates the artifact ends before the declared payload.
	ErrTruncated = errors.New("truncated artifact")
)

// Encode serializes an ordered sequence of fixed-length vectors.
// Returns ErrDimensionMismatch if the vectors differ in length.
func Encode(vectors [][]float32) ([]byte, error) {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for _, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: expected %d, found %d", ErrDimensionMismatch, dim, len(v))
		}
	}
	if len(vectors) > 0 && dim == 0 {
		return nil, ErrZeroDimension
	}

	size := len(magic) + 1 + varint.Int.Size(len(vectors)) + varint.Int.Size(dim)
	size += len(vectors) * dim * raw.Float32.Size(0)

	bs := make([]byte, size)
	n := copy(bs, magic)
	bs[n] = formatVersion
	n++
	n += varint.Int.Marshal(len(vectors), bs[n:])
	n += varint.Int.Marshal(dim, bs[n:])
	for _, vec := range vectors {
		for _, f := range vec {
			n += raw.Float32.Marshal(f, bs[n:])
		}
	}
	return bs, nil
}

// Decode deserializes an artifact back into its vector sequence.
func Decode(bs []byte) ([][]float32, error) {
	count, dim, n, err := readHeader(bs)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			f, n1, err := raw.Float32.Unmarshal(bs[n:])
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
			}
			vec[j] = f
			n += n1
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Shape reads the chunk count and vector dimension without decoding the
// payload. Used to cross-check a job record against its stored artifact.
func Shape(bs []byte) (count, dim int, err error) {
	count, dim, _, err = readHeader(bs)
	return
}

func readHeader(bs []byte) (count, dim, n int, err error) {
	if len(bs) < len(magic)+1 || !bytes.Equal(bs[:len(magic)], magic) {
		err = ErrBadContainer
		return
	}
	n = len(magic)
	if bs[n] != formatVersion {
		err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, bs[n])
		return
	}
	n++

	var n1 int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTruncated, err)
		return
	}
	dim, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTruncated, err)
		return
	}
	if count < 0 || dim < 0 || (count > 0 && dim == 0) {
		err = ErrBadContainer
		return
	}
	// Bounds-check against the actual payload without computing count*dim,
	// which a hostile header could overflow.
	avail := (len(bs) - n) / raw.Float32.Size(0)
	if count > 0 && dim > avail/count {
		err = fmt.Errorf("%w: declared %dx%d values, have %d", ErrTruncated, count, dim, avail)
	}
	return
}
