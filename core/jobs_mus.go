package core

import (
	"time"

	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the job record. The format is the field
// order below; changing it is a breaking change for existing databases.

// StatusMUS is the MUS serializer for Status.
var StatusMUS = statusMUS{}

type statusMUS struct{}

var _ mus.Serializer[Status] = StatusMUS

func (statusMUS) Marshal(v Status, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (statusMUS) Unmarshal(bs []byte) (v Status, n int, err error) {
	s, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = Status(s)
	err = ValidateStatus(v)
	return
}

func (statusMUS) Size(v Status) (size int) {
	return ord.String.Size(string(v))
}

func (statusMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

// timeMUS serializes time.Time as Unix microseconds. Decoded values are UTC.
var timeMUS = timeMicroMUS{}

type timeMicroMUS struct{}

var _ mus.Serializer[time.Time] = timeMUS

func (timeMicroMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (timeMicroMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = time.UnixMicro(micro).UTC()
	return
}

func (timeMicroMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

func (timeMicroMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

// JobMUS is the MUS serializer for Job.
var JobMUS = jobMUS{}

type jobMUS struct{}

var _ mus.Serializer[Job] = JobMUS

func (jobMUS) Marshal(v Job, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += StatusMUS.Marshal(v.Status, bs[n:])
	n += varint.Int.Marshal(v.Progress, bs[n:])
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += ord.String.Marshal(v.InputChecksum, bs[n:])
	n += ord.String.Marshal(v.OutputChecksum, bs[n:])
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += varint.Int.Marshal(v.VectorDim, bs[n:])
	n += ord.String.Marshal(v.ModelID, bs[n:])
	n += ord.String.Marshal(v.ErrorMessage, bs[n:])
	n += timeMUS.Marshal(v.CreatedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (jobMUS) Unmarshal(bs []byte) (v Job, n int, err error) {
	var n1 int
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Status, n1, err = StatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Progress, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InputChecksum, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.OutputChecksum, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.VectorDim, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ModelID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (jobMUS) Size(v Job) (size int) {
	size = ord.String.Size(v.ID)
	size += StatusMUS.Size(v.Status)
	size += varint.Int.Size(v.Progress)
	size += ord.String.Size(v.Filename)
	size += ord.String.Size(v.InputChecksum)
	size += ord.String.Size(v.OutputChecksum)
	size += varint.Int.Size(v.ChunkCount)
	size += varint.Int.Size(v.VectorDim)
	size += ord.String.Size(v.ModelID)
	size += ord.String.Size(v.ErrorMessage)
	size += timeMUS.Size(v.CreatedAt)
	size += timeMUS.Size(v.UpdatedAt)
	return
}

func (jobMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for _, skip := range []func([]byte) (int, error){
		ord.String.Skip,   // ID
		StatusMUS.Skip,    // Status
		varint.Int.Skip,   // Progress
		ord.String.Skip,   // Filename
		ord.String.Skip,   // InputChecksum
		ord.String.Skip,   // OutputChecksum
		varint.Int.Skip,   // ChunkCount
		varint.Int.Skip,   // VectorDim
		ord.String.Skip,   // ModelID
		ord.String.Skip,   // ErrorMessage
		timeMUS.Skip,      // CreatedAt
		timeMUS.Skip,      // UpdatedAt
	} {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}
