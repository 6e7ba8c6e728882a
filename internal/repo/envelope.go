package repo

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var errTruncated = errors.New("truncated field")

// encodeFields writes each field as a uvarint length followed by its bytes.
func encodeFields(fields ...[]byte) []byte {
	size := 0
	for _, f := range fields {
		size += binary.MaxVarintLen64 + len(f)
	}

	out := make([]byte, 0, size)
	for _, f := range fields {
		out = binary.AppendUvarint(out, uint64(len(f)))
		out = append(out, f...)
	}
	return out
}

// decodeFields reads exactly n length-prefixed fields. Trailing bytes are an error.
func decodeFields(data []byte, n int) ([][]byte, error) {
	fields := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		length, read := binary.Uvarint(data)
		if read <= 0 {
			return nil, fmt.Errorf("field %d: invalid length prefix", i)
		}
		data = data[read:]

		if length > uint64(len(data)) {
			return nil, fmt.Errorf("field %d: %w (want %d bytes, have %d)", i, errTruncated, length, len(data))
		}
		fields = append(fields, data[:length:length])
		data = data[length:]
	}

	if len(data) != 0 {
		return nil, fmt.Errorf("%d trailing bytes", len(data))
	}
	return fields, nil
}

// diskEntry is the on-disk form of one sealed document.
type diskEntry struct {
	Nonce   []byte
	Content []byte
}

func (e diskEntry) MarshalBinary() ([]byte, error) {
	return encodeFields(e.Nonce, e.Content), nil
}

func (e *diskEntry) UnmarshalBinary(data []byte) error {
	fields, err := decodeFields(data, 2)
	if err != nil {
		return err
	}
	e.Nonce, e.Content = fields[0], fields[1]
	return nil
}
