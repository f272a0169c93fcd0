package sqlite

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// serializeVector converts a float32 slice to a LittleEndian BLOB.
func serializeVector(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("failed to serialize vector: %w", err)
	}
	return buf.Bytes(), nil
}

func deserializeVector(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec); err != nil {
		return nil
	}
	return vec
}
