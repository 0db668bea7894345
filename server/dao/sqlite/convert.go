package sqlite

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// conversions between Go types and their column representations. UUIDs are
// stored as their string form, times as Unix seconds, and byte slices as
// base64 text.

func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

func convertFromDB_UUID(s string, dest *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("stored UUID %q is invalid: %w", s, err)
	}
	*dest = u
	return nil
}

func convertToDB_Time(t time.Time) int64 {
	return t.Unix()
}

func convertFromDB_Time(v int64, dest *time.Time) {
	*dest = time.Unix(v, 0)
}

func convertToDB_ByteSlice(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func convertFromDB_ByteSlice(s string, dest *[]byte) error {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("stored data is not valid base64: %w", err)
	}
	*dest = b
	return nil
}
