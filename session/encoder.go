package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// CurrentSchemaVersion is the leading byte written by [Encode].
const CurrentSchemaVersion = 1

// ErrRecordCorrupt is returned when a stored blob cannot be decoded.
var ErrRecordCorrupt = errors.New("session record corrupt")

// Encode serializes rec as:
//
//	version(1) | len(sid)(1) | sid | len(uid)(1) | uid | createdAt unix nanos (8, big endian)
func Encode(rec Record) ([]byte, error) {
	if len(rec.SessionID) > 255 {
		return nil, errors.New("session id too long")
	}
	if len(rec.UserID) > 255 {
		return nil, errors.New("user id too long")
	}

	var buf bytes.Buffer
	buf.Grow(3 + len(rec.SessionID) + len(rec.UserID) + 8)

	buf.WriteByte(CurrentSchemaVersion)

	buf.WriteByte(byte(len(rec.SessionID)))
	buf.WriteString(rec.SessionID)

	buf.WriteByte(byte(len(rec.UserID)))
	buf.WriteString(rec.UserID)

	var createdAt int64
	if !rec.CreatedAt.IsZero() {
		createdAt = rec.CreatedAt.UnixNano()
	}
	if err := binary.Write(&buf, binary.BigEndian, createdAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by [Encode]. A zero timestamp decodes to the
// zero time.Time so "missing createdAt" survives a round trip.
func Decode(data []byte) (Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}
	if version != CurrentSchemaVersion {
		return Record{}, fmt.Errorf("%w: unsupported session schema version %d", ErrRecordCorrupt, version)
	}

	sid, err := readShortString(reader)
	if err != nil {
		return Record{}, err
	}
	uid, err := readShortString(reader)
	if err != nil {
		return Record{}, err
	}

	var createdAt int64
	if err := binary.Read(reader, binary.BigEndian, &createdAt); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}
	if reader.Len() != 0 {
		return Record{}, fmt.Errorf("%w: trailing bytes", ErrRecordCorrupt)
	}

	rec := Record{SessionID: sid, UserID: uid}
	if createdAt != 0 {
		rec.CreatedAt = time.Unix(0, createdAt)
	}
	return rec, nil
}

func readShortString(reader *bytes.Reader) (string, error) {
	n, err := reader.ReadByte()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}
	return string(raw), nil
}
