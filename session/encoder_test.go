package session

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecode(t *testing.T) {
	rec := Record{
		SessionID: "6f1c2a8e-6a1d-4c55-9a53-0b3b1c8e2f10",
		UserID:    "user-1",
		CreatedAt: time.Unix(1700000000, 123456789),
	}

	data, err := Encode(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if data[0] != CurrentSchemaVersion {
		t.Fatalf("expected schema byte %d, got %d", CurrentSchemaVersion, data[0])
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SessionID != rec.SessionID || got.UserID != rec.UserID || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, rec)
	}
}

func TestDecodeKeepsMissingCreatedAt(t *testing.T) {
	data, err := Encode(Record{SessionID: "s", UserID: "u"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.CreatedAt.IsZero() {
		t.Fatalf("expected zero createdAt, got %v", got.CreatedAt)
	}
}

func TestDecodeRejectsUnsupportedSchemaVersion(t *testing.T) {
	_, err := Decode([]byte{99})
	if !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected corrupt record error, got %v", err)
	}
}

func TestDecodeRejectsTruncatedAndTrailing(t *testing.T) {
	data, err := Encode(Record{SessionID: "s", UserID: "u", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(data[:len(data)-1]); !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected truncated blob to fail, got %v", err)
	}
	if _, err := Decode(append(data, 0)); !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected trailing bytes to fail, got %v", err)
	}
}

func TestEncodeRejectsOversizedIDs(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := Encode(Record{SessionID: string(long), UserID: "u"}); err == nil {
		t.Fatal("expected oversized session id to fail")
	}
	if _, err := Encode(Record{SessionID: "s", UserID: string(long)}); err == nil {
		t.Fatal("expected oversized user id to fail")
	}
}
