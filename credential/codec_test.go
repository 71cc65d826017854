package credential

import (
	"encoding/base64"
	"testing"
)

func TestDecodeBasicHeader(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		present bool
		want    string
		ok      bool
	}{
		{name: "absent", present: false},
		{name: "basic", value: "Basic abc", present: true, want: "abc", ok: true},
		{name: "bearer", value: "Bearer abc", present: true},
		{name: "lowercase scheme", value: "basic abc", present: true},
		{name: "missing space", value: "Basicabc", present: true},
		{name: "empty remainder", value: "Basic ", present: true, want: "", ok: true},
		{name: "remainder keeps spaces", value: "Basic a b", present: true, want: "a b", ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DecodeBasicHeader(tc.value, tc.present)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("DecodeBasicHeader(%q, %v) = (%q, %v), want (%q, %v)", tc.value, tc.present, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestDecodeBase64RoundTrip(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("user:pass"))

	got, ok := DecodeBase64(encoded)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if got != "user:pass" {
		t.Fatalf("expected user:pass, got %q", got)
	}
}

func TestDecodeBase64Rejects(t *testing.T) {
	invalidUTF8 := base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})

	for _, in := range []string{"Holberton", "!!!", "dXNlcjpwYXNz=", invalidUTF8} {
		if got, ok := DecodeBase64(in); ok {
			t.Fatalf("DecodeBase64(%q) = %q, expected failure", in, got)
		}
	}
}

func TestSplitCredentials(t *testing.T) {
	creds, ok := SplitCredentials("user:pass:word")
	if !ok {
		t.Fatal("expected split to succeed")
	}
	if creds.Username != "user" || creds.Password != "pass:word" {
		t.Fatalf("unexpected split result: %+v", creds)
	}

	if _, ok := SplitCredentials("no-colon"); ok {
		t.Fatal("expected split without colon to fail")
	}

	creds, ok = SplitCredentials(":")
	if !ok || creds.Username != "" || creds.Password != "" {
		t.Fatalf("expected empty pair, got %+v ok=%v", creds, ok)
	}
}

func TestParseBasicMatchesEncodeBasic(t *testing.T) {
	header := EncodeBasic("a@b.com", "x:y")

	creds, ok := ParseBasic(header, true)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if creds.Username != "a@b.com" || creds.Password != "x:y" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	if _, ok := ParseBasic(header, false); ok {
		t.Fatal("absent header must not parse")
	}
}

func TestCredentialsStringRedactsPassword(t *testing.T) {
	c := Credentials{Username: "bob", Password: "secret"}
	if got := c.String(); got != "bob:***" {
		t.Fatalf("unexpected string form: %q", got)
	}
}
