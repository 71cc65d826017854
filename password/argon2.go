package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// DefaultMaxPasswordBytes caps plaintext length when Config.MaxPasswordBytes is zero.
const DefaultMaxPasswordBytes = 1024

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

var (
	// ErrPasswordEmpty is returned when hashing an empty password.
	ErrPasswordEmpty = errors.New("password must not be empty")
	// ErrPasswordTooShort is returned when a password is below Config.MinPasswordBytes.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrPasswordTooLong is returned when a password exceeds the byte cap.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrInvalidHash is returned for anything that is not a supported PHC string.
	ErrInvalidHash = errors.New("invalid password hash")
)

// Config holds Argon2id cost parameters and plaintext length policy.
type Config struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// MinPasswordBytes is the shortest accepted plaintext. Zero only rejects
	// the empty password.
	MinPasswordBytes int
	// MaxPasswordBytes bounds plaintext length. Zero means DefaultMaxPasswordBytes.
	MaxPasswordBytes int
}

// DefaultConfig returns the parameters used by the server.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 hashes passwords with a fixed Config. It is safe for concurrent use.
type Argon2 struct {
	config Config
}

type parsedPHC struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// NewArgon2 validates cfg and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.MaxPasswordBytes == 0 {
		cfg.MaxPasswordBytes = DefaultMaxPasswordBytes
	}
	return &Argon2{config: cfg}, nil
}

// Hash returns a PHC-encoded Argon2id hash of password with a fresh random salt.
// Raw bytes are hashed as given; there is no Unicode normalization.
func (a *Argon2) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordEmpty
	}
	if len(password) < a.config.MinPasswordBytes {
		return "", fmt.Errorf("%w: need at least %d bytes", ErrPasswordTooShort, a.config.MinPasswordBytes)
	}
	if len(password) > a.config.MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, a.config.Time, a.config.Memory, a.config.Parallelism, a.config.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.config.Memory,
		a.config.Time,
		a.config.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks password against encodedHash, rejecting oversize input
// before running the KDF.
func (a *Argon2) Verify(password, encodedHash string) (bool, error) {
	if len(password) > a.config.MaxPasswordBytes {
		return false, ErrPasswordTooLong
	}
	return Verify(password, encodedHash)
}

// NeedsUpgrade reports whether encodedHash was produced with weaker cost
// parameters or a different key length than a's Config.
func (a *Argon2) NeedsUpgrade(encodedHash string) (bool, error) {
	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	switch {
	case a.config.Memory > parsed.memory,
		a.config.Time > parsed.time,
		a.config.Parallelism > parsed.parallelism,
		int(a.config.KeyLength) != len(parsed.hash):
		return true, nil
	}
	return false, nil
}

// Verify checks password against a PHC string using the parameters embedded
// in it. The comparison is constant time.
func Verify(password, encodedHash string) (bool, error) {
	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), parsed.salt, parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.hash)))
	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1, nil
}

func parsePHC(encodedHash string) (*parsedPHC, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: not a PHC string", ErrInvalidHash)
	}
	if parts[1] != algorithmID {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidHash, parts[1])
	}

	rawVersion, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidHash)
	}
	version, err := strconv.Atoi(rawVersion)
	if err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidHash, rawVersion)
	}

	parsed := &parsedPHC{}
	if err := parseParams(parts[3], parsed); err != nil {
		return nil, err
	}

	parsed.salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(parsed.salt) < int(minSaltLength) {
		return nil, fmt.Errorf("%w: bad salt", ErrInvalidHash)
	}
	parsed.hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(parsed.hash) < int(minKeyLength) {
		return nil, fmt.Errorf("%w: bad key", ErrInvalidHash)
	}
	return parsed, nil
}

func parseParams(part string, out *parsedPHC) error {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return fmt.Errorf("%w: expected m,t,p parameters", ErrInvalidHash)
	}

	seen := make(map[string]bool, 3)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || seen[key] {
			return fmt.Errorf("%w: bad parameter %q", ErrInvalidHash, pair)
		}
		seen[key] = true

		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minMemoryKB) {
				return fmt.Errorf("%w: bad memory parameter", ErrInvalidHash)
			}
			out.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minTimeCost) {
				return fmt.Errorf("%w: bad time parameter", ErrInvalidHash)
			}
			out.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v < uint64(minParallelism) {
				return fmt.Errorf("%w: bad parallelism parameter", ErrInvalidHash)
			}
			out.parallelism = uint8(v)
		default:
			return fmt.Errorf("%w: unsupported parameter %q", ErrInvalidHash, key)
		}
	}
	return nil
}

func validateConfig(cfg Config) error {
	switch {
	case cfg.Memory < minMemoryKB:
		return fmt.Errorf("password memory must be >= %d KiB", minMemoryKB)
	case cfg.Time < minTimeCost:
		return errors.New("password time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return errors.New("password parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return fmt.Errorf("password salt length must be >= %d", minSaltLength)
	case cfg.KeyLength < minKeyLength:
		return fmt.Errorf("password key length must be >= %d", minKeyLength)
	case cfg.MinPasswordBytes < 0, cfg.MaxPasswordBytes < 0:
		return errors.New("password length bounds must not be negative")
	case cfg.MaxPasswordBytes != 0 && cfg.MinPasswordBytes > cfg.MaxPasswordBytes:
		return errors.New("password min length exceeds max length")
	}
	return nil
}
