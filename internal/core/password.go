// AngelaMos | 2026
// password.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var ErrMalformedHash = errors.New("malformed password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

// currentArgon is what new hashes use. Stored hashes with other parameters
// still verify and are upgraded on the next successful login.
var currentArgon = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const argonSaltLen = 16

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// PHC string: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func (p argonParams) encode(salt, key []byte) string {
	var b strings.Builder
	b.WriteString("$argon2id$v=")
	b.WriteString(strconv.Itoa(argon2.Version))
	fmt.Fprintf(&b, "$m=%d,t=%d,p=%d$", p.memory, p.time, p.threads)
	b.WriteString(base64.RawStdEncoding.EncodeToString(salt))
	b.WriteByte('$')
	b.WriteString(base64.RawStdEncoding.EncodeToString(key))
	return b.String()
}

type storedHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

func parseHash(encoded string) (*storedHash, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return nil, ErrMalformedHash
	}
	if fields[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("argon2 %s: %w", fields[2], ErrMalformedHash)
	}

	var h storedHash
	for _, kv := range strings.Split(fields[3], ",") {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, ErrMalformedHash
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("argon2 %s: %w", name, ErrMalformedHash)
		}
		switch name {
		case "m":
			h.params.memory = uint32(n)
		case "t":
			h.params.time = uint32(n)
		case "p":
			if n > 255 {
				return nil, ErrMalformedHash
			}
			h.params.threads = uint8(n)
		default:
			return nil, ErrMalformedHash
		}
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return nil, fmt.Errorf("argon2 salt: %w", ErrMalformedHash)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return nil, fmt.Errorf("argon2 key: %w", ErrMalformedHash)
	}
	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	h.params.keyLen = uint32(len(h.key))

	return &h, nil
}

func (h *storedHash) matches(password string) bool {
	return subtle.ConstantTimeCompare(h.key, h.params.derive(password, h.salt)) == 1
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return currentArgon.encode(salt, currentArgon.derive(password, salt)), nil
}

func VerifyPassword(password, encoded string) (bool, error) {
	h, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	return h.matches(password), nil
}

// PasswordCheck is the outcome of CheckPassword. Rehash is set when the
// password matched a hash made with outdated parameters.
type PasswordCheck struct {
	Valid  bool
	Rehash string
}

var placeholderHash = sync.OnceValue(func() *storedHash {
	h, err := HashPassword("placeholder for unknown accounts")
	if err != nil {
		panic(fmt.Sprintf("password: placeholder hash: %v", err))
	}
	parsed, _ := parseHash(h) //nolint:errcheck // produced above
	return parsed
})

// CheckPassword verifies password against encoded. An empty encoded hash
// stands for an unknown account: the work is done against a placeholder so
// both outcomes cost the same, and the result is always invalid.
func CheckPassword(password, encoded string) (PasswordCheck, error) {
	if encoded == "" {
		placeholderHash().matches(password)
		return PasswordCheck{}, nil
	}

	h, err := parseHash(encoded)
	if err != nil {
		return PasswordCheck{}, err
	}
	if !h.matches(password) {
		return PasswordCheck{}, nil
	}

	check := PasswordCheck{Valid: true}
	if h.params != currentArgon {
		if upgraded, hashErr := HashPassword(password); hashErr == nil {
			check.Rehash = upgraded
		}
	}
	return check, nil
}
