package session

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity holds the claims decoded from the token payload
type Identity map[string]any

func (i Identity) str(key string) string {
	if i == nil {
		return ""
	}
	switch v := i[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ID returns the uid claim, falling back to sub and then to the id
// key used by the user objects of the API
func (i Identity) ID() string {
	for _, key := range []string{"uid", "sub", "id"} {
		if id := i.str(key); id != "" {
			return id
		}
	}
	return ""
}

func (i Identity) Name() string  { return i.str("name") }
func (i Identity) Email() string { return i.str("email") }
func (i Identity) Role() string  { return i.str("role") }

// DisplayName returns the name or the email when the name is empty
func (i Identity) DisplayName() string {
	if name := i.Name(); name != "" {
		return name
	}
	return i.Email()
}

var segmentDecoder = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims reads the payload segment of a token without verifying
// its signature. The result is advisory, the server remains the
// authority on validity.
func DecodeClaims(token string) (Identity, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, ErrMalformedToken
	}

	raw, err := segmentDecoder.DecodeSegment(parts[1])
	if err != nil {
		return nil, wrapMalformed(err)
	}

	identity := Identity{}
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, wrapMalformed(err)
	}

	if identity == nil {
		return nil, ErrMalformedToken
	}

	return identity, nil
}

// CheckExpiry fails with ErrTokenExpired when exp is before now. A
// missing exp never expires.
func CheckExpiry(identity Identity, now time.Time) error {
	exp, ok, err := expiresAt(identity)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if exp < float64(now.Unix()) {
		return ErrTokenExpired
	}
	return nil
}

func expiresAt(identity Identity) (float64, bool, error) {
	switch v := identity["exp"].(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false, wrapMalformed(err)
		}
		return f, true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false, wrapMalformed(err)
		}
		return f, true, nil
	default:
		return 0, false, ErrMalformedToken
	}
}
