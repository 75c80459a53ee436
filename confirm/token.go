package confirm

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken signals a form token that is forged, expired, or malformed.
var ErrInvalidToken = errors.New("confirm: invalid form token")

const claimOrder = "pedido"

// Signer binds a decision form to the order the page displayed. The page embeds
// a token for the order number; a submit is only accepted for that order.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a Signer with an HMAC secret and token lifetime.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a token for the order number.
func (s *Signer) Issue(orderNumber string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		claimOrder: orderNumber,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("confirm: sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns the order number it was issued for.
func (s *Signer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	orderNumber, ok := claims[claimOrder].(string)
	if !ok || orderNumber == "" {
		return "", fmt.Errorf("%w: missing order claim", ErrInvalidToken)
	}
	return orderNumber, nil
}
