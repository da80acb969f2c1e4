package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer signs and verifies HS256 bearer tokens carrying the identity's
// roles and linked profile ids.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := t.now()

	roles := make([]string, len(id.Roles))
	for i, r := range id.Roles {
		roles[i] = string(r)
	}

	claims := jwt.MapClaims{
		"sub":   id.Subject,
		"uid":   id.UserID.String(),
		"roles": roles,
		"iat":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
	}
	if id.PatientID != nil {
		claims["pid"] = id.PatientID.String()
	}
	if id.StaffID != nil {
		claims["sid"] = id.StaffID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and rebuilds the typed Identity.
func (t *TokenIssuer) Parse(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	uidStr, _ := claims["uid"].(string)
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	id := &Identity{
		Subject: sub,
		UserID:  uid,
	}

	if rawRoles, ok := claims["roles"].([]any); ok {
		for _, raw := range rawRoles {
			if s, ok := raw.(string); ok {
				id.Roles = append(id.Roles, Role(s))
			}
		}
	}
	if len(id.Roles) == 0 {
		return nil, ErrInvalidToken
	}

	if pidStr, ok := claims["pid"].(string); ok {
		pid, err := uuid.Parse(pidStr)
		if err != nil {
			return nil, ErrInvalidToken
		}
		id.PatientID = &pid
	}
	if sidStr, ok := claims["sid"].(string); ok {
		sid, err := uuid.Parse(sidStr)
		if err != nil {
			return nil, ErrInvalidToken
		}
		id.StaffID = &sid
	}

	return id, nil
}
