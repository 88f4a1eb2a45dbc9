package session

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prolianceltd/taskflow-cli/internal/client/models"
	"github.com/prolianceltd/taskflow-cli/internal/common"
)

// DecodeIdentity extracts identity claims from the middle segment of a JWT
// without verifying the signature. The result is a UI hint only; the remote
// service stays the sole authority for trust decisions.
func DecodeIdentity(token string) (models.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return models.Identity{}, common.ErrInvalidToken
	}

	id := claimInt64(claims, "id")
	if id == 0 {
		id = claimInt64(claims, "sub")
	}

	role := claimString(claims, "role")
	if role == "" {
		role = "user"
	}

	return models.Identity{
		ID:        id,
		FirstName: claimString(claims, "first_name"),
		LastName:  claimString(claims, "last_name"),
		Email:     claimString(claims, "email"),
		Username:  claimString(claims, "username"),
		Role:      role,
	}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// claimInt64 reads a numeric claim. JSON numbers arrive as float64; the sub
// claim is often a numeric string, so both encodings are accepted.
func claimInt64(claims jwt.MapClaims, key string) int64 {
	switch v := claims[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
