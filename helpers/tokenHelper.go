package helpers

import (
	"errors"
	"fmt"
	"time"

	"go-restaurant-ops/models"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrInvalidToken = errors.New("the token is invalid")
	ErrExpiredToken = errors.New("token is expired")
)

// SignedDetails are the claims carried by access tokens.
type SignedDetails struct {
	Email         string
	Name          string
	Uid           string
	User_role     string
	Restaurant_id string
	jwt.StandardClaims
}

// GenerateToken signs an HS256 access token for user that expires after ttl.
func GenerateToken(secret string, user models.User, ttl time.Duration) (string, error) {
	claim := SignedDetails{
		Email:         user.Email,
		Name:          user.Name,
		Uid:           user.User_id,
		User_role:     string(user.Role),
		Restaurant_id: user.Restaurant_id,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Local().Add(ttl).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func ValidateToken(secret, signedToken string) (*SignedDetails, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&SignedDetails{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*SignedDetails)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt < time.Now().Local().Unix() {
		return nil, ErrExpiredToken
	}
	return claims, nil
}
