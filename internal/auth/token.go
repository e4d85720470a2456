package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/casamora/storefront/internal/config"
	"github.com/casamora/storefront/internal/constants"
	inErrors "github.com/casamora/storefront/internal/errors"
	"github.com/casamora/storefront/internal/log"
)

// VerifyCredentials checks the admin login against the bcrypt hash carried in
// config. The storefront has a single operator account; there is no user table.
func VerifyCredentials(cfg config.Application, username, password string) error {
	if username != cfg.AdminUsername {
		return inErrors.ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(password))
	if err != nil {
		return inErrors.ErrInvalidCredentials
	}
	return nil
}

func MintToken(c context.Context, cfg config.Application) (string, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "auth MintToken").
		Logger()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    constants.AppStorefrontService,
		Subject:   cfg.AdminUsername,
		Audience:  jwt.ClaimStrings{constants.AudienceAdmin},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(12 * time.Hour)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.SecretKey))
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	return token, nil
}

func VerifyToken(c context.Context, cfg config.Application, token string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "auth VerifyToken").
		Logger()

	claims := jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.SecretKey), nil
		},
		jwt.WithAudience(constants.AudienceAdmin),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppStorefrontService),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing with claims with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if !jwtToken.Valid {
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		return inErrors.ErrTokenInvalid
	}
	return nil
}
