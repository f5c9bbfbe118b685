package config

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT signs and verifies device identity tokens. Identity here is not
// authentication: the token only makes the per-device random identifier
// tamper-proof so roles stay stable across requests.
type JWT struct {
	publicKey     *rsa.PublicKey
	privateKey    *rsa.PrivateKey
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

// DeviceClaims carry the opaque per-device identity string.
type DeviceClaims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

func loadPEM(envVar, fileVar string, parse func([]byte) error) error {
	if value, ok := os.LookupEnv(envVar); ok {
		return parse([]byte(value))
	}
	path, ok := os.LookupEnv(fileVar)
	if !ok {
		return fmt.Errorf("no %s or %s env variable set", envVar, fileVar)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", fileVar, err)
	}
	return parse(data)
}

func NewJWT() (*JWT, error) {
	j := &JWT{
		signingMethod: jwt.GetSigningMethod("RS256"),
		tokenLifetime: time.Hour * 24 * 365,
	}

	err := loadPEM("JWT_PRIVATE_KEY", "JWT_PRIVATE_KEY_FILE", func(b []byte) error {
		key, err := jwt.ParseRSAPrivateKeyFromPEM(b)
		j.privateKey = key
		return err
	})
	if err != nil {
		return nil, err
	}

	err = loadPEM("JWT_PUBLIC_KEY", "JWT_PUBLIC_KEY_FILE", func(b []byte) error {
		key, err := jwt.ParseRSAPublicKeyFromPEM(b)
		j.publicKey = key
		return err
	})
	if err != nil {
		return nil, err
	}

	return j, nil
}

func (j *JWT) TokenLifetime() time.Duration {
	return j.tokenLifetime
}

func (j *JWT) Sign(deviceID string) (string, error) {
	claims := &DeviceClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.privateKey)
}

func (j *JWT) ParseDeviceID(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&DeviceClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return j.publicKey, nil
		},
	)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*DeviceClaims)
	if !ok || claims.DeviceID == "" {
		return "", fmt.Errorf("malformed device claims")
	}
	return claims.DeviceID, nil
}
