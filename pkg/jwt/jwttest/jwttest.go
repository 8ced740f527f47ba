// Package jwttest firma tokens como lo haría el servicio de identidad. Solo para tests.
package jwttest

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// Claims arma claims con emisión ahora y vencimiento en ttl (negativo para un token vencido).
func Claims(issuer, userID, companyID, role string, ttl time.Duration) pkgjwt.Claims {
	now := time.Now()
	return pkgjwt.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
}

// Sign firma claims con HS256.
func Sign(secret string, claims pkgjwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
