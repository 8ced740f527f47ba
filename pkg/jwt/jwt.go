package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims del token emitido por el servicio de identidad. CompanyID define el tenant de toda la petición;
// Role alimenta el RBAC sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"` // "admin" | "bodeguero" | "vendedor"
}

var (
	ErrMissingSecret = errors.New("jwt: secret vacío")
	ErrMissingTenant = errors.New("jwt: token sin company_id")
)

// Verifier valida tokens HMAC de un emisor concreto. Este servicio no emite tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier con issuer vacío no exige el claim iss. leeway tolera desfase de reloj con el emisor.
func NewVerifier(secret, issuer string, leeway time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}, nil
}

// Verify valida firma, expiración y emisor y devuelve los claims. Un token sin company_id se rechaza
// con ErrMissingTenant. Si falta user_id se toma el subject.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("jwt: claims inválidos")
	}
	if claims.CompanyID == "" {
		return nil, ErrMissingTenant
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}
