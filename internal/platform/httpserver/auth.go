package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	billingports "meridian/contexts/billing/customer-meter-service/ports"
	orgports "meridian/contexts/organizations/organization-service/ports"
)

// ErrInvalidToken is returned for a present but unverifiable bearer token.
// A missing header is not an error; it yields the anonymous principal.
var ErrInvalidToken = errors.New("invalid bearer token")

// Principal is the authenticated caller extracted from the request.
type Principal struct {
	ID             uuid.UUID
	Kind           string
	OrganizationID *uuid.UUID
}

// Authenticator verifies HS256 bearer tokens carrying `sub`, `kind` and
// `org_id` claims.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Principal resolves the caller of the request. Absent Authorization header
// means anonymous; a malformed or forged token is rejected.
func (a *Authenticator) Principal(r *http.Request) (Principal, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return Principal{Kind: "anonymous"}, nil
	}
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return Principal{}, fmt.Errorf("%w: authorization scheme must be Bearer", ErrInvalidToken)
	}

	token, err := jwt.Parse(strings.TrimSpace(tokenString), func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, fmt.Errorf("%w: unsupported claim type %T", ErrInvalidToken, token.Claims)
	}

	sub, _ := claims["sub"].(string)
	subjectID, err := uuid.Parse(sub)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: sub claim must be a uuid", ErrInvalidToken)
	}

	kind, _ := claims["kind"].(string)
	if kind != "user" && kind != "organization_token" {
		return Principal{}, fmt.Errorf("%w: kind claim must be user or organization_token", ErrInvalidToken)
	}

	principal := Principal{ID: subjectID, Kind: kind}
	if orgRaw, ok := claims["org_id"].(string); ok && orgRaw != "" {
		orgID, err := uuid.Parse(orgRaw)
		if err != nil {
			return Principal{}, fmt.Errorf("%w: org_id claim must be a uuid", ErrInvalidToken)
		}
		principal.OrganizationID = &orgID
	}
	if kind == "organization_token" && principal.OrganizationID == nil {
		return Principal{}, fmt.Errorf("%w: organization_token requires org_id", ErrInvalidToken)
	}
	return principal, nil
}

func (p Principal) orgCaller() orgports.Caller {
	return orgports.Caller{
		ID:             p.ID,
		Kind:           orgports.CallerKind(p.Kind),
		OrganizationID: p.OrganizationID,
	}
}

func (p Principal) billingCaller() billingports.Caller {
	return billingports.Caller{
		ID:             p.ID,
		Kind:           billingports.CallerKind(p.Kind),
		OrganizationID: p.OrganizationID,
	}
}
