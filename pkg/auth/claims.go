package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ActorID   uuid.UUID
	Role      enums.ActorRole
	PartnerID *uuid.UUID
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. PartnerID is
// set only for partner-role actors and scopes their bid operations.
type AccessTokenClaims struct {
	ActorID   uuid.UUID       `json:"actor_id"`
	Role      enums.ActorRole `json:"role"`
	PartnerID *uuid.UUID      `json:"partner_id,omitempty"`
	jwt.RegisteredClaims
}
