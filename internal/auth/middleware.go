package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-shop/internal/domain"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// StaffReader loads the staff member behind a token.
type StaffReader interface {
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
}

// Principal represents the authenticated caller.
type Principal struct {
	SubjectType domain.SubjectType
	// ActorID is recorded on audit entries and notifications.
	ActorID string
	Staff   *domain.StaffMember
	Role    domain.StaffRole
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens        *TokenManager
	staff         StaffReader
	systemActorID string
}

// NewAuthMiddleware constructs middleware. Tokens with the system subject act
// as systemActorID with the admin role.
func NewAuthMiddleware(tokens *TokenManager, staff StaffReader, systemActorID string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, staff: staff, systemActorID: systemActorID}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{SubjectType: claims.Subject}

	switch claims.Subject {
	case domain.SubjectTypeStaff:
		staff, err := m.staff.GetByID(c.UserContext(), claims.SubjectID())
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("staff not found")
			}
			return apperrors.MapError(err)
		}
		if !staff.Active {
			return apperrors.NewUnauthorized("staff account inactive")
		}
		principal.Staff = staff
		principal.ActorID = staff.ID
		principal.Role = staff.Role
	case domain.SubjectTypeSystem:
		principal.ActorID = m.systemActorID
		principal.Role = domain.StaffRoleAdmin
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	SetPrincipal(c, principal)
	return c.Next()
}

// SetPrincipal stores the authenticated entity on the request.
func SetPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
