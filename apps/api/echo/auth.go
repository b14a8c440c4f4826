package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config; initAuth
	// fills the signing key in before the server starts.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	authConf       *core.Config
	contextUserKey = "user"
)

func initAuth(conf *core.Config) {
	authConf = conf
	appJWTConfig.SigningKey = conf.SecretKey
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	SchoolID     string `json:"school_id,omitempty"`
	ClassID      string `json:"class_id,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

func (c Claims) IsSuperAdmin() bool { return c.Role == user.RoleSuperAdmin }
func (c Claims) IsStudent() bool    { return c.Role == user.RoleStudent }

func GetUserClaims(usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    authConf.AppName,
			Subject:   usr.ID,
			Audience:  "CampusFlow",
			ExpiresAt: now.Add(authConf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         usr.Name,
		Email:        usr.Email,
		Role:         usr.Role,
		SchoolID:     usr.SchoolID,
		ClassID:      usr.ClassID,
		IsAdmin:      usr.IsAdmin(),
	}
}

func authenticate(ctx context.Context, identifier, pwd string, svc user.Service) (*Claims, error) {
	usr, err := svc.Authenticate(ctx, identifier, pwd)
	if err != nil {
		return nil, err
	}
	return GetUserClaims(usr), nil
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func refreshToken(ctx echo.Context, svc user.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	usr, err := getContextUser(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	// check if user is still active
	if !usr.IsActive() {
		return "", user.ErrDiscontinued
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(authConf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetUserClaims(usr, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}

// adminMiddleware restricts an endpoint to administrative roles; passing
// roles narrows it further to any of those roles.
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return roleMiddleware(append(roles, user.RoleAdmin, user.RoleMasterAdmin, user.RoleSuperAdmin)...)
}

// roleMiddleware restricts an endpoint to the given roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

// scopeSchoolID resolves the school a request operates on. Everyone but
// superadmin is pinned to their own school; requesting another tenant's
// id reads as not-found.
func scopeSchoolID(claims Claims, requested string) (string, error) {
	if claims.IsSuperAdmin() {
		return requested, nil
	}
	if requested != "" && requested != claims.SchoolID {
		return "", errHttpNotFound
	}
	return claims.SchoolID, nil
}

// canAccessStudent reports whether the caller may read studentID's data.
// Staff see their own school's students; a student sees only themselves.
func canAccessStudent(ctx echo.Context, claims Claims, svc user.Service, studentID string) error {
	if claims.IsSuperAdmin() {
		return nil
	}
	if claims.IsStudent() {
		if claims.Subject != studentID {
			return errHttpNotFound
		}
		return nil
	}
	student, err := svc.GetByID(ctx.Request().Context(), studentID)
	if err != nil {
		return err
	}
	if student.SchoolID != claims.SchoolID {
		return errHttpNotFound
	}
	return nil
}
