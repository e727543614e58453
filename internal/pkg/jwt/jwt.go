package jwt

import (
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Access tokens are issued by the identity service that shares the secret.
// GenerateAccessToken exists for tooling and tests.
type Service interface {
	GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     principal.UserID,
		"employee_id": returnValueOrNil(principal.EmployeeID),
		"store_id":    returnValueOrNil(principal.StoreID),
		"role":        string(principal.Role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// PrincipalFromClaims reads the caller from verified access token claims.
func PrincipalFromClaims(claims map[string]interface{}) (user.Principal, error) {
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return user.Principal{}, user.ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return user.Principal{}, user.ErrInvalidToken
	}
	employeeID, _ := claims["employee_id"].(string)
	storeID, _ := claims["store_id"].(string)
	role, _ := claims["role"].(string)

	return user.Principal{
		UserID:     userID,
		EmployeeID: employeeID,
		StoreID:    storeID,
		Role:       user.Role(role),
	}, nil
}

func returnValueOrNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	// SSE tokens are short-lived (5 minutes)
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    "sse",
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the user ID
func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "sse" {
		return "", user.ErrInvalidToken
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", user.ErrInvalidToken
	}

	userID, ok = userIDVal.(string)
	if !ok || userID == "" {
		return "", user.ErrInvalidToken
	}

	return userID, nil
}
