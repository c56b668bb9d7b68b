package providers

import (
	"context"
	"fmt"
)

// AuthProvider verifies identity tokens presented by clients.
type AuthProvider interface {
	VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error)
}

type TokenClaims struct {
	UID string `json:"uid"`
}

// New builds the provider named by kind. "none" returns a nil provider.
func New(ctx context.Context, kind string, firebaseProjectID string, firebaseAPIKey string) (AuthProvider, error) {
	switch kind {
	case "", "none":
		return nil, nil
	case "insecure":
		return NewInsecureAuthProvider(), nil
	case "firebase":
		p, err := NewFirebaseAuthProvider(ctx, firebaseProjectID, firebaseAPIKey)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown auth provider: %s", kind)
	}
}
