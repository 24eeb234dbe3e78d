package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"civiq/internal/domain/service"
)

// AuthClient verifies Firebase ID tokens issued to the web and mobile clients.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

func (f *AuthClient) VerifyToken(ctx context.Context, token string) (*service.Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(result.UID, result.Claims), nil
}

func identityFromClaims(uid string, claims map[string]interface{}) *service.Identity {
	identity := &service.Identity{UID: uid}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if phone, ok := claims["phone_number"].(string); ok {
		identity.Phone = phone
	}
	return identity
}
