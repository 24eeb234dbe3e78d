package service

import (
	"context"
)

// Identity is what a verified bearer token resolves to.
type Identity struct {
	UID   string
	Email string
	Phone string
}

type IdentityVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}
