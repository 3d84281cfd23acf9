package connectwise

import (
	"context"
	"net/http"
	"time"
)

//go:generate mockgen -destination=mock_connectwise.go -package=connectwise github.com/dmhtech/assetsync/pkg/sync/integrations/connectwise HTTPClient,TokenProvider,Authenticator

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenProvider defines the interface for obtaining access tokens.
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
	InvalidateToken()
}

// Authenticator performs the actual credential exchange for a new token.
type Authenticator interface {
	Authenticate(ctx context.Context) (token string, expiresIn time.Duration, err error)
}
