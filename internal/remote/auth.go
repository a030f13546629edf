package remote

import (
	"github.com/google/go-containerregistry/pkg/authn"
)

// Authenticator provides credentials for the catalog registry.
type Authenticator interface {
	// Authenticate returns credentials for the given registry. Empty
	// credentials fall back to the default keychain.
	Authenticate(registry string) (username, password string, err error)
}

// StaticAuthenticator returns the same credentials for every registry.
type StaticAuthenticator struct {
	Username string
	Password string
}

// Authenticate implements Authenticator.
func (a StaticAuthenticator) Authenticate(string) (string, string, error) {
	return a.Username, a.Password, nil
}

func (c *OCICatalog) authenticator() authn.Authenticator {
	if c.auth != nil {
		username, password, err := c.auth.Authenticate(c.repo.RegistryStr())
		if err == nil && username != "" {
			return &authn.Basic{Username: username, Password: password}
		}
	}
	a, err := authn.DefaultKeychain.Resolve(c.repo)
	if err != nil {
		return authn.Anonymous
	}
	return a
}
