package api

import (
	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// credentialsKey is the gin context key holding resolved credentials
const credentialsKey = "credentials"

// CredentialResolver picks the provider credentials for a request
type CredentialResolver interface {
	Resolve(supplied credentials.Supplied) (credentials.Credentials, error)
}

// RequireCredentials resolves provider credentials from the request
// headers and rejects the request when none are usable
func RequireCredentials(resolver CredentialResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := credentials.FromHeaders(c.GetHeader)

		creds, err := resolver.Resolve(supplied)
		if err != nil {
			logger.FromContext(c).Warn("Credential resolution failed",
				"supplied", supplied,
				"error", err.Error(),
			)
			_ = c.Error(toAppError(err))
			c.Abort()
			return
		}

		c.Set(credentialsKey, creds)
		c.Next()
	}
}

// CredentialsFrom returns the credentials resolved for this request
func CredentialsFrom(c *gin.Context) (credentials.Credentials, bool) {
	v, ok := c.Get(credentialsKey)
	if !ok {
		return credentials.Credentials{}, false
	}
	creds, ok := v.(credentials.Credentials)
	return creds, ok
}
