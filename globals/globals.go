package globals

type ContextKey string

const (
	// UserIDKey carries the authenticated user's id through a request context.
	UserIDKey ContextKey = "userId"
	// TokenIDKey carries the jti of the presented token, used for revocation.
	TokenIDKey ContextKey = "tokenId"
)
