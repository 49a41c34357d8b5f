package common

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "id"

// RequestIDHeaderName is echoed on every HTTP response.
const RequestIDHeaderName = "X-Request-Id"
