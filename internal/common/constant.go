package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer token
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName carries the client-generated correlation ID so that a
// failed call can be matched against server-side logs.
const RequestIDHeaderName = "X-Request-ID"
