package common

// SessionCookieName is the cookie jar key holding the session credential.
const SessionCookieName = "authToken"

// AuthSliceName is the persisted state slice holding the auth session.
const AuthSliceName = "auth"

// AuthorizationHeaderName carries the bearer credential on outbound requests.
const AuthorizationHeaderName = "Authorization"
