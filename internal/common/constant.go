package common

// OwnerIDHeaderName is the HTTP header carrying the already-authenticated
// owner identifier, set by the authentication layer in front of this
// service.
const OwnerIDHeaderName = "X-User-ID"
