package remote

import "github.com/monktastic/graphpipe-go/message"

// ServerError is an error reported by the server inside a response. It matches
// errs.ErrServer.
type ServerError = message.ServerError
