package api

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rpupo63/taskmanager/errs"
)

// idParam parses the {id} route parameter. A malformed id cannot name an existing
// record, so it is reported as NotFound for entity.
func idParam(r *http.Request, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errs.NewNotFound(entity)
	}
	return id, nil
}

// clientIP is the caller's address without the port. Forwarding headers are only
// reflected here when RealIP is mounted, see Config.TrustProxyHeaders.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
