// Stats HTTP handler.
//
// GET /stats reports global row counts for every table. It is an operational
// endpoint, so it only answers to loopback clients; anyone else gets the
// same 404 as an unknown route.
package handlers

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// isLoopback reports whether the request came from the local host itself.
// Proxied deployments terminate at localhost, so forwarded headers are
// deliberately ignored here.
func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// GetStats godoc
// @ID          getStats
// @Summary     Global counts
// @Description Returns row counts for friendships, users, surveys, questions, headings, responses, and answers. Loopback clients only.
// @Tags        Stats
// @Produce     json
//
// @Success     200  {object}  repo.Stats
// @Failure     404  {object}  handlers.ErrorResponse  "Not served to remote clients"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	if !isLoopback(c.Request.RemoteAddr) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
		return
	}

	st, err := h.stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, st)
}
