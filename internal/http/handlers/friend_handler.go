// Friend HTTP handlers.
//
// This file exposes REST endpoints for mutual-confirmation friendships:
//   - GET    /friends            (confirmed friends plus pending both ways)
//   - POST   /friends            (request, or confirm a pending request)
//   - DELETE /friends/:username  (remove or withdraw)
//
// The same POST both requests and confirms: when the named user already has
// a request pending towards the caller, that request is confirmed in place.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// FriendRequest is the JSON payload naming the other account.
type FriendRequest struct {
	Username string `json:"username" binding:"required" example:"bob"`
}

// ListFriends godoc
// @ID          listFriends
// @Summary     List friendships
// @Description Returns confirmed friends and pending requests in both directions, as usernames.
// @Tags        Friends
// @Produce     json
//
// @Success     200  {object}  services.FriendsView
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Router      /friends [get]
func (h *Handlers) ListFriends(c *gin.Context) {
	view, err := h.friendSvc.List(c.Request.Context(), currentUser(c).Username)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// RequestFriend godoc
// @ID          requestFriend
// @Summary     Request or confirm a friendship
// @Description Sends a friend request to the named user, or confirms their pending request towards the caller. Repeating an existing request is a no-op.
// @Tags        Friends
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.FriendRequest  true  "The other account"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request / self-friendship"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     404  {object}  handlers.ErrorResponse  "No such user"
// @Router      /friends [post]
func (h *Handlers) RequestFriend(c *gin.Context) {
	var req FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.friendSvc.RequestOrConfirm(c.Request.Context(), currentUser(c).Username, strings.TrimSpace(req.Username))
	if err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// RemoveFriend godoc
// @ID          removeFriend
// @Summary     Remove a friendship
// @Description Deletes the friendship or pending request between the caller and the named user, whichever direction it points. Removing a non-friend is a no-op.
// @Tags        Friends
// @Produce     json
//
// @Param       username  path  string  true  "The other account"  example(bob)
//
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     404  {object}  handlers.ErrorResponse  "No such user"
// @Router      /friends/{username} [delete]
func (h *Handlers) RemoveFriend(c *gin.Context) {
	name := strings.TrimSpace(c.Param("username"))
	if name == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username required")
		return
	}

	if err := h.friendSvc.Remove(c.Request.Context(), currentUser(c).Username, name); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
