// Response HTTP handlers.
//
// This file exposes REST endpoints for survey responses:
//   - POST   /responses      (submit or overwrite the caller's response)
//   - GET    /responses/:id  (view a response, subject to visibility rules)
//   - DELETE /responses/:id  (withdraw the caller's response)
//
// Viewing another account's response requires that the caller has answered
// the same survey first. When they have not, GET answers 303 See Other and
// points at the survey with the desired response carried along as ?compare=,
// so the client can send the caller back after they submit their own.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listoflists/go-survey-backend/internal/http/middleware"
)

// SubmitResponseRequest is the JSON payload for submitting a response.
//
// Answers maps question id to a value in -2..2. Submitting again replaces
// the previous answers wholesale; there is no partial update. Privacy
// defaults to private when empty.
type SubmitResponseRequest struct {
	SurveyID uint         `json:"survey_id" binding:"required" example:"1"`
	Privacy  string       `json:"privacy" example:"friends"`
	Answers  map[uint]int `json:"answers" binding:"required"`
	Compare  uint         `json:"compare"`
}

// SubmitResponseResponse echoes the stored response and, when the submission
// was part of a compare flow, the response the client should land on next.
type SubmitResponseResponse struct {
	ResponseID uint `json:"response_id"`
	SurveyID   uint `json:"survey_id"`
	Compare    uint `json:"compare,omitempty"`
}

// SubmitResponse godoc
// @ID          submitResponse
// @Summary     Submit a response
// @Description Stores the caller's answers for a survey, replacing any previous submission. Values range -2..2.
// @Tags        Responses
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SubmitResponseRequest  true  "Answers payload"
//
// @Success     201  {object}  handlers.SubmitResponseResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request / invalid value or privacy"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     404  {object}  handlers.ErrorResponse  "Survey not found"
// @Router      /responses [post]
func (h *Handlers) SubmitResponse(c *gin.Context) {
	var req SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.surveySvc.Submit(c.Request.Context(), req.SurveyID, viewerID(c), req.Privacy, req.Answers)
	if err != nil {
		failErr(c, err)
		return
	}
	middleware.ResponsesSubmitted.WithLabelValues(resp.Privacy).Inc()

	ok(c, http.StatusCreated, SubmitResponseResponse{
		ResponseID: resp.ID,
		SurveyID:   resp.SurveyID,
		Compare:    req.Compare,
	})
}

// GetResponse godoc
// @ID          getResponse
// @Summary     View a response
// @Description Returns a response with its answers if the visibility rules allow it. Hidden responses come back with the owner withheld. Callers who have not answered the survey themselves are redirected to it.
// @Tags        Responses
// @Produce     json
//
// @Param       id  path  int  true  "Response ID"
//
// @Success     200  {object}  services.ResponseView
// @Success     303  {string}  string  "Answer the survey first; Location carries ?compare="
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found or not visible"
// @Router      /responses/{id} [get]
func (h *Handlers) GetResponse(c *gin.Context) {
	id, okID := uintParam(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "response id must be a positive integer")
		return
	}

	view, err := h.visSvc.VisibleResponse(c.Request.Context(), id, viewerID(c))
	if err != nil {
		failErr(c, err)
		return
	}

	if view.NeedsOwnResponse() {
		loc := fmt.Sprintf("/surveys/%d?compare=%d", view.SurveyID, view.CompareID)
		c.Header("Location", loc)
		c.JSON(http.StatusSeeOther, view)
		return
	}
	ok(c, http.StatusOK, view)
}

// DeleteResponse godoc
// @ID          deleteResponse
// @Summary     Withdraw a response
// @Description Deletes the caller's response and its answers. Deleting someone else's response, or one that does not exist, silently does nothing.
// @Tags        Responses
// @Produce     json
//
// @Param       id  path  int  true  "Response ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Router      /responses/{id} [delete]
func (h *Handlers) DeleteResponse(c *gin.Context) {
	id, okID := uintParam(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "response id must be a positive integer")
		return
	}

	if err := h.surveySvc.DeleteResponse(c.Request.Context(), id, viewerID(c)); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
