// Question HTTP handlers.
//
// This file exposes REST endpoints for question and heading placement:
//   - POST /questions              (append a question, flip pair, or heading)
//   - POST /questions/:id/:action  (move up, move down, or remove)
//
// Ordering semantics (sort keys, flip-pair adjacency, heading renumber
// offsets) live in the ordering service; handlers only translate HTTP.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/listoflists/go-survey-backend/internal/services"
)

// headingSentinel in the Heading field of an AddQuestionRequest marks the
// payload as a new heading rather than a question.
const headingSentinel = -2

// AddQuestionRequest is the JSON payload for appending an entry to a survey.
//
// Three shapes are accepted:
//   - Text only: a single question.
//   - Text and Text2: a flip pair; the two variants stay adjacent and move
//     together from then on.
//   - Heading == -2: Text is a new heading, Text2 and the extras are ignored.
//
// A positive Heading files the new question under that existing heading.
type AddQuestionRequest struct {
	SurveyID uint   `json:"survey_id" binding:"required" example:"1"`
	Section  string `json:"section" example:"mammals"`
	Text     string `json:"text" binding:"required,min=1" example:"dogs"`
	Extra    string `json:"extra"`
	Text2    string `json:"text2"`
	Extra2   string `json:"extra2"`
	Heading  int    `json:"heading"`
}

// AddQuestion godoc
// @ID          addQuestion
// @Summary     Add a question or heading
// @Description Appends a question (optionally a flip pair) or, with heading=-2, a new heading to a survey. Any logged-in user may add entries.
// @Tags        Questions
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.AddQuestionRequest  true  "Entry payload"
//
// @Success     201  {object}  domain.Question
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     404  {object}  handlers.ErrorResponse  "Survey or heading not found"
// @Router      /questions [post]
func (h *Handlers) AddQuestion(c *gin.Context) {
	var req AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text must not be empty")
		return
	}

	ctx := c.Request.Context()

	if req.Heading == headingSentinel {
		hd, err := h.orderSvc.AddHeading(ctx, req.SurveyID, text)
		if err != nil {
			failErr(c, err)
			return
		}
		ok(c, http.StatusCreated, hd)
		return
	}
	if req.Heading < 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "heading must be a heading id or -2")
		return
	}

	q, err := h.orderSvc.AddQuestion(ctx, services.AddQuestionInput{
		SurveyID:  req.SurveyID,
		Section:   strings.TrimSpace(req.Section),
		Text:      text,
		Extra:     req.Extra,
		FlipText:  strings.TrimSpace(req.Text2),
		FlipExtra: req.Extra2,
		HeadingID: uint(req.Heading),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, q)
}

// MoveQuestion godoc
// @ID          moveQuestion
// @Summary     Move or remove a question
// @Description Moves a question one display slot up or down, or removes it together with its answers. Flip pairs move as a unit. Owner only.
// @Tags        Questions
// @Produce     json
//
// @Param       id      path  int     true  "Question ID"
// @Param       action  path  string  true  "One of: up, down, remove"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Router      /questions/{id}/{action} [post]
func (h *Handlers) MoveQuestion(c *gin.Context) {
	id, okID := uintParam(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question id must be a positive integer")
		return
	}

	action := c.Param("action")
	switch action {
	case services.MoveUp, services.MoveDown, services.MoveRemove:
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action must be one of: up, down, remove")
		return
	}

	if err := h.orderSvc.Move(c.Request.Context(), id, action, viewerID(c)); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
