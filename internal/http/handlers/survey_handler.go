// Survey HTTP handlers.
//
// This file exposes REST endpoints for survey resources:
//   - GET  /surveys               (list, paginated; marks answered surveys)
//   - GET  /surveys/search        (full-text search over names and questions)
//   - GET  /surveys/:id           (survey with entries, own response, buckets)
//   - POST /surveys               (create)
//   - POST /surveys/:id/renumber  (owner-only order compaction)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/utils"
)

//
// DTOs
//

// CreateSurveyRequest is the JSON payload for creating a survey.
type CreateSurveyRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=255" example:"Pets"`
	Description     string `json:"description" example:"What pets do you like?"`
	LongDescription string `json:"long_description"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListSurveysResponse wraps a page of surveys plus the viewer's own responses
// keyed by survey id (empty for anonymous viewers).
type ListSurveysResponse struct {
	Surveys    []domain.Survey          `json:"surveys"`
	Responses  map[uint]domain.Response `json:"responses,omitempty"`
	Pagination Pagination               `json:"pagination"`
}

// SearchSurveysResponse wraps ranked search hits for a query.
type SearchSurveysResponse struct {
	Query   string          `json:"query"`
	Surveys []domain.Survey `json:"surveys"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// uintParam parses a positive integer path parameter, returning (0, false)
// when it is missing or malformed.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

//
// Handlers
//

// ListSurveys godoc
// @ID          listSurveys
// @Summary     List surveys (paginated)
// @Description Returns a page of surveys. Logged-in viewers also get their own responses keyed by survey id.
// @Tags        Surveys
// @Produce     json
//
// @Param       page       query  int  false  "Page number"    minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListSurveysResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /surveys [get]
func (h *Handlers) ListSurveys(c *gin.Context) {
	page, pageSize := clampPagination(c)

	list, err := h.surveySvc.List(c.Request.Context(), viewerID(c), page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}

	totalPages := int((list.Total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListSurveysResponse{
		Surveys:   list.Surveys,
		Responses: list.Responses,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      list.Total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// SearchSurveys godoc
// @ID          searchSurveys
// @Summary     Search surveys
// @Description Ranks surveys against the query by their name, description, and question texts.
// @Tags        Surveys
// @Produce     json
//
// @Param       q      query  string  true   "Search query"        example(pets)
// @Param       limit  query  int     false  "Maximum results"     minimum(1) maximum(50) default(10)
//
// @Success     200  {object}  handlers.SearchSurveysResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing query"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /surveys/search [get]
func (h *Handlers) SearchSurveys(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter q is required")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 10)
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	surveys, err := h.surveySvc.Search(c.Request.Context(), q, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, SearchSurveysResponse{Query: q, Surveys: surveys})
}

// GetSurvey godoc
// @ID          getSurvey
// @Summary     Get a survey
// @Description Returns the survey with its entries in display order. Viewers with their own response also get the friends and others response buckets; viewers without one get the compare target echoed back so the client can redirect after answering.
// @Tags        Surveys
// @Produce     json
//
// @Param       id       path   int  true   "Survey ID"
// @Param       compare  query  int  false  "Response the viewer was trying to open"
//
// @Success     200  {object}  services.SurveyView
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Survey not found"
// @Router      /surveys/{id} [get]
func (h *Handlers) GetSurvey(c *gin.Context) {
	id, okID := uintParam(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "survey id must be a positive integer")
		return
	}
	compare := uint(utils.AtoiDefault(c.Query("compare"), 0))

	view, err := h.surveySvc.Get(c.Request.Context(), id, viewerID(c), compare)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// CreateSurvey godoc
// @ID          createSurvey
// @Summary     Create a survey
// @Description Creates an empty survey owned by the current user. Names are unique.
// @Tags        Surveys
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateSurveyRequest  true  "Create survey payload"
//
// @Success     201  {object}  domain.Survey
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     409  {object}  handlers.ErrorResponse  "Name taken"
// @Router      /surveys [post]
func (h *Handlers) CreateSurvey(c *gin.Context) {
	var req CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sv, err := h.surveySvc.Create(c.Request.Context(), viewerID(c),
		strings.TrimSpace(req.Name), req.Description, req.LongDescription)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, sv)
}

// RenumberSurvey godoc
// @ID          renumberSurvey
// @Summary     Renumber a survey's entries
// @Description Rewrites all order keys to a compact ascending sequence, preserving display order. Owner only.
// @Tags        Surveys
// @Produce     json
//
// @Param       id  path  int  true  "Survey ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Survey not found"
// @Router      /surveys/{id}/renumber [post]
func (h *Handlers) RenumberSurvey(c *gin.Context) {
	id, okID := uintParam(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "survey id must be a positive integer")
		return
	}

	if err := h.orderSvc.Renumber(c.Request.Context(), id, viewerID(c)); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
