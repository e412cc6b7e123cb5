package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"mailagent/internal/knowledge"
	"mailagent/internal/models"

	"github.com/labstack/echo/v4"
)

// KnowledgeSearchHandler runs a similarity search over the knowledge base
// @Summary Search knowledge base
// @Tags knowledge
// @Produce json
// @Param q query string true "Query text"
// @Param k query int false "Number of results"
// @Success 200 {object} models.KnowledgeSearchResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/knowledge/search [get]
func KnowledgeSearchHandler(store *knowledge.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		query := strings.TrimSpace(c.QueryParam("q"))
		if query == "" {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{
				Message: "Query parameter q is required",
			})
		}

		limit := 0
		if k := c.QueryParam("k"); k != "" {
			parsed, err := strconv.Atoi(k)
			if err != nil || parsed <= 0 {
				return c.JSON(http.StatusBadRequest, models.MessageResponse{
					Message: "Parameter k must be a positive integer",
				})
			}
			limit = parsed
		}

		results, err := store.Search(c.Request().Context(), query, limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Search failed",
				Error:   err.Error(),
			})
		}

		return c.JSON(http.StatusOK, models.KnowledgeSearchResponse{
			Query:   query,
			Results: results,
		})
	}
}

// KnowledgeInfoHandler describes the knowledge collection
// @Summary Knowledge collection info
// @Tags knowledge
// @Produce json
// @Success 200 {object} models.KnowledgeInfoResponse
// @Router /api/knowledge/info [get]
func KnowledgeInfoHandler(store *knowledge.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := models.KnowledgeInfoResponse{
			CollectionName: store.Collection(),
		}

		count, err := store.Count(c.Request().Context())
		if err != nil {
			response.Error = err.Error()
			return c.JSON(http.StatusOK, response)
		}
		response.TotalChunks = count
		return c.JSON(http.StatusOK, response)
	}
}

// KnowledgeAddHandler ingests bulk text into the knowledge base
// @Summary Add knowledge
// @Description Splits the text into chunks, embeds and stores them
// @Tags knowledge
// @Accept json
// @Produce json
// @Param request body models.KnowledgeAddRequest true "Knowledge text"
// @Success 201 {object} models.KnowledgeAddResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/knowledge [post]
func KnowledgeAddHandler(store *knowledge.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.KnowledgeAddRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{
				Message: "Invalid request body",
				Error:   err.Error(),
			})
		}
		if strings.TrimSpace(req.Text) == "" {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{
				Message: "Text is required",
			})
		}

		count, err := store.AddDocument(c.Request().Context(), req.Text)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Failed to add knowledge",
				Error:   err.Error(),
			})
		}

		return c.JSON(http.StatusCreated, models.KnowledgeAddResponse{ChunksAdded: count})
	}
}
