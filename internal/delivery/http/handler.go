package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/furnilens/backend/internal/domain"
	"github.com/furnilens/backend/internal/usecase"
)

const (
	serviceName    = "furnilens-backend"
	serviceVersion = "2.0.0"

	sessionQueryLimit = 5
)

// SearchUsecase answers search requests
type SearchUsecase interface {
	Search(ctx context.Context, request *domain.SearchRequest) (*domain.SearchResponse, error)
}

// SessionUsecase exposes per-session context
type SessionUsecase interface {
	Get(ctx context.Context, sessionID string) (*domain.SessionContext, error)
	Clear(ctx context.Context, sessionID string) (bool, error)
}

// AnalyticsUsecase exposes catalog statistics and suggestions
type AnalyticsUsecase interface {
	Analytics(ctx context.Context) (*domain.Analytics, error)
	Categories(ctx context.Context) ([]domain.NamedCount, error)
	Brands(ctx context.Context) ([]domain.NamedCount, error)
	Suggestions(ctx context.Context, category string) usecase.Suggestions
}

// Handler holds dependencies for HTTP handlers. Any of them may be nil,
// in which case the matching endpoints answer 503.
type Handler struct {
	search    SearchUsecase
	sessions  SessionUsecase
	analytics AnalyticsUsecase
	catalog   domain.CatalogProvider
}

// NewHandler creates a new HTTP handler
func NewHandler(
	search SearchUsecase,
	sessions SessionUsecase,
	analytics AnalyticsUsecase,
	catalog domain.CatalogProvider,
) *Handler {
	return &Handler{
		search:    search,
		sessions:  sessions,
		analytics: analytics,
		catalog:   catalog,
	}
}

func notConfigured(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"success": false,
		"error":   what + " not configured",
	})
}

// HealthCheck returns the health status of the API. It never triggers a catalog load.
func (h *Handler) HealthCheck(c *gin.Context) {
	loaded := false
	size := 0
	if h.catalog != nil && h.catalog.Loaded() {
		if catalog, err := h.catalog.Get(c.Request.Context()); err == nil {
			loaded = true
			size = catalog.Len()
		}
	}

	status := "healthy"
	if !loaded || size == 0 {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"service":        serviceName,
		"version":        serviceVersion,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"catalog_loaded": loaded,
		"catalog_size":   size,
	})
}

// Search handles product search requests
func (h *Handler) Search(c *gin.Context) {
	if h.search == nil {
		notConfigured(c, "Product search")
		return
	}

	var request domain.SearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Debug().Err(err).Msg("[HTTP] Invalid search request body")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid query",
			"message": "Please provide a valid search query with at least 2 characters.",
			"query":   request.Query,
		})
		return
	}

	response, err := h.search.Search(c.Request.Context(), &request)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid query",
				"message": "Please provide a valid search query with at least 2 characters.",
				"query":   request.Query,
			})
			return
		}
		log.Error().Err(err).Msgf("[HTTP] Search failed for %q", request.Query)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Search failed",
			"message": usecase.SearchFailedMessage,
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Suggestions returns example queries, popular categories and quick filters
func (h *Handler) Suggestions(c *gin.Context) {
	if h.analytics == nil {
		notConfigured(c, "Suggestions")
		return
	}
	c.JSON(http.StatusOK, h.analytics.Suggestions(c.Request.Context(), c.Query("category")))
}

// GetSession returns the recent queries and preferences of one session
func (h *Handler) GetSession(c *gin.Context) {
	if h.sessions == nil {
		notConfigured(c, "Sessions")
		return
	}

	sessionID := c.Param("id")
	session, err := h.sessions.Get(c.Request.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"session_id":       sessionID,
			"previous_queries": []string{},
			"preferences":      domain.Preferences{},
			"exists":           false,
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Msgf("[HTTP] Failed to read session %s", sessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to read session"})
		return
	}

	queries := session.PreviousQueries
	if len(queries) > sessionQueryLimit {
		queries = queries[len(queries)-sessionQueryLimit:]
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":       sessionID,
		"previous_queries": queries,
		"preferences":      session.Preferences,
		"last_updated":     session.LastUpdated,
		"exists":           true,
	})
}

// ClearSession deletes the context of one session
func (h *Handler) ClearSession(c *gin.Context) {
	if h.sessions == nil {
		notConfigured(c, "Sessions")
		return
	}

	sessionID := c.Param("id")
	cleared, err := h.sessions.Clear(c.Request.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Msgf("[HTTP] Failed to clear session %s", sessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to clear session"})
		return
	}

	if !cleared {
		c.JSON(http.StatusOK, gin.H{"message": "Session " + sessionID + " not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session " + sessionID + " cleared successfully"})
}

// Analytics returns catalog statistics
func (h *Handler) Analytics(c *gin.Context) {
	if h.analytics == nil {
		notConfigured(c, "Analytics")
		return
	}

	analytics, err := h.analytics.Analytics(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": analytics})
}

// Categories returns the primary category counts
func (h *Handler) Categories(c *gin.Context) {
	if h.analytics == nil {
		notConfigured(c, "Analytics")
		return
	}

	categories, err := h.analytics.Categories(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_categories": len(categories),
			"categories":       categories,
		},
	})
}

// Brands returns the brand counts
func (h *Handler) Brands(c *gin.Context) {
	if h.analytics == nil {
		notConfigured(c, "Analytics")
		return
	}

	brands, err := h.analytics.Brands(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_brands": len(brands),
			"brands":       brands,
		},
	})
}

func catalogError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrCatalogUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Catalog not loaded"})
		return
	}
	log.Error().Err(err).Msg("[HTTP] Analytics failed")
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Analytics failed"})
}
