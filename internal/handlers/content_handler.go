package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/anonto42/socialhub/backend/internal/middleware"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ContentHandler serves one content collection, posts or products.
type ContentHandler struct {
	contents *services.ContentService
	feed     *services.FeedService
}

func NewContentHandler(contents *services.ContentService, feed *services.FeedService) *ContentHandler {
	return &ContentHandler{contents: contents, feed: feed}
}

// RegisterPostRoutes mounts the post routes on g, which is expected to be /posts.
func (h *ContentHandler) RegisterPostRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/timeline", h.Timeline, auth)
	g.GET("/user/:id", h.ListByOwner)
	g.GET("/:postId", h.Get)
	g.GET("", h.ListAll)
	g.POST("", h.Create, auth)
	g.PUT("/:postId", h.Update, auth)
	g.DELETE("/:postId", h.Delete, auth)
	g.PUT("/:postId/like", h.Like, auth)
	g.PUT("/:postId/dislike", h.Dislike, auth)
	g.POST("/:postId/reviews", h.AddReview, auth)
	g.GET("/:postId/reviews", h.Reviews)
	g.GET("/:postId/rating", h.Rating)
}

// RegisterProductRoutes mounts the product routes on g, which is expected to be /products.
func (h *ContentHandler) RegisterProductRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/find/:postId", h.Get)
	g.GET("/find/userposts/:id", h.ListByOwner)
	g.GET("/timelineProductPosts", h.Timeline, auth)
	g.GET("/all", h.ListAll)
	g.POST("", h.Create, auth)
	g.PUT("/updateProductPost/:postId", h.Update, auth)
	g.DELETE("/deleteProductPost/:postId", h.Delete, auth)
	g.PUT("/likeProductPost/:postId", h.Like, auth)
	g.PUT("/dislikeProductPost/:postId", h.Dislike, auth)
	g.POST("/:postId/reviews", h.AddReview, auth)
	g.GET("/:postId/reviews", h.Reviews)
	g.GET("/:postId/rating", h.Rating)
}

func (h *ContentHandler) Create(c echo.Context) error {
	userID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}

	var req models.CreateContentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	content, err := h.contents.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, content)
}

func (h *ContentHandler) Get(c echo.Context) error {
	content, err := h.contents.GetByID(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content)
}

func (h *ContentHandler) ListByOwner(c echo.Context) error {
	items, err := h.contents.GetByOwner(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContentHandler) ListAll(c echo.Context) error {
	items, err := h.contents.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContentHandler) Update(c echo.Context) error {
	userID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}

	var req models.UpdateContentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	content, err := h.contents.Update(c.Request().Context(), c.Param("postId"), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content)
}

func (h *ContentHandler) Delete(c echo.Context) error {
	userID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.contents.Delete(c.Request().Context(), c.Param("postId"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": h.contents.Kind().Label() + " has been deleted"})
}

func (h *ContentHandler) Like(c echo.Context) error {
	userID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.contents.Like(c.Request().Context(), c.Param("postId"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": h.contents.Kind().Label() + " has been liked"})
}

func (h *ContentHandler) Dislike(c echo.Context) error {
	userID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.contents.Dislike(c.Request().Context(), c.Param("postId"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": h.contents.Kind().Label() + " has been disliked"})
}

func (h *ContentHandler) AddReview(c echo.Context) error {
	userID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}

	var req models.CreateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	content, err := h.contents.AddReview(c.Request().Context(), c.Param("postId"), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, content)
}

func (h *ContentHandler) Reviews(c echo.Context) error {
	reviews, err := h.contents.GetReviews(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ContentHandler) Rating(c echo.Context) error {
	avg, err := h.contents.GetAverageRating(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"averageRating": avg})
}

// Timeline returns the caller's full timeline, or a single page when a
// limit or cursor is given.
func (h *ContentHandler) Timeline(c echo.Context) error {
	userID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	rawLimit, rawCursor := c.QueryParam("limit"), c.QueryParam("cursor")
	if rawLimit == "" && rawCursor == "" {
		items, err := h.feed.Timeline(ctx, userID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, items)
	}

	var limit int64
	if rawLimit != "" {
		limit, err = strconv.ParseInt(rawLimit, 10, 64)
		if err != nil || limit < 1 {
			return apperrors.Validation("limit must be a positive integer")
		}
	}
	var after *models.TimelineCursor
	if rawCursor != "" {
		cursor, err := models.ParseTimelineCursor(rawCursor)
		if err != nil {
			return apperrors.Wrap(apperrors.KindValidation, "cursor must be a nextCursor value from a previous page", err)
		}
		after = &cursor
	}

	page, err := h.feed.TimelinePage(ctx, userID, after, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
