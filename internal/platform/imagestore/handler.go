package imagestore

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/platform/auth"
	"github.com/clinicbook/clinicbook/pkg/api"
)

// Handler provides Echo HTTP handlers for profile image operations.
type Handler struct {
	store    Store
	maxBytes int64
}

func NewHandler(store Store, maxBytes int64) *Handler {
	return &Handler{store: store, maxBytes: maxBytes}
}

// RegisterRoutes mounts image routes. Download is public so profile pictures
// can render without a session; upload and delete require authentication.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.GET("/images/download/image/:userId", h.Download)
	authed.POST("/images/upload", h.Upload)
	authed.DELETE("/images/image/:userId", h.Delete)
}

func (h *Handler) Upload(c echo.Context) error {
	userID, err := auth.SubjectID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrMissingImage.Error())
	}
	if !AllowedContentTypes[file.Header.Get("Content-Type")] {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, ErrInvalidImageType.Error())
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read uploaded file")
	}
	if int64(len(data)) > h.maxBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, ErrImageTooLarge.Error())
	}

	img := &ProfileImage{
		UserID:      userID,
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}
	if err := h.store.Save(c.Request().Context(), img); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, api.New("image uploaded", img))
}

func (h *Handler) Download(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	img, err := h.store.Load(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, ErrImageNotFound.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, img.FileName))
	return c.Blob(http.StatusOK, img.ContentType, img.Data)
}

func (h *Handler) Delete(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	ctx := c.Request().Context()
	subject, err := auth.SubjectID(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	// Users can only remove their own image; admins can remove any.
	if subject != userID && auth.RoleFromContext(ctx) != auth.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "cannot delete another user's image")
	}

	if err := h.store.Delete(ctx, userID); err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, ErrImageNotFound.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, api.New("image deleted", nil))
}
