package users

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches /me to a group behind the auth gate.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		respond.AuthenticationRequired(c)
		return
	}
	if h.Svc == nil {
		respond.Failure(c, http.StatusInternalServerError, "Failed to load user", "service unavailable")
		return
	}
	user, err := h.Svc.Profile(c.Request.Context(), id)
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, "Failed to load user", err.Error())
		return
	}
	respond.OK(c, gin.H{
		"userId":     user.ID,
		"email":      user.Email,
		"givenName":  user.GivenName,
		"familyName": user.FamilyName,
		"name":       strings.TrimSpace(user.GivenName + " " + user.FamilyName),
		"pictureUrl": user.PictureURL,
	})
}
