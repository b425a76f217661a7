package documents

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

const (
	invalidPayloadMessage = "Invalid request payload"
	// multipart framing on top of the file itself
	maxThumbnailRequest = maxThumbnailSize + 1<<20
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches owner routes to owner (behind the auth gate) and
// anonymous read routes to public.
func (h *Handler) RegisterRoutes(owner, public *gin.RouterGroup) {
	owner.POST("/document/create", h.create)
	owner.GET("/document/all", h.listMine)
	owner.GET("/document/trash/all", h.listTrash)
	owner.PATCH("/document/update/:documentId", h.update)
	owner.GET("/document/:documentId", h.get)
	owner.POST("/document/:documentId/thumbnail", h.uploadThumbnail)
	owner.GET("/document/:documentId/thumbnail", h.thumbnail)

	public.GET("/document/public/doc/:documentId", h.getPublic)
	public.GET("/document/public/doc/:documentId/thumbnail", h.publicThumbnail)
}

func (h *Handler) create(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		respond.AuthenticationRequired(c)
		return
	}

	var in CreateDocumentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, err.Error())
		return
	}

	doc, err := h.Svc.Create(c.Request.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, err.Error())
		default:
			respond.Failure(c, http.StatusInternalServerError, "Failed to create document", err.Error())
		}
		return
	}

	c.Set("documentId", doc.DocumentID)
	respond.OK(c, doc)
}

func (h *Handler) listMine(c *gin.Context) {
	docs, err := h.Svc.ListMine(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, "Failed to fetch documents", err.Error())
		return
	}
	respond.OK(c, docs)
}

func (h *Handler) listTrash(c *gin.Context) {
	docs, err := h.Svc.ListTrash(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, "Failed to fetch documents", err.Error())
		return
	}
	respond.OK(c, docs)
}

func (h *Handler) get(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set("documentId", documentID)

	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			// a miss is still a success, just without data
			respond.OK(c, nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, err.Error())
		default:
			respond.Failure(c, http.StatusInternalServerError, "Failed to fetch document", err.Error())
		}
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) getPublic(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set("documentId", documentID)

	doc, err := h.Svc.GetPublic(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Unauthorized(c)
		default:
			respond.Failure(c, http.StatusInternalServerError, "Failed to fetch document", err.Error())
		}
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) update(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set("documentId", documentID)

	var in UpdateDocumentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, err.Error())
		return
	}

	res, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), documentID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Failure(c, http.StatusNotFound, "Document not found", "")
		case errors.Is(err, ErrInvalidInput):
			respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, err.Error())
		default:
			respond.Failure(c, http.StatusInternalServerError, "Failed to update document", err.Error())
		}
		return
	}

	if t := res.Transition(); t != "" {
		c.Set("statusTransition", t)
	}
	respond.OK(c, res.Document)
}

func (h *Handler) uploadThumbnail(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set("documentId", documentID)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxThumbnailRequest)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || c.Request.ContentLength > maxThumbnailRequest {
			respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, "file exceeds 5MB")
			return
		}
		respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, "file is required")
		return
	}
	if fileHeader.Size > maxThumbnailSize {
		respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, "file exceeds 5MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, "unable to read file")
		return
	}
	defer file.Close()

	userID := middleware.UserIDFromContext(c)
	if _, err := h.Svc.SetThumbnail(c.Request.Context(), userID, documentID, file); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Failure(c, http.StatusNotFound, "Document not found", "")
		case errors.Is(err, ErrInvalidInput):
			respond.Failure(c, http.StatusBadRequest, invalidPayloadMessage, err.Error())
		default:
			respond.Failure(c, http.StatusInternalServerError, "Failed to store thumbnail", err.Error())
		}
		return
	}

	doc, err := h.Svc.Get(c.Request.Context(), userID, documentID)
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, "Failed to fetch document", err.Error())
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) thumbnail(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set("documentId", documentID)

	rc, err := h.Svc.OpenThumbnail(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Failure(c, http.StatusNotFound, "Document not found", "")
		case errors.Is(err, ErrNoThumbnail):
			respond.Failure(c, http.StatusNotFound, "Thumbnail not found", "")
		default:
			respond.Failure(c, http.StatusInternalServerError, "Failed to fetch thumbnail", err.Error())
		}
		return
	}
	streamPNG(c, rc)
}

func (h *Handler) publicThumbnail(c *gin.Context) {
	documentID := c.Param("documentId")
	c.Set("documentId", documentID)

	rc, err := h.Svc.OpenPublicThumbnail(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Unauthorized(c)
		case errors.Is(err, ErrNoThumbnail):
			respond.Failure(c, http.StatusNotFound, "Thumbnail not found", "")
		default:
			respond.Failure(c, http.StatusInternalServerError, "Failed to fetch thumbnail", err.Error())
		}
		return
	}
	streamPNG(c, rc)
}

func streamPNG(c *gin.Context, rc io.ReadCloser) {
	defer rc.Close()
	c.Header("Cache-Control", "private, max-age=60")
	c.DataFromReader(http.StatusOK, -1, "image/png", rc, nil)
}
