package owner

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dromero/barberbot/internal/handler"
	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/internal/repository"
	apperrors "github.com/dromero/barberbot/pkg/errors"
	"github.com/dromero/barberbot/pkg/validator"
)

type Handler struct {
	owners repository.OwnerRepository
}

func NewHandler(owners repository.OwnerRepository) *Handler {
	return &Handler{owners: owners}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/owner", h.GetOwner)
	r.PUT("/owner", h.UpdateOwner)
}

func (h *Handler) GetOwner(c *gin.Context) {
	owner, err := h.owners.Get(c.Request.Context())
	if err != nil {
		handler.RespondWithError(c, mapRepoError(err))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(owner))
}

func (h *Handler) UpdateOwner(c *gin.Context) {
	var req model.UpdateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest("invalid request body", err))
		return
	}

	if err := validator.Validate(&req); err != nil {
		handler.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	owner, err := h.owners.Get(c.Request.Context())
	if err != nil {
		handler.RespondWithError(c, mapRepoError(err))
		return
	}

	if err := h.owners.Update(c.Request.Context(), owner.ChatID, &req); err != nil {
		handler.RespondWithError(c, apperrors.NewInternal("failed to update owner", err))
		return
	}

	updated, err := h.owners.Get(c.Request.Context())
	if err != nil {
		handler.RespondWithError(c, apperrors.NewInternal("failed to reload owner", err))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("owner", err)
	}
	return apperrors.NewInternal("failed to load owner", err)
}
