package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Argor01/OkoZnaniy-sub001/internal/dto"
	"github.com/Argor01/OkoZnaniy-sub001/internal/http/handlers/common"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/service"
)

// ClaimHandler обслуживает маршруты претензий.
type ClaimHandler struct {
	claims *service.ClaimService
}

// NewClaimHandler создаёт новый хэндлер.
func NewClaimHandler(claims *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

// CreateClaim обрабатывает POST /api/claims.
func (h *ClaimHandler) CreateClaim(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	var req dto.CreateClaimRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	claim, err := h.claims.CreateClaim(c.Request.Context(), userID, service.CreateClaimInput{
		OrderID:        req.OrderID,
		Category:       req.Category,
		OrderRelevance: req.OrderRelevance,
		RefundType:     req.RefundType,
		Subject:        req.Subject,
		Description:    req.Description,
		AttachmentIDs:  req.AttachmentIDs,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

// ListMyClaims обрабатывает GET /api/claims/my.
func (h *ClaimHandler) ListMyClaims(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	limit, offset := common.GetPagination(c)
	claims, err := h.claims.ListMyClaims(c.Request.Context(), userID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": claims})
}
