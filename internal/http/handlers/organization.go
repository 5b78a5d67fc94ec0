package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/masterfoodbrokers/crm-backend/internal/http/response"
	"github.com/masterfoodbrokers/crm-backend/internal/repos"
	"github.com/masterfoodbrokers/crm-backend/internal/services"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

type OrganizationHandler struct {
	orgService services.OrganizationService
}

func NewOrganizationHandler(orgService services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// GET /api/organizations?kind=&priority=&q=&limit=&offset=
func (h *OrganizationHandler) List(c *gin.Context) {
	filter := repos.OrganizationFilter{
		Kind:     types.OrganizationKind(c.Query("kind")),
		Priority: types.OrganizationPriority(c.Query("priority")),
		Query:    c.Query("q"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("limit must be a non-negative integer"))
			return
		}
		filter.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("offset must be a non-negative integer"))
			return
		}
		filter.Offset = n
	}

	orgs, err := h.orgService.List(c.Request.Context(), filter)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "list_organizations_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"organizations": orgs})
}

// GET /api/organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid organization id"))
		return
	}

	detail, err := h.orgService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrOrganizationNotFound) {
			response.RespondError(c, http.StatusNotFound, "organization_not_found", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "get_organization_failed", err)
		return
	}
	response.RespondOK(c, detail)
}
