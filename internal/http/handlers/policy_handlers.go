package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/consultsite/domain"
)

// PolicyHandlers lets admins inspect and edit the record policies
type PolicyHandlers struct {
	policies domain.PolicyService
}

// NewPolicyHandlers creates new policy handlers
func NewPolicyHandlers(policies domain.PolicyService) *PolicyHandlers {
	return &PolicyHandlers{policies: policies}
}

// PolicyRequest is one (subject, object, action) rule
type PolicyRequest struct {
	Sub string `json:"sub" binding:"required"`
	Obj string `json:"obj" binding:"required"`
	Act string `json:"act" binding:"required"`
}

// List handles GET /dashboard/admin/policies
func (h *PolicyHandlers) List(c *gin.Context) {
	respondData(c, http.StatusOK, h.policies.GetPolicies())
}

// Add handles POST /dashboard/admin/policies
func (h *PolicyHandlers) Add(c *gin.Context) {
	var r PolicyRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.policies.AddPolicy(r.Sub, r.Obj, r.Act); err != nil {
		respondRecordError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /dashboard/admin/policies
func (h *PolicyHandlers) Remove(c *gin.Context) {
	var r PolicyRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.policies.RemovePolicy(r.Sub, r.Obj, r.Act); err != nil {
		respondRecordError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
