package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/http/middleware"
)

// DashboardHandlers serves the signed-in area
type DashboardHandlers struct {
	profiles domain.ProfileService
	chats    domain.ChatService
}

// NewDashboardHandlers creates new dashboard handlers
func NewDashboardHandlers(profiles domain.ProfileService, chats domain.ChatService) *DashboardHandlers {
	return &DashboardHandlers{profiles: profiles, chats: chats}
}

// ProfileRequest is the editable part of the account profile
type ProfileRequest struct {
	FullName string `json:"full_name"`
	Company  string `json:"company"`
	Email    string `json:"email"`
}

// ChatRequest creates a chat
type ChatRequest struct {
	Title string `json:"title"`
}

// Overview handles GET /dashboard
func (h *DashboardHandlers) Overview(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "sign in required")
		return
	}

	user := gin.H{"id": session.UserID, "role": session.Role}
	if session.User != nil {
		user["phone"] = session.User.Phone
	}
	respondData(c, http.StatusOK, gin.H{
		"user":               user,
		"session_expires_at": session.ExpiresAt,
	})
}

// Account handles GET /dashboard/account. Admins may pass ?user_id= to
// read another user's profile.
func (h *DashboardHandlers) Account(c *gin.Context) {
	actor, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "sign in required")
		return
	}
	target, ok := middleware.TargetUserID(c, "query", "user_id", actor.UserID)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid user_id")
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), actor, target)
	if err != nil {
		respondRecordError(c, err)
		return
	}
	respondData(c, http.StatusOK, profileJSON(profile))
}

// UpdateAccount handles POST /dashboard/account
func (h *DashboardHandlers) UpdateAccount(c *gin.Context) {
	actor, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "sign in required")
		return
	}
	target, ok := middleware.TargetUserID(c, "query", "user_id", actor.UserID)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid user_id")
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), actor, &domain.Profile{
		UserID:   target,
		FullName: req.FullName,
		Company:  req.Company,
		Email:    req.Email,
	})
	if err != nil {
		respondRecordError(c, err)
		return
	}
	respondData(c, http.StatusOK, profileJSON(profile))
}

// Chats handles GET /dashboard/chats
func (h *DashboardHandlers) Chats(c *gin.Context) {
	actor, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "sign in required")
		return
	}

	chats, err := h.chats.List(c.Request.Context(), actor)
	if err != nil {
		respondRecordError(c, err)
		return
	}

	out := make([]gin.H, 0, len(chats))
	for _, chat := range chats {
		out = append(out, chatJSON(chat))
	}
	respondData(c, http.StatusOK, out)
}

// CreateChat handles POST /dashboard/chats
func (h *DashboardHandlers) CreateChat(c *gin.Context) {
	actor, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "sign in required")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	chat, err := h.chats.Create(c.Request.Context(), actor, req.Title)
	if err != nil {
		respondRecordError(c, err)
		return
	}
	respondData(c, http.StatusCreated, chatJSON(chat))
}

// DeleteChat handles DELETE /dashboard/chats/:id
func (h *DashboardHandlers) DeleteChat(c *gin.Context) {
	actor, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "sign in required")
		return
	}

	if err := h.chats.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondRecordError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func profileJSON(p *domain.Profile) gin.H {
	return gin.H{
		"user_id":   p.UserID,
		"full_name": p.FullName,
		"company":   p.Company,
		"email":     p.Email,
		"phone":     p.Phone,
	}
}

func chatJSON(chat *domain.Chat) gin.H {
	return gin.H{
		"id":         chat.ID,
		"title":      chat.Title,
		"created_at": chat.CreatedAt,
	}
}
