package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"running-rooms-backend/internal/model"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /register.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.auth.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, err, "Error registering user")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login handles POST /login.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err, "Error logging in user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "username": user.Username},
	})
}

// RegisterAdmin handles POST /admin/register.
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.auth.RegisterAdmin(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Admin registered successfully"})
}

// AdminLogin handles POST /admin/login. Credentials are only checked when
// admin verification is enabled.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	token, err := h.auth.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if statusFor(err) == http.StatusBadRequest {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
			return
		}
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "adminToken": token})
}

// GetAllUsers handles GET /getallusers.
func (h *Handler) GetAllUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error fetching users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, users)
}
