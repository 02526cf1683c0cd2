package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	defaults "github.com/rarecask/leadtrack-go/config"
	"github.com/rarecask/leadtrack-go/utils"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenLifetime = 24 * time.Hour

// LoginHandler handles admin authentication. The bcrypt hash is preferred;
// the plaintext comparison exists for local development only.
func LoginHandler(c *gin.Context) {
	var loginReq struct {
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if !checkAdminPassword(loginReq.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateAdminToken(defaults.JWTSecret, adminTokenLifetime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	c.SetCookie(
		"admin_auth",
		token,
		int(adminTokenLifetime.Seconds()),
		"/",
		"",    // domain (empty for current domain)
		false, // secure (set to true in production with HTTPS)
		true,  // httpOnly
	)

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"role":   "admin",
		"token":  token,
	})
}

func checkAdminPassword(password string) bool {
	if defaults.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(defaults.AdminPasswordHash), []byte(password)) == nil
	}
	return defaults.AdminPassword != "" && password == defaults.AdminPassword
}
