package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"supply_order_back_end/internal/utils"
)

// AdminAuth vérifie le jeton Bearer et place sujet et rôle dans le contexte gin
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token manquant"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Format Authorization invalide"})
			return
		}

		claims, err := utils.ParseJWT(secret, parts[1])
		if err != nil {
			log.Printf("❌ Jeton admin refusé: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token invalide"})
			return
		}

		subject, _ := claims.GetSubject()
		c.Set("admin_subject", subject)
		c.Set("role", claims["role"])
		c.Next()
	}
}

// RequireAdmin refuse toute requête dont le jeton ne porte pas le rôle admin
func RequireAdmin(c *gin.Context) {
	if role, _ := c.Get("role"); role != "admin" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Accès réservé aux administrateurs"})
		return
	}
	c.Next()
}
