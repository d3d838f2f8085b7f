package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"supply_order_back_end/internal/cache"
)

const (
	LoginMaxAttempts = 5
	LoginCooldown    = 15 * time.Minute

	APIMaxRequests = 120 // par minute et par IP
	APIWindow      = time.Minute
)

// LoginRateLimit bloque une IP après LoginMaxAttempts échecs de connexion admin
func LoginRateLimit(client *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		ip := c.ClientIP()
		key := "login_attempts:" + ip
		cooldownKey := "login_cooldown:" + ip

		if ttl := client.TTL(ctx, cooldownKey).Val(); ttl > 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			attempts, err := cache.IncrementRateLimit(ctx, client, key, LoginCooldown)
			if err != nil {
				log.Printf("⚠️ Compteur de connexions indisponible: %v", err)
				return
			}
			if attempts >= LoginMaxAttempts {
				client.Set(ctx, cooldownKey, "1", LoginCooldown)
				client.Del(ctx, key)
			}
		case http.StatusOK:
			client.Del(ctx, key, cooldownKey)
		}
	}
}

// APIRateLimit limite le nombre de requêtes par IP
func APIRateLimit(limiter *cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("⚠️ Limiteur indisponible: %v", err)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(APIWindow.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Trop de requêtes"})
			return
		}
		c.Next()
	}
}
