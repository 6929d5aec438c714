package handlers

import (
	"strconv"

	"github.com/chenlehua/tara-sub000/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// текущий пользователь из сессии
func currentUser(c *gin.Context) (uint, models.UserRole) {
	sess := sessions.Default(c)
	uid, _ := sess.Get("user_id").(uint)
	roleStr, _ := sess.Get("role").(string)
	return uid, models.UserRole(roleStr)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return uint(v), true
}
