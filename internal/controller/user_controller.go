package controller

import (
	"achievements_tracker_backend/internal/model"
	"achievements_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 返回当前登录用户的身份信息
type UserController struct{}

func NewUserController() *UserController {
	return &UserController{}
}

// Me godoc
// @Summary 当前用户
// @Description 直接取自已验证的令牌，不访问存储
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserProfile
// @Failure 401 {object} util.ErrorResponse "未授权"
// @Router /api/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, model.UserProfile{
		UID:   claims.UID(),
		Email: claims.Email,
		Name:  claims.Name,
	})
}
