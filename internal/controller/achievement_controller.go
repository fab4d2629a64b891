package controller

import (
	"achievements_tracker_backend/internal/middleware"
	"achievements_tracker_backend/internal/model"
	"achievements_tracker_backend/internal/service"
	"achievements_tracker_backend/internal/util"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary 获取成就组列表
// @Description 返回当前用户的全部成就组，顺序由存储决定
// @Tags 成就组
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.AchievementGroup
// @Failure 401 {object} util.ErrorResponse "未授权"
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Router /api/achievements [get]
func (c *AchievementController) List(ctx *gin.Context) {
	userID, ok := middleware.RequireUser(ctx)
	if !ok {
		return
	}

	groups, err := c.AchievementService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, groups)
}

// @Summary 获取成就组详情
// @Tags 成就组
// @Produce json
// @Security BearerAuth
// @Param id path string true "成就组ID"
// @Success 200 {object} model.AchievementGroup
// @Failure 401 {object} util.ErrorResponse "未授权"
// @Failure 404 {object} util.ErrorResponse "成就组不存在"
// @Router /api/achievements/{id} [get]
func (c *AchievementController) Get(ctx *gin.Context) {
	userID, ok := middleware.RequireUser(ctx)
	if !ok {
		return
	}

	group, err := c.AchievementService.Get(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, group)
}

// @Summary 创建成就组
// @Description id 和 createdAt 由服务端生成
// @Tags 成就组
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CreateAchievementGroupRequest true "成就组"
// @Success 201 {object} model.AchievementGroup
// @Failure 400 {object} util.ErrorResponse "请求参数错误"
// @Failure 401 {object} util.ErrorResponse "未授权"
// @Router /api/achievements [post]
func (c *AchievementController) Create(ctx *gin.Context) {
	userID, ok := middleware.RequireUser(ctx)
	if !ok {
		return
	}

	var req model.CreateAchievementGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	group, err := c.AchievementService.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, group)
}

// @Summary 部分更新成就组
// @Description 只覆盖请求中出现的字段 (name / description / achievements)
// @Tags 成就组
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "成就组ID"
// @Param body body model.UpdateAchievementGroupRequest true "要更新的字段"
// @Success 200 {object} model.AchievementGroup
// @Failure 400 {object} util.ErrorResponse "请求参数错误"
// @Failure 404 {object} util.ErrorResponse "成就组不存在"
// @Failure 409 {object} util.ErrorResponse "并发修改冲突"
// @Router /api/achievements/{id} [patch]
func (c *AchievementController) Update(ctx *gin.Context) {
	userID, ok := middleware.RequireUser(ctx)
	if !ok {
		return
	}

	var req model.UpdateAchievementGroupRequest
	// 空请求体视为空补丁
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return
	}

	group, err := c.AchievementService.Update(ctx.Request.Context(), userID, ctx.Param("id"), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, group)
}

// @Summary 删除成就组
// @Tags 成就组
// @Security BearerAuth
// @Param id path string true "成就组ID"
// @Success 204 "删除成功"
// @Failure 404 {object} util.ErrorResponse "成就组不存在"
// @Router /api/achievements/{id} [delete]
func (c *AchievementController) Delete(ctx *gin.Context) {
	userID, ok := middleware.RequireUser(ctx)
	if !ok {
		return
	}

	deleted, err := c.AchievementService.Delete(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if !deleted {
		util.HandleServiceError(ctx, util.ErrAchievementNotFound)
		return
	}

	util.NoContent(ctx)
}

// @Summary 追加成就条目
// @Description 在成就组末尾追加一个条目
// @Tags 成就组
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "成就组ID"
// @Param body body model.AchievementItemRequest true "成就条目"
// @Success 201 {object} model.AchievementGroup
// @Failure 400 {object} util.ErrorResponse "请求参数错误"
// @Failure 404 {object} util.ErrorResponse "成就组不存在"
// @Failure 409 {object} util.ErrorResponse "并发修改冲突"
// @Router /api/achievements/{id}/items [post]
func (c *AchievementController) AppendItem(ctx *gin.Context) {
	userID, ok := middleware.RequireUser(ctx)
	if !ok {
		return
	}

	var req model.AchievementItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	group, err := c.AchievementService.AppendItem(ctx.Request.Context(), userID, ctx.Param("id"), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, group)
}
