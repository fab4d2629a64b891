package model

import (
	"github.com/go-playground/validator/v10"
)

type AchievementSize string

const (
	SizeS AchievementSize = "S"
	SizeM AchievementSize = "M"
	SizeL AchievementSize = "L"
)

func (s AchievementSize) IsValid() bool {
	switch s {
	case SizeS, SizeM, SizeL:
		return true
	}
	return false
}

type AchievementType string

const (
	TypeFeature         AchievementType = "Feature"
	TypeDevEx           AchievementType = "DevEx"
	TypeBug             AchievementType = "Bug"
	TypeSelfImprovement AchievementType = "Self-improvement"
)

func (t AchievementType) IsValid() bool {
	switch t {
	case TypeFeature, TypeDevEx, TypeBug, TypeSelfImprovement:
		return true
	}
	return false
}

// AchievementItem 成就条目，嵌入在成就组中，没有独立 ID
// swagger:model
type AchievementItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Size        AchievementSize `json:"size"`
	Type        AchievementType `json:"type"`
}

// AchievementGroup 成就组，按用户隔离存储
// swagger:model
type AchievementGroup struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	CreatedAt    int64             `json:"createdAt"`
	Achievements []AchievementItem `json:"achievements"`
}

// AchievementItemRequest is the wire form of an item. Every field must be present;
// description may be the empty string.
// swagger:model AchievementItemRequest
type AchievementItemRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description" binding:"required"`
	Size        AchievementSize `json:"size" binding:"required,achievement_size"`
	Type        AchievementType `json:"type" binding:"required,achievement_type"`
}

func (r AchievementItemRequest) Item() AchievementItem {
	item := AchievementItem{Name: r.Name, Size: r.Size, Type: r.Type}
	if r.Description != nil {
		item.Description = *r.Description
	}
	return item
}

// swagger:model CreateAchievementGroupRequest
type CreateAchievementGroupRequest struct {
	Name         string                   `json:"name" binding:"required"`
	Description  *string                  `json:"description" binding:"required"`
	Achievements []AchievementItemRequest `json:"achievements" binding:"required,dive"`
}

// UpdateAchievementGroupRequest carries a partial update. A nil field was not sent.
// id and createdAt have no field here, so they are dropped while decoding.
// swagger:model UpdateAchievementGroupRequest
type UpdateAchievementGroupRequest struct {
	Name         *string                  `json:"name" binding:"omitempty,min=1"`
	Description  *string                  `json:"description"`
	Achievements []AchievementItemRequest `json:"achievements" binding:"omitempty,dive"`
}

// IsEmpty reports whether the patch names no field at all.
func (r UpdateAchievementGroupRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Achievements == nil
}

func ItemsFromRequests(reqs []AchievementItemRequest) []AchievementItem {
	items := make([]AchievementItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, r.Item())
	}
	return items
}

// UserProfile 当前登录用户信息 (/api/me)
// swagger:model
type UserProfile struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RegisterValidations adds the achievement_size and achievement_type tags to v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("achievement_size", func(fl validator.FieldLevel) bool {
		return AchievementSize(fl.Field().String()).IsValid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("achievement_type", func(fl validator.FieldLevel) bool {
		return AchievementType(fl.Field().String()).IsValid()
	})
}

// NewValidator returns a validator that reads the same binding tags gin uses.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}
