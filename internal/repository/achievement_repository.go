package repository

import (
	"achievements_tracker_backend/internal/docstore"
	"achievements_tracker_backend/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// 文档字段名
const (
	fieldName         = "name"
	fieldDescription  = "description"
	fieldCreatedAt    = "createdAt"
	fieldAchievements = "achievements"
)

// LegacyScope is the flat collection used before groups were stored per user.
const LegacyScope docstore.Scope = "achievements"

// UserScope returns the collection holding uid's groups: users/{uid}/achievements.
func UserScope(uid string) docstore.Scope {
	return docstore.Join("users", url.PathEscape(uid), "achievements")
}

// GroupPatch lists the fields an update replaces. Nil means keep.
type GroupPatch struct {
	Name         *string
	Description  *string
	Achievements []model.AchievementItem
}

// VersionedGroup is a group together with the store version it was read at.
type VersionedGroup struct {
	Group   model.AchievementGroup
	Version int64
}

type AchievementGroupRepository struct {
	Store docstore.Store
}

func NewAchievementGroupRepository(store docstore.Store) *AchievementGroupRepository {
	return &AchievementGroupRepository{Store: store}
}

func (r *AchievementGroupRepository) List(ctx context.Context, uid string) ([]model.AchievementGroup, error) {
	docs, err := r.Store.List(ctx, UserScope(uid))
	if err != nil {
		return nil, err
	}
	groups := make([]model.AchievementGroup, 0, len(docs))
	for i := range docs {
		group, err := DecodeGroup(&docs[i])
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}
	return groups, nil
}

// Get returns docstore.ErrNotFound when id is not in uid's scope.
func (r *AchievementGroupRepository) Get(ctx context.Context, uid, id string) (*VersionedGroup, error) {
	doc, err := r.Store.Get(ctx, UserScope(uid), id)
	if err != nil {
		return nil, err
	}
	group, err := DecodeGroup(doc)
	if err != nil {
		return nil, err
	}
	return &VersionedGroup{Group: *group, Version: doc.Version}, nil
}

// Create stores group under uid and fills in the id assigned by the store.
func (r *AchievementGroupRepository) Create(ctx context.Context, uid string, group *model.AchievementGroup) error {
	fields, err := EncodeGroup(group)
	if err != nil {
		return err
	}
	doc, err := r.Store.Add(ctx, UserScope(uid), fields)
	if err != nil {
		return err
	}
	group.ID = doc.ID
	return nil
}

// Update writes patch only if the stored version still equals version.
func (r *AchievementGroupRepository) Update(ctx context.Context, uid, id string, patch GroupPatch, version int64) (*model.AchievementGroup, error) {
	fields, err := encodePatch(patch)
	if err != nil {
		return nil, err
	}
	doc, err := r.Store.Update(ctx, UserScope(uid), id, fields, version)
	if err != nil {
		return nil, err
	}
	return DecodeGroup(doc)
}

func (r *AchievementGroupRepository) Delete(ctx context.Context, uid, id string) (bool, error) {
	return r.Store.Delete(ctx, UserScope(uid), id)
}

func (r *AchievementGroupRepository) Ping(ctx context.Context) error {
	return r.Store.Ping(ctx)
}

func encodeField(fields docstore.Fields, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	fields[key] = raw
	return nil
}

// EncodeGroup converts a group to document fields. The id is not a field; it is the
// document's identity.
func EncodeGroup(group *model.AchievementGroup) (docstore.Fields, error) {
	items := group.Achievements
	if items == nil {
		items = []model.AchievementItem{}
	}
	fields := docstore.Fields{}
	if err := encodeField(fields, fieldName, group.Name); err != nil {
		return nil, err
	}
	if err := encodeField(fields, fieldDescription, group.Description); err != nil {
		return nil, err
	}
	if err := encodeField(fields, fieldCreatedAt, group.CreatedAt); err != nil {
		return nil, err
	}
	if err := encodeField(fields, fieldAchievements, items); err != nil {
		return nil, err
	}
	return fields, nil
}

func encodePatch(patch GroupPatch) (docstore.Fields, error) {
	fields := docstore.Fields{}
	if patch.Name != nil {
		if err := encodeField(fields, fieldName, *patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		if err := encodeField(fields, fieldDescription, *patch.Description); err != nil {
			return nil, err
		}
	}
	if patch.Achievements != nil {
		if err := encodeField(fields, fieldAchievements, patch.Achievements); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// DecodeGroup builds a group from a stored document. Missing fields decode to zero
// values and a missing achievements list to an empty one.
func DecodeGroup(doc *docstore.Document) (*model.AchievementGroup, error) {
	group := &model.AchievementGroup{ID: doc.ID}
	targets := map[string]interface{}{
		fieldName:         &group.Name,
		fieldDescription:  &group.Description,
		fieldCreatedAt:    &group.CreatedAt,
		fieldAchievements: &group.Achievements,
	}
	for key, target := range targets {
		raw, ok := doc.Fields[key]
		if !ok || len(raw) == 0 || string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, fmt.Errorf("decode %s of %s: %w", key, doc.ID, err)
		}
	}
	if group.Achievements == nil {
		group.Achievements = []model.AchievementItem{}
	}
	return group, nil
}
