package api

import (
	"encoding/json"

	"schoolcomm/client/internal/models"
)

// TargetInput is the outgoing dispatch address for announcement and
// media payloads.
type TargetInput struct {
	Type    models.TargetType
	GroupID int
	UserID  int
}

func GroupTarget(groupID int) TargetInput {
	return TargetInput{Type: models.TargetGroup, GroupID: groupID}
}

func UserTarget(userID int) TargetInput {
	return TargetInput{Type: models.TargetUser, UserID: userID}
}

func (t TargetInput) MarshalJSON() ([]byte, error) {
	out := map[string]any{"target_type": t.Type}
	switch t.Type {
	case models.TargetGroup:
		out["group_id"] = t.GroupID
	case models.TargetUser:
		out["user_id"] = t.UserID
	}
	return json.Marshal(out)
}

type groupSummaryDTO struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Grade   *string `json:"grade"`
	Section *string `json:"section"`
	Code    *string `json:"code"`
}

type userSummaryDTO struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	AvatarPath *string `json:"avatar_path"`
}

type authorDTO struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Role       *string `json:"role"`
	AvatarPath *string `json:"avatar_path"`
}

type targetDTO struct {
	ID         int               `json:"id"`
	TargetType models.TargetType `json:"target_type"`
	GroupID    *int              `json:"group_id"`
	UserID     *int              `json:"user_id"`
	Group      *groupSummaryDTO  `json:"group"`
	User       *userSummaryDTO   `json:"user"`
}

// mapTarget builds the variant from the target_type tag, never from
// which id happens to be present: the backend may embed the full group
// or user object instead.
func mapTarget(dto targetDTO) models.Target {
	target := models.Target{ID: dto.ID, Type: dto.TargetType}

	switch dto.TargetType {
	case models.TargetGroup:
		if dto.GroupID != nil {
			target.GroupID = *dto.GroupID
		}
		if dto.Group != nil {
			target.Group = &models.GroupSummary{
				ID:      dto.Group.ID,
				Name:    dto.Group.Name,
				Grade:   strval(dto.Group.Grade),
				Section: strval(dto.Group.Section),
				Code:    strval(dto.Group.Code),
			}
			if target.GroupID == 0 {
				target.GroupID = dto.Group.ID
			}
		}
	case models.TargetUser:
		if dto.UserID != nil {
			target.UserID = *dto.UserID
		}
		if dto.User != nil {
			target.User = &models.UserSummary{
				ID:         dto.User.ID,
				Name:       dto.User.Name,
				AvatarPath: strval(dto.User.AvatarPath),
			}
			if target.UserID == 0 {
				target.UserID = dto.User.ID
			}
		}
	}
	return target
}

func mapTargets(dtos []targetDTO) []models.Target {
	targets := make([]models.Target, 0, len(dtos))
	for _, dto := range dtos {
		targets = append(targets, mapTarget(dto))
	}
	return targets
}

func mapAuthor(dto authorDTO) models.AuthorSummary {
	return models.AuthorSummary{
		ID:         dto.ID,
		Name:       dto.Name,
		Role:       strval(dto.Role),
		AvatarPath: strval(dto.AvatarPath),
	}
}

func strval(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
