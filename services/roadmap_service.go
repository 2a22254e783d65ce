package services

import (
	"context"
	"errors"
	"fmt"

	"coding-edu-platform/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type RoadmapService struct {
	DB          *gorm.DB
	Progression *ProgressionService // events only; roadmaps never grant XP
}

func NewRoadmapService(db *gorm.DB, progression *ProgressionService) *RoadmapService {
	return &RoadmapService{DB: db, Progression: progression}
}

// StepInput describes one step of a roadmap. Order defaults to the step's
// index in the submitted list.
type StepInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	ResourceURL string `json:"resource_url" validate:"omitempty,url"`
	Order       *int   `json:"order"`
	Completed   bool   `json:"completed"`
}

type CreateRoadmapInput struct {
	Title       string      `json:"title" validate:"required,min=3,max=200"`
	Description string      `json:"description"`
	IsPublic    *bool       `json:"is_public"`
	Steps       []StepInput `json:"steps" validate:"dive"`
}

type UpdateRoadmapInput struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

func buildSteps(roadmapID string, in []StepInput) []models.RoadmapStep {
	steps := make([]models.RoadmapStep, 0, len(in))
	for i, st := range in {
		order := i
		if st.Order != nil {
			order = *st.Order
		}
		steps = append(steps, models.RoadmapStep{
			ID:          uuid.NewString(),
			RoadmapID:   roadmapID,
			Title:       st.Title,
			Description: st.Description,
			ResourceURL: st.ResourceURL,
			Order:       order,
			Completed:   st.Completed,
		})
	}
	return steps
}

// CreateRoadmap stores a roadmap owned by ownerID together with its steps.
func (s *RoadmapService) CreateRoadmap(ctx context.Context, ownerID string, in CreateRoadmapInput) (*models.Roadmap, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("roadmap title required: %w", ErrValidation)
	}
	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}

	id := uuid.NewString()
	rmSlug := id[:8]
	if s := slug.Make(in.Title); s != "" {
		rmSlug = s + "-" + rmSlug
	}
	rm := models.Roadmap{
		ID:          id,
		OwnerID:     ownerID,
		Title:       in.Title,
		Slug:        rmSlug,
		Description: in.Description,
		IsPublic:    isPublic,
	}
	steps := buildSteps(id, in.Steps)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rm).Error; err != nil {
			return err
		}
		// zero values are skipped on insert, so false would take the column default
		if !isPublic {
			if err := tx.Model(&rm).Update("is_public", false).Error; err != nil {
				return err
			}
		}
		if len(steps) > 0 {
			if err := tx.Create(&steps).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	rm.Steps = steps

	if s.Progression != nil {
		s.Progression.publish(ctx, ProgressEvent{Kind: EventRoadmapCreated, UserID: ownerID})
	}
	return &rm, nil
}

// GetRoadmap loads a roadmap with ordered steps and counts the view.
// Private roadmaps are visible to their owner only.
func (s *RoadmapService) GetRoadmap(ctx context.Context, idOrSlug, viewerID string) (*models.Roadmap, error) {
	db := s.DB.WithContext(ctx)

	var rm models.Roadmap
	err := byIDOrSlug(db, idOrSlug).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, created_at ASC") }).
		First(&rm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("roadmap %s: %w", idOrSlug, ErrNotFound)
		}
		return nil, err
	}
	if !rm.IsPublic && rm.OwnerID != viewerID {
		return nil, fmt.Errorf("roadmap %s: %w", idOrSlug, ErrNotFound)
	}

	if err := db.Model(&models.Roadmap{}).Where("id = ?", rm.ID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return nil, err
	}
	rm.Views++
	return &rm, nil
}

type RoadmapPage struct {
	Roadmaps   []models.Roadmap `json:"roadmaps"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	TotalItems int64            `json:"total_items"`
}

// ListPublic pages through public roadmaps, most liked first.
func (s *RoadmapService) ListPublic(ctx context.Context, page, size int) (*RoadmapPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	db := s.DB.WithContext(ctx)

	out := &RoadmapPage{Roadmaps: []models.Roadmap{}, Page: page, Size: size}
	if err := db.Model(&models.Roadmap{}).Where("is_public = ?", true).Count(&out.TotalItems).Error; err != nil {
		return nil, err
	}
	err := db.Where("is_public = ?", true).
		Order("likes DESC, created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&out.Roadmaps).Error
	return out, err
}

func (s *RoadmapService) ListByOwner(ctx context.Context, ownerID string) ([]models.Roadmap, error) {
	roadmaps := []models.Roadmap{}
	err := s.DB.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, created_at ASC") }).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&roadmaps).Error
	return roadmaps, err
}

// loadOwned returns the roadmap if requesterID owns it.
func loadOwned(tx *gorm.DB, roadmapID, requesterID string) (*models.Roadmap, error) {
	if !isUUID(roadmapID) {
		return nil, fmt.Errorf("roadmap %s: %w", roadmapID, ErrNotFound)
	}
	var rm models.Roadmap
	if err := tx.Where("id = ?", roadmapID).First(&rm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("roadmap %s: %w", roadmapID, ErrNotFound)
		}
		return nil, err
	}
	if rm.OwnerID != requesterID {
		return nil, fmt.Errorf("roadmap %s not owned by %s: %w", roadmapID, requesterID, ErrForbidden)
	}
	return &rm, nil
}

func (s *RoadmapService) UpdateRoadmap(ctx context.Context, roadmapID, requesterID string, in UpdateRoadmapInput) (*models.Roadmap, error) {
	var rm *models.Roadmap
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if rm, err = loadOwned(tx, roadmapID, requesterID); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.IsPublic != nil {
			updates["is_public"] = *in.IsPublic
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(rm).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", rm.ID).First(rm).Error
	})
	if err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *RoadmapService) DeleteRoadmap(ctx context.Context, roadmapID, requesterID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rm, err := loadOwned(tx, roadmapID, requesterID)
		if err != nil {
			return err
		}
		if err := tx.Where("roadmap_id = ?", rm.ID).Delete(&models.RoadmapStep{}).Error; err != nil {
			return err
		}
		return tx.Delete(rm).Error
	})
}

// ReplaceSteps swaps the roadmap's whole step list for steps. Existing steps
// are deleted, so a step left out of the list loses its completion state;
// callers that want to keep progress must resend the step with completed set.
func (s *RoadmapService) ReplaceSteps(ctx context.Context, roadmapID, requesterID string, steps []StepInput) ([]models.RoadmapStep, error) {
	var created []models.RoadmapStep
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rm, err := loadOwned(tx, roadmapID, requesterID)
		if err != nil {
			return err
		}
		if err := tx.Where("roadmap_id = ?", rm.ID).Delete(&models.RoadmapStep{}).Error; err != nil {
			return err
		}
		created = buildSteps(rm.ID, steps)
		if len(created) > 0 {
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ToggleStep flips one step's completed flag in place.
func (s *RoadmapService) ToggleStep(ctx context.Context, roadmapID, stepID, requesterID string) (*models.RoadmapStep, error) {
	var step models.RoadmapStep
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rm, err := loadOwned(tx, roadmapID, requesterID)
		if err != nil {
			return err
		}
		if !isUUID(stepID) {
			return fmt.Errorf("step %s: %w", stepID, ErrNotFound)
		}
		res := tx.Model(&models.RoadmapStep{}).
			Where("id = ? AND roadmap_id = ?", stepID, rm.ID).
			Update("completed", gorm.Expr("NOT completed"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("step %s in roadmap %s: %w", stepID, rm.ID, ErrNotFound)
		}
		return tx.Where("id = ?", stepID).First(&step).Error
	})
	if err != nil {
		return nil, err
	}
	return &step, nil
}

// LikeRoadmap bumps the like counter. Likes are not deduplicated per user.
// Private roadmaps are NotFound for everyone but the owner.
func (s *RoadmapService) LikeRoadmap(ctx context.Context, roadmapID, requesterID string) (int64, error) {
	if !isUUID(roadmapID) {
		return 0, fmt.Errorf("roadmap %s: %w", roadmapID, ErrNotFound)
	}
	db := s.DB.WithContext(ctx)
	res := db.Model(&models.Roadmap{}).
		Where("id = ? AND (is_public = ? OR owner_id = ?)", roadmapID, true, requesterID).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("roadmap %s: %w", roadmapID, ErrNotFound)
	}
	var likes int64
	err := db.Model(&models.Roadmap{}).Select("likes").Where("id = ?", roadmapID).Row().Scan(&likes)
	return likes, err
}
