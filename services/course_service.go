// services/course_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"coding-edu-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseService struct {
	DB *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{DB: db}
}

type CourseFilter struct {
	Category      string
	Difficulty    string
	IncludeHidden bool
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

// ListCourses returns published courses (all courses with IncludeHidden) with lesson counts.
func (s *CourseService) ListCourses(ctx context.Context, f CourseFilter) ([]models.Course, error) {
	db := s.DB.WithContext(ctx)
	query := db.Model(&models.Course{})
	if !f.IncludeHidden {
		query = query.Where("published = ?", true)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}

	courses := []models.Course{}
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return courses, nil
	}

	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	var counts []struct {
		CourseID string
		Total    int64
	}
	if err := db.Model(&models.Lesson{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", ids).
		Group("course_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byCourse := make(map[string]int64, len(counts))
	for _, c := range counts {
		byCourse[c.CourseID] = c.Total
	}
	for i := range courses {
		courses[i].LessonCount = byCourse[courses[i].ID]
	}
	return courses, nil
}

// GetCourse resolves by id or slug and preloads ordered lessons.
func (s *CourseService) GetCourse(ctx context.Context, idOrSlug string) (*models.Course, error) {
	var course models.Course
	err := byIDOrSlug(s.DB.WithContext(ctx), idOrSlug).
		Preload("Lessons", orderedLessons).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %s: %w", idOrSlug, ErrNotFound)
		}
		return nil, err
	}
	course.LessonCount = int64(len(course.Lessons))
	return &course, nil
}

type CreateCourseInput struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Category    string `json:"category" validate:"max=64"`
	Published   bool   `json:"published"`
}

func (s *CourseService) CreateCourse(ctx context.Context, in CreateCourseInput) (*models.Course, error) {
	if in.Difficulty == "" {
		in.Difficulty = models.DifficultyBeginner
	}
	id := uuid.NewString()
	course := models.Course{
		ID:          id,
		Slug:        slugFor(in.Title, id),
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  in.Difficulty,
		Category:    in.Category,
		Published:   in.Published,
	}
	if err := s.DB.WithContext(ctx).Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("course slug %s: %w", course.Slug, ErrConflict)
		}
		return nil, err
	}
	return &course, nil
}

type CreateLessonInput struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Content     string `json:"content"`
	StarterCode string `json:"starter_code"`
	Language    string `json:"language" validate:"max=32"`
	Order       *int   `json:"order"`
	XPReward    int64  `json:"xp_reward" validate:"min=0"`
}

// AddLesson appends a lesson; without an explicit order it goes last.
func (s *CourseService) AddLesson(ctx context.Context, courseID string, in CreateLessonInput) (*models.Lesson, error) {
	if in.XPReward < 0 {
		return nil, fmt.Errorf("xp_reward %d: %w", in.XPReward, ErrValidation)
	}

	var lesson models.Lesson
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := byIDOrSlug(tx, courseID).First(&course).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("course %s: %w", courseID, ErrNotFound)
			}
			return err
		}

		order := 0
		if in.Order != nil {
			order = *in.Order
		} else {
			var count int64
			if err := tx.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&count).Error; err != nil {
				return err
			}
			order = int(count)
		}

		id := uuid.NewString()
		lesson = models.Lesson{
			ID:          id,
			CourseID:    course.ID,
			Slug:        slugFor(in.Title, id),
			Title:       in.Title,
			Content:     in.Content,
			StarterCode: in.StarterCode,
			Language:    in.Language,
			Order:       order,
			XPReward:    in.XPReward,
		}
		return tx.Create(&lesson).Error
	})
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// SetCoverURL stores the uploaded cover image location.
func (s *CourseService) SetCoverURL(ctx context.Context, courseID, url string) error {
	if !isUUID(courseID) {
		return fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	res := s.DB.WithContext(ctx).Model(&models.Course{}).Where("id = ?", courseID).Update("cover_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	return nil
}

// Enroll registers the user in a course once; a second call is a conflict.
func (s *CourseService) Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment := models.Enrollment{
		ID:       uuid.NewString(),
		UserID:   userID,
		CourseID: course.ID,
	}
	conflict := fmt.Errorf("already enrolled in %s: %w", course.ID, ErrConflict)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ?", userID, course.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return conflict
		}
		// the unique index still guards concurrent enrollments
		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (s *CourseService) ListEnrollments(ctx context.Context, userID string) ([]models.Enrollment, error) {
	enrollments := []models.Enrollment{}
	err := s.DB.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}
