package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"coding-edu-platform/database"
	"coding-edu-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// newFileTestDB opens a WAL sqlite file with several connections so
// concurrent transactions really overlap.
func newFileTestDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edu.db")
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=on", path)
	db, err := database.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, xp int64) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		XP:           xp,
		Level:        LevelForXP(xp),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createCourseWithLesson(t *testing.T, db *gorm.DB, xpReward int64) (*models.Course, *models.Lesson) {
	t.Helper()
	course := &models.Course{ID: uuid.NewString(), Slug: "go-" + uuid.NewString()[:8], Title: "Go Basics", Published: true}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	lesson := &models.Lesson{ID: uuid.NewString(), CourseID: course.ID, Slug: "hello", Title: "Hello", XPReward: xpReward}
	if err := db.Create(lesson).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return course, lesson
}

func createChallenge(t *testing.T, db *gorm.DB, xpReward int64) *models.Challenge {
	t.Helper()
	ch := &models.Challenge{
		ID:        uuid.NewString(),
		Slug:      "fizzbuzz-" + uuid.NewString()[:8],
		Title:     "FizzBuzz",
		XPReward:  xpReward,
		TestCases: []byte(`[{"input":3,"output":"Fizz"}]`),
	}
	if err := db.Create(ch).Error; err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	return ch
}

func reloadUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	var u models.User
	if err := db.Where("id = ?", id).First(&u).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &u
}

// recordingPublisher captures progress events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev ProgressEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}
