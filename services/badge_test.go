package services

import (
	"context"
	"testing"

	"coding-edu-platform/models"
)

func TestAutoAwardBadges(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	badges := NewBadgeService(db)
	if err := badges.SeedBadgeTypes(ctx); err != nil {
		t.Fatalf("SeedBadgeTypes: %v", err)
	}
	// seeding twice must not duplicate the catalogue
	if err := badges.SeedBadgeTypes(ctx); err != nil {
		t.Fatalf("SeedBadgeTypes: %v", err)
	}

	progression := NewProgressionService(db)
	progress := NewProgressService(db, progression)
	user := createUser(t, db, "ada", 4900)
	_, lesson := createCourseWithLesson(t, db, 200)

	if _, err := progress.SaveProgress(ctx, user.ID, lesson.ID, "done", true); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	awarded, err := badges.AutoAwardBadges(ctx, user.ID)
	if err != nil {
		t.Fatalf("AutoAwardBadges: %v", err)
	}
	codes := map[string]bool{}
	for _, b := range awarded {
		codes[b.Code] = true
	}
	if len(awarded) != 2 || !codes["FIRST_LESSON"] || !codes["LEVEL_5"] {
		t.Fatalf("expected FIRST_LESSON and LEVEL_5, got %v", codes)
	}

	again, err := badges.AutoAwardBadges(ctx, user.ID)
	if err != nil || len(again) != 0 {
		t.Fatalf("expected no new badges, got %d (%v)", len(again), err)
	}

	owned, err := badges.UserBadges(ctx, user.ID)
	if err != nil || len(owned) != 2 || owned[0].BadgeType == nil {
		t.Fatalf("unexpected user badges %+v (%v)", owned, err)
	}
}

func TestMeetsThreshold(t *testing.T) {
	stats := &BadgeStats{Level: 3, LessonsCompleted: 10}
	tests := []struct {
		name string
		req  map[string]int64
		want bool
	}{
		{"all met", map[string]int64{"level": 3, "lessons_completed": 10}, true},
		{"one short", map[string]int64{"level": 4}, false},
		{"unknown key", map[string]int64{"tournament_wins": 1}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meetsThreshold(stats, tt.req); got != tt.want {
				t.Errorf("meetsThreshold = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	profiles := NewProfileService(db, NewBadgeService(db))
	user := createUser(t, db, "ada", 2350)

	p, err := profiles.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.User.Level != 3 || p.XPIntoLevel != 350 || p.XPToNextLevel != 650 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if err := profiles.SetAvatarURL(ctx, user.ID, "https://cdn.example.com/a.png"); err != nil {
		t.Fatalf("SetAvatarURL: %v", err)
	}
}

func TestSeedBadgeTypesOnExistingCatalogue(t *testing.T) {
	ctx := context.Background()
	db := newFileTestDB(t, 1)

	// two boots against the same database
	for boot := 1; boot <= 2; boot++ {
		if err := NewBadgeService(db).SeedBadgeTypes(ctx); err != nil {
			t.Fatalf("boot %d: SeedBadgeTypes: %v", boot, err)
		}
	}

	var count int64
	db.Model(&models.BadgeType{}).Count(&count)
	if count != int64(len(models.BadgeTriggers)) {
		t.Fatalf("expected %d badge types, got %d", len(models.BadgeTriggers), count)
	}

	var first models.BadgeType
	if err := db.Where("code = ?", "FIRST_LESSON").First(&first).Error; err != nil {
		t.Fatalf("load FIRST_LESSON: %v", err)
	}
	if first.ID == "" || first.Threshold.Data()["lessons_completed"] != 1 {
		t.Fatalf("unexpected seeded badge %+v", first)
	}
}
