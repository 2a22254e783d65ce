package services

import (
	"context"
	"errors"
	"testing"

	"coding-edu-platform/models"

	"github.com/google/uuid"
)

func intPtr(n int) *int { return &n }

func newRoadmap(t *testing.T, svc *RoadmapService, ownerID string, steps ...string) *models.Roadmap {
	t.Helper()
	in := CreateRoadmapInput{Title: "Backend Path"}
	for _, s := range steps {
		in.Steps = append(in.Steps, StepInput{Title: s})
	}
	rm, err := svc.CreateRoadmap(context.Background(), ownerID, in)
	if err != nil {
		t.Fatalf("CreateRoadmap: %v", err)
	}
	return rm
}

func TestReplaceSteps(t *testing.T) {
	ctx := context.Background()

	t.Run("unlisted steps lose completion", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewRoadmapService(db, nil)
		owner := createUser(t, db, "owner", 0)
		rm := newRoadmap(t, svc, owner.ID, "A", "B")

		if _, err := svc.ToggleStep(ctx, rm.ID, rm.Steps[0].ID, owner.ID); err != nil {
			t.Fatalf("ToggleStep: %v", err)
		}

		steps, err := svc.ReplaceSteps(ctx, rm.ID, owner.ID, []StepInput{
			{Title: "B"},
			{Title: "C", Order: intPtr(7)},
		})
		if err != nil {
			t.Fatalf("ReplaceSteps: %v", err)
		}
		if len(steps) != 2 || steps[0].Order != 0 || steps[1].Order != 7 {
			t.Fatalf("unexpected steps %+v", steps)
		}

		got, err := svc.GetRoadmap(ctx, rm.ID, owner.ID)
		if err != nil {
			t.Fatalf("GetRoadmap: %v", err)
		}
		if len(got.Steps) != 2 {
			t.Fatalf("expected 2 steps, got %d", len(got.Steps))
		}
		for _, st := range got.Steps {
			if st.Title == "A" {
				t.Errorf("step A should be gone")
			}
			if st.Completed {
				t.Errorf("step %s should not be completed", st.Title)
			}
		}
	})

	t.Run("resent completion is kept", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewRoadmapService(db, nil)
		owner := createUser(t, db, "owner", 0)
		rm := newRoadmap(t, svc, owner.ID, "A")

		steps, err := svc.ReplaceSteps(ctx, rm.ID, owner.ID, []StepInput{{Title: "A", Completed: true}})
		if err != nil {
			t.Fatalf("ReplaceSteps: %v", err)
		}
		if !steps[0].Completed {
			t.Fatal("expected completed step")
		}
	})

	t.Run("non-owner is forbidden and nothing changes", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewRoadmapService(db, nil)
		owner := createUser(t, db, "owner", 0)
		intruder := createUser(t, db, "intruder", 0)
		rm := newRoadmap(t, svc, owner.ID, "A", "B")

		if _, err := svc.ReplaceSteps(ctx, rm.ID, intruder.ID, []StepInput{{Title: "X"}}); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if _, err := svc.ToggleStep(ctx, rm.ID, rm.Steps[0].ID, intruder.ID); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden on toggle, got %v", err)
		}

		var steps []models.RoadmapStep
		db.Where("roadmap_id = ?", rm.ID).Order("sort_order").Find(&steps)
		if len(steps) != 2 || steps[0].Title != "A" || steps[0].Completed {
			t.Fatalf("steps changed: %+v", steps)
		}
	})

	t.Run("missing roadmap", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewRoadmapService(db, nil)
		if _, err := svc.ReplaceSteps(ctx, uuid.NewString(), uuid.NewString(), nil); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestToggleStep(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewRoadmapService(db, nil)
	owner := createUser(t, db, "owner", 0)
	rm := newRoadmap(t, svc, owner.ID, "A")
	other := newRoadmap(t, svc, owner.ID, "Z")

	step, err := svc.ToggleStep(ctx, rm.ID, rm.Steps[0].ID, owner.ID)
	if err != nil || !step.Completed {
		t.Fatalf("expected completed step, got %+v (%v)", step, err)
	}
	step, err = svc.ToggleStep(ctx, rm.ID, rm.Steps[0].ID, owner.ID)
	if err != nil || step.Completed {
		t.Fatalf("expected step back to open, got %+v (%v)", step, err)
	}

	if _, err := svc.ToggleStep(ctx, rm.ID, other.Steps[0].ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign step, got %v", err)
	}
}

func TestRoadmapCounters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	progression := NewProgressionService(db)
	progression.Publisher = pub
	svc := NewRoadmapService(db, progression)
	owner := createUser(t, db, "owner", 0)
	rm := newRoadmap(t, svc, owner.ID)

	for i := 0; i < 3; i++ {
		if _, err := svc.LikeRoadmap(ctx, rm.ID, owner.ID); err != nil {
			t.Fatalf("LikeRoadmap: %v", err)
		}
	}
	likes, err := svc.LikeRoadmap(ctx, rm.ID, owner.ID)
	if err != nil || likes != 4 {
		t.Fatalf("expected 4 likes, got %d (%v)", likes, err)
	}

	if _, err := svc.GetRoadmap(ctx, rm.Slug, ""); err != nil {
		t.Fatalf("GetRoadmap: %v", err)
	}
	got, err := svc.GetRoadmap(ctx, rm.ID, "")
	if err != nil || got.Views != 2 {
		t.Fatalf("expected 2 views, got %d (%v)", got.Views, err)
	}

	if _, err := svc.LikeRoadmap(ctx, uuid.NewString(), owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if kinds := pub.kinds(); len(kinds) != 1 || kinds[0] != EventRoadmapCreated {
		t.Errorf("unexpected events %v", kinds)
	}
}

func TestLikePrivateRoadmap(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewRoadmapService(db, nil)
	owner := createUser(t, db, "owner", 0)
	stranger := createUser(t, db, "stranger", 0)
	private := false
	rm, err := svc.CreateRoadmap(ctx, owner.ID, CreateRoadmapInput{Title: "Secret Plan", IsPublic: &private})
	if err != nil {
		t.Fatalf("CreateRoadmap: %v", err)
	}

	t.Run("stranger gets not found", func(t *testing.T) {
		if _, err := svc.LikeRoadmap(ctx, rm.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := svc.LikeRoadmap(ctx, rm.ID, ""); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for anonymous, got %v", err)
		}
		var stored models.Roadmap
		db.First(&stored, "id = ?", rm.ID)
		if stored.Likes != 0 {
			t.Fatalf("expected likes untouched, got %d", stored.Likes)
		}
	})

	t.Run("owner can like", func(t *testing.T) {
		likes, err := svc.LikeRoadmap(ctx, rm.ID, owner.ID)
		if err != nil || likes != 1 {
			t.Fatalf("expected 1 like, got %d (%v)", likes, err)
		}
	})
}

func TestRoadmapVisibilityAndCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewRoadmapService(db, nil)
	owner := createUser(t, db, "owner", 0)
	other := createUser(t, db, "other", 0)

	private := false
	rm, err := svc.CreateRoadmap(ctx, owner.ID, CreateRoadmapInput{Title: "Secret Plan", IsPublic: &private})
	if err != nil {
		t.Fatalf("CreateRoadmap: %v", err)
	}
	if _, err := svc.GetRoadmap(ctx, rm.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected private roadmap hidden, got %v", err)
	}
	if _, err := svc.GetRoadmap(ctx, rm.ID, owner.ID); err != nil {
		t.Fatalf("owner should see private roadmap: %v", err)
	}

	page, err := svc.ListPublic(ctx, 1, 10)
	if err != nil || page.TotalItems != 0 {
		t.Fatalf("expected no public roadmaps, got %d (%v)", page.TotalItems, err)
	}

	title := "Open Plan"
	public := true
	if _, err := svc.UpdateRoadmap(ctx, rm.ID, other.ID, UpdateRoadmapInput{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	updated, err := svc.UpdateRoadmap(ctx, rm.ID, owner.ID, UpdateRoadmapInput{Title: &title, IsPublic: &public})
	if err != nil || updated.Title != title || !updated.IsPublic {
		t.Fatalf("unexpected update %+v (%v)", updated, err)
	}

	mine, err := svc.ListByOwner(ctx, owner.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected 1 own roadmap, got %d (%v)", len(mine), err)
	}

	if err := svc.DeleteRoadmap(ctx, rm.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteRoadmap(ctx, rm.ID, owner.ID); err != nil {
		t.Fatalf("DeleteRoadmap: %v", err)
	}
	if _, err := svc.GetRoadmap(ctx, rm.ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted roadmap gone, got %v", err)
	}
}
