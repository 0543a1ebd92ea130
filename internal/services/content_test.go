package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-voice/internal/data/repos"
	"github.com/yungbote/neurobridge-voice/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
)

func newTestContentStore(t *testing.T) (ContentStore, context.Context, *types.User, *types.Course) {
	t.Helper()
	db := testutil.Isolated(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	store := NewContentStore(db, log, repos.NewSet(db, log))
	u := testutil.SeedUser(t, ctx, db, "content@example.com")
	c := testutil.SeedCourse(t, ctx, db, "Chemistry")
	return store, ctx, u, c
}

func TestContentStoreEnrollIsIdempotent(t *testing.T) {
	store, ctx, u, c := newTestContentStore(t)

	first, created, err := store.Enroll(ctx, u.ID, c.ID)
	if err != nil || !created {
		t.Fatalf("Enroll #1: created=%v err=%v", created, err)
	}
	second, created, err := store.Enroll(ctx, u.ID, c.ID)
	if err != nil || created {
		t.Fatalf("Enroll #2: created=%v err=%v", created, err)
	}
	if first.ID != second.ID {
		t.Fatalf("second enroll returned a different row")
	}

	rows, err := store.ListEnrollments(ctx, u.ID)
	if err != nil || len(rows) != 1 || rows[0].Course == nil {
		t.Fatalf("ListEnrollments: err=%v rows=%v", err, rows)
	}

	if _, _, err := store.Enroll(ctx, u.ID, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("Enroll(unknown): want NotFound, got %v", err)
	}
}

func TestContentStoreTouchEnrollment(t *testing.T) {
	store, ctx, u, c := newTestContentStore(t)
	if _, _, err := store.Enroll(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store.(*contentStore).now = func() time.Time { return at }

	if err := store.TouchEnrollment(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("TouchEnrollment: %v", err)
	}
	e, err := store.GetEnrollment(ctx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("GetEnrollment: %v", err)
	}
	if e.LastAccessed == nil || e.LastAccessed.Unix() != at.Unix() {
		t.Fatalf("last_accessed=%v want %v", e.LastAccessed, at)
	}
}

func TestContentStoreNotFound(t *testing.T) {
	store, ctx, u, c := newTestContentStore(t)

	if _, err := store.GetCourse(ctx, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("GetCourse: %v", err)
	}
	if _, err := store.GetLesson(ctx, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("GetLesson: %v", err)
	}
	if _, err := store.GetQuiz(ctx, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("GetQuiz: %v", err)
	}
	if _, err := store.GetAssignment(ctx, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("GetAssignment: %v", err)
	}
	if _, err := store.GetEnrollment(ctx, u.ID, c.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("GetEnrollment: %v", err)
	}
	if _, err := store.MarkLessonComplete(ctx, u.ID, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("MarkLessonComplete(unknown): %v", err)
	}
}

func TestContentStoreAttemptsAndSubmissions(t *testing.T) {
	store, ctx, u, c := newTestContentStore(t)

	quiz := &types.Quiz{CourseID: c.ID, Title: "Atoms", IsPublished: true}
	if _, err := repos.NewQuizRepo(store.(*contentStore).db, testutil.Logger(t)).Create(dbctx.Context{Ctx: ctx}, []*types.Quiz{quiz}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	for i := 1; i <= 2; i++ {
		if err := store.CreateQuizAttempt(ctx, &types.QuizAttempt{QuizID: quiz.ID, StudentID: u.ID, AttemptNumber: i, Percentage: i * 40, IsCompleted: true}); err != nil {
			t.Fatalf("CreateQuizAttempt: %v", err)
		}
	}
	latest, err := store.LatestQuizAttempts(ctx, u.ID, []uuid.UUID{quiz.ID})
	if err != nil || latest[quiz.ID] == nil || latest[quiz.ID].AttemptNumber != 2 {
		t.Fatalf("LatestQuizAttempts: err=%v got=%v", err, latest)
	}
	if n, err := store.CountQuizAttempts(ctx, u.ID, quiz.ID); err != nil || n != 2 {
		t.Fatalf("CountQuizAttempts: n=%d err=%v", n, err)
	}

	sub := &types.Submission{AssignmentID: uuid.New(), StudentID: u.ID, TextAnswer: "done", Status: types.SubmissionSubmitted}
	if err := store.CreateSubmission(ctx, sub); err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if sub.SubmittedAt.IsZero() {
		t.Fatalf("SubmittedAt not stamped")
	}
}
