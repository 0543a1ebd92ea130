package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-voice/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
)

func TestLessonRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLessonRepo(db, testutil.Logger(t))

	c := testutil.SeedCourse(t, ctx, tx, "Lesson Course")
	l2 := testutil.SeedLesson(t, ctx, tx, c.ID, 2, "Second")
	l1 := testutil.SeedLesson(t, ctx, tx, c.ID, 1, "First")
	draft := &types.Lesson{CourseID: c.ID, Title: "Draft", OrderIndex: 0}
	if _, err := repo.Create(dbc, []*types.Lesson{draft}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows, err := repo.ListPublishedByCourse(dbc, c.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListPublishedByCourse: err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != l1.ID || rows[1].ID != l2.ID {
		t.Fatalf("lessons not ordered by order_index")
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{draft.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
}

func TestLessonProgressRepoMarkCompleteIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLessonProgressRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "lessonprogress@example.com")
	c := testutil.SeedCourse(t, ctx, tx, "Progress Course")
	l := testutil.SeedLesson(t, ctx, tx, c.ID, 0, "Only")

	t1 := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	first, err := repo.MarkComplete(dbc, u.ID, l.ID, t1)
	if err != nil {
		t.Fatalf("MarkComplete #1: %v", err)
	}
	t2 := t1.Add(30 * time.Second)
	second, err := repo.MarkComplete(dbc, u.ID, l.ID, t2)
	if err != nil {
		t.Fatalf("MarkComplete #2: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("second call created a new row")
	}

	var n int64
	if err := tx.WithContext(ctx).Model(&types.LessonProgress{}).
		Where("student_id = ? AND lesson_id = ?", u.ID, l.ID).
		Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 progress row, got %d", n)
	}

	rows, err := repo.GetByStudentAndLessonIDs(dbc, u.ID, []uuid.UUID{l.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByStudentAndLessonIDs: err=%v len=%d", err, len(rows))
	}
	if !rows[0].IsCompleted || rows[0].CompletedAt == nil || !rows[0].CompletedAt.Equal(t2) {
		t.Fatalf("completion not refreshed: %+v", rows[0])
	}
}
