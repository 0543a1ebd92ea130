// Command seed fills a development database with demo learners and content
// and prints an access token for the voice websocket.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-voice/internal/app"
	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/services"
)

type question struct {
	text    string
	options []string
	correct string
}

func main() {
	var email, name, password string
	var ttl time.Duration
	flag.StringVar(&email, "email", "student@example.com", "demo student email")
	flag.StringVar(&name, "name", "Demo Student", "demo student full name")
	flag.StringVar(&password, "password", "password123", "demo student password")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "lifetime of the printed access token")
	flag.Parse()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if application.Cfg.JWTSecretKey == "" {
		fmt.Println("JWT_SECRET_KEY must be set to mint a token")
		os.Exit(1)
	}

	var student *types.User
	err = application.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		student, err = ensureUser(ctx, application, tx, email, name, password, types.RoleStudent)
		if err != nil {
			return err
		}
		teacher, err := ensureUser(ctx, application, tx, "teacher@example.com", "Demo Teacher", password, types.RoleTeacher)
		if err != nil {
			return err
		}
		return seedContent(ctx, tx, student.ID, teacher.ID)
	})
	if err != nil {
		fmt.Printf("seed: %v\n", err)
		os.Exit(1)
	}

	token, err := services.SignAccessToken(application.Cfg.JWTSecretKey, student.ID, ttl)
	if err != nil {
		fmt.Printf("sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("student_id=%s\n", student.ID)
	fmt.Printf("token=%s\n", token)
	fmt.Printf("connect: ws://localhost:%s/api/voice/realtime/%s\n", application.Cfg.Port, token)
}

func ensureUser(ctx context.Context, a *app.App, tx *gorm.DB, email, name, password string, role types.UserRole) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := a.Repos.User.GetByEmails(dbctx.Context{Ctx: ctx, Tx: tx}, []string{email})
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", email, err)
	}
	if len(existing) > 0 {
		return existing[0], nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	created, err := a.Repos.User.Create(dbctx.Context{Ctx: ctx, Tx: tx}, []*types.User{{
		ID:                uuid.New(),
		Email:             email,
		PasswordHash:      string(hash),
		FullName:          name,
		Role:              role,
		IsActive:          true,
		PreferredLanguage: "en",
	}})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", email, err)
	}
	return created[0], nil
}

// seedContent is skipped when the demo course already exists.
func seedContent(ctx context.Context, tx *gorm.DB, studentID, teacherID uuid.UUID) error {
	var n int64
	if err := tx.WithContext(ctx).Model(&types.Course{}).Where("title = ?", "Introduction to Biology").Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	bio := &types.Course{TeacherID: &teacherID, Title: "Introduction to Biology", Description: "Cells, genetics and ecosystems.", SubjectCode: "BIO101", IsActive: true, IsPublished: true}
	hist := &types.Course{TeacherID: &teacherID, Title: "World History", Description: "From ancient civilizations to the modern era.", SubjectCode: "HIS101", IsActive: true, IsPublished: true}
	if err := tx.WithContext(ctx).Create([]*types.Course{bio, hist}).Error; err != nil {
		return fmt.Errorf("courses: %w", err)
	}
	if err := tx.WithContext(ctx).Create(&types.Enrollment{StudentID: studentID, CourseID: bio.ID, ProgressPercentage: 20}).Error; err != nil {
		return fmt.Errorf("enrollment: %w", err)
	}

	lessons := []*types.Lesson{
		{CourseID: bio.ID, Title: "What is a cell", OrderIndex: 1, DurationMinutes: 10, IsPublished: true,
			ContentText: "A cell is the smallest unit of life. Every living thing is made of one or more cells. Cells take in nutrients, turn them into energy and carry out specialised functions."},
		{CourseID: bio.ID, Title: "DNA and genes", OrderIndex: 2, DurationMinutes: 15, IsPublished: true,
			ContentText: "DNA carries the instructions a living thing needs to grow and function. A gene is a section of DNA that codes for a protein."},
		{CourseID: hist.ID, Title: "Ancient Egypt", OrderIndex: 1, DurationMinutes: 12, IsPublished: true,
			ContentText: "Ancient Egypt grew along the Nile river for more than three thousand years."},
	}
	if err := tx.WithContext(ctx).Create(lessons).Error; err != nil {
		return fmt.Errorf("lessons: %w", err)
	}

	quiz, err := buildQuiz(bio.ID, "Cell Basics", []question{
		{"What is the basic unit of life?", []string{"Atom", "Cell", "Organ"}, "Cell"},
		{"Where is DNA mostly found in a plant cell?", []string{"Nucleus", "Cell wall", "Vacuole"}, "A"},
		{"Which organelle produces energy?", []string{"Ribosome", "Golgi body", "Mitochondrion"}, "Mitochondrion"},
	})
	if err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("quiz: %w", err)
	}

	due := time.Now().UTC().Add(7 * 24 * time.Hour)
	assignment := &types.Assignment{
		CourseID:     bio.ID,
		Title:        "Describe a cell",
		Description:  "Short written answer.",
		Instructions: "In a few sentences, describe what a cell is and name one of its parts.",
		MaxScore:     100,
		DueDate:      &due,
		IsPublished:  true,
	}
	if err := tx.WithContext(ctx).Create(assignment).Error; err != nil {
		return fmt.Errorf("assignment: %w", err)
	}
	return nil
}

func buildQuiz(courseID uuid.UUID, title string, qs []question) (*types.Quiz, error) {
	quiz := &types.Quiz{CourseID: courseID, Title: title, PassingScore: types.DefaultPassingScore, IsPublished: true}
	for i, q := range qs {
		raw, err := json.Marshal(q.options)
		if err != nil {
			return nil, fmt.Errorf("options: %w", err)
		}
		quiz.Questions = append(quiz.Questions, types.QuizQuestion{
			QuestionText:  q.text,
			QuestionType:  "multiple_choice",
			Options:       datatypes.JSON(raw),
			CorrectAnswer: q.correct,
			OrderIndex:    i,
			Points:        1,
		})
	}
	return quiz, nil
}
