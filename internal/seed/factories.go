// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"prok/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Categories used for generated posts. These match what the frontend's
// category filter expects to find.
var postCategories = []string{
	"technology", "career", "design", "finance", "marketing",
	"engineering", "leadership", "remote-work",
}

// Tag pool for generated posts. Posts pick 1-4 of these.
var postTags = []string{
	"golang", "python", "javascript", "react", "devops", "cloud",
	"hiring", "interview", "startup", "ai", "databases", "security",
	"productivity", "networking", "mentorship",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.DefaultCost)

	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Password:  string(hashedPassword),
		Title:     gofakeit.JobTitle(),
		Bio:       gofakeit.Sentence(10),
		Skills:    strings.Join([]string{gofakeit.JobDescriptor(), gofakeit.JobDescriptor()}, ", "),
		Location:  gofakeit.City(),
		Languages: "English",
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a categorized, tagged post for the given user without
// persisting it.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		UserID:        user.ID,
		Title:         gofakeit.Sentence(5),
		Content:       gofakeit.Paragraph(1, 3, 5, "\n"),
		AllowComments: true,
		PublicPost:    f.rng.Intn(10) > 1, // ~80% public
		Category:      postCategories[f.rng.Intn(len(postCategories))],
		Tags:          f.randomTags(),
		LikesCount:    f.rng.Intn(500),
		ViewsCount:    f.rng.Intn(5000),
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// randomTags joins 1-4 distinct tags from the pool into a comma-separated
// blob, the storage format the tag aggregates expect.
func (f *Factory) randomTags() string {
	n := 1 + f.rng.Intn(4)
	picked := make([]string, 0, n)
	seen := make(map[string]bool)
	for len(picked) < n {
		tag := postTags[f.rng.Intn(len(postTags))]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		picked = append(picked, tag)
	}
	return strings.Join(picked, ",")
}
