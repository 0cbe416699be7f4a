package seed

import (
	"log"

	"prok/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with demo users and posts.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded data. Posts go first to satisfy the foreign
// key on user_id.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	if err := s.db.Unscoped().Where("1 = 1").Delete(&models.Post{}).Error; err != nil {
		return err
	}
	if err := s.db.Unscoped().Where("1 = 1").Delete(&models.User{}).Error; err != nil {
		return err
	}
	return nil
}

// SeedUsers creates n demo users.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))
	return users, nil
}

// SeedPosts creates n posts spread across the given users, in batches.
func (s *Seeder) SeedPosts(users []*models.User, n int) error {
	const batchSize = 100

	posts := make([]*models.Post, 0, batchSize)
	for i := 0; i < n; i++ {
		user := users[s.factory.rng.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(user))

		if len(posts) == batchSize {
			if err := s.factory.CreatePostsBatch(posts); err != nil {
				return err
			}
			posts = posts[:0]
		}
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return err
	}
	log.Printf("Created %d posts", n)
	return nil
}
