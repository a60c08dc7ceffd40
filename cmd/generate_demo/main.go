// Command generate_demo creates a demo database with sample club data:
// a book catalog, members, forum discussions, events and reading lists.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/bookclubhq/clubhouse/internal/auth"
	"github.com/bookclubhq/clubhouse/internal/config"
	"github.com/bookclubhq/clubhouse/internal/database"
	"github.com/bookclubhq/clubhouse/internal/database/books"
	"github.com/bookclubhq/clubhouse/internal/database/events"
	"github.com/bookclubhq/clubhouse/internal/database/forum"
	"github.com/bookclubhq/clubhouse/internal/database/notifications"
	"github.com/bookclubhq/clubhouse/internal/database/readinglist"
	"github.com/bookclubhq/clubhouse/internal/entities"
)

const defaultDemoDatabasePath = "./demo.db"

// Every demo account logs in with this password.
const demoPassword = "demo password 123"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	users := createUsers(db)
	catalog := createBooks(db, users)
	createForum(db, users)
	createEvents(db, users)
	createReadingLists(db, users, catalog)

	log.Println("Demo database generated successfully!")
	log.Printf("All accounts use the password %q", demoPassword)
}

func createUsers(db *database.Database) []*entities.User {
	authCfg := config.Auth{Mode: config.AuthModeLocal, BcryptCost: 10}
	service := auth.NewService(db.DB, authCfg, config.Admin{})

	seeds := []struct {
		username string
		email    string
		role     entities.UserRole
	}{
		{"frida", "frida@example.com", entities.RoleAdmin},
		{"boris", "boris@example.com", entities.RoleMember},
		{"amira", "amira@example.com", entities.RoleMember},
		{"jonas", "jonas@example.com", entities.RoleMember},
	}

	var users []*entities.User
	for _, seed := range seeds {
		user, err := service.CreateUser(seed.username, seed.email, demoPassword, seed.role)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", seed.username, err)
		}
		log.Printf("Created user: %s (%s)", user.Username, user.Role)
		users = append(users, user)
	}
	return users
}

func createBooks(db *database.Database, users []*entities.User) []*entities.Book {
	repo := books.NewRepository(db.DB, 30*24*time.Hour)

	seeds := []entities.Book{
		{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "9780141439518", PageCount: 432, Featured: true,
			Description: "A sharp comedy of manners following Elizabeth Bennet."},
		{Title: "Crime and Punishment", Author: "Fyodor Dostoevsky", ISBN: "9780143058144", PageCount: 671,
			Description: "A destitute student commits a murder and unravels."},
		{Title: "Frankenstein", Author: "Mary Shelley", ISBN: "9780141439471", PageCount: 288,
			Description: "A scientist abandons the creature he brought to life."},
		{Title: "The Picture of Dorian Gray", Author: "Oscar Wilde", ISBN: "9780141439570", PageCount: 254,
			Description: "A portrait ages while its subject does not."},
		{Title: "Middlemarch", Author: "George Eliot", ISBN: "9780141439549", PageCount: 880, Featured: true,
			Description: "Provincial life, ambition and bad marriages."},
	}

	var catalog []*entities.Book
	for i := range seeds {
		book := &seeds[i]
		book.Available = true
		if err := repo.CreateBook(book); err != nil {
			log.Fatalf("Failed to save book %s: %v", book.Title, err)
		}
		log.Printf("Saved: %s by %s", book.Title, book.Author)
		catalog = append(catalog, book)
	}

	// One book is out on loan
	if _, err := repo.Borrow(catalog[1].ID, users[1].ID); err != nil {
		log.Fatalf("Failed to borrow demo book: %v", err)
	}
	log.Printf("%s borrowed %q", users[1].Username, catalog[1].Title)

	return catalog
}

func createForum(db *database.Database, users []*entities.User) {
	repo := forum.NewRepository(db.DB)

	topic, err := repo.CreateTopic(users[1].ID, "What should we read in October?",
		"Drop your nominations below. Bonus points for something under 400 pages.")
	if err != nil {
		log.Fatalf("Failed to create topic: %v", err)
	}

	reply, err := repo.CreateReply(topic.ID, users[2].ID, nil, "Frankenstein! It's the season for it.")
	if err != nil {
		log.Fatalf("Failed to create reply: %v", err)
	}
	if _, err := repo.CreateReply(topic.ID, users[3].ID, &reply.ID, "Seconded, and it's short."); err != nil {
		log.Fatalf("Failed to create nested reply: %v", err)
	}

	for _, u := range users[2:] {
		if _, _, err := repo.ToggleTopicLike(topic.ID, u.ID); err != nil {
			log.Fatalf("Failed to like topic: %v", err)
		}
	}

	pinned := true
	if _, err := repo.SetModeration(topic.ID, &pinned, nil, nil); err != nil {
		log.Fatalf("Failed to pin topic: %v", err)
	}
	log.Printf("Created topic %q with replies and likes", topic.Title)

	if _, err := repo.CreateTopic(users[2].ID, "Middlemarch mid-point check-in",
		"No spoilers past chapter 40, please. How is everyone holding up?"); err != nil {
		log.Fatalf("Failed to create topic: %v", err)
	}
}

func createEvents(db *database.Database, users []*entities.User) {
	repo := events.NewRepository(db.DB)

	event := &entities.Event{
		Title:       "October meetup: Frankenstein",
		Description: "Monthly discussion over coffee. Newcomers welcome.",
		Location:    "Corner Bakery, long table at the back",
		StartsAt:    time.Now().AddDate(0, 0, 21),
		Capacity:    8,
		Status:      entities.EventStatusScheduled,
		Featured:    true,
	}
	if err := repo.CreateEvent(event); err != nil {
		log.Fatalf("Failed to create event: %v", err)
	}

	for _, u := range users[:3] {
		if _, err := repo.RSVP(event.ID, u.ID); err != nil {
			log.Fatalf("Failed to RSVP: %v", err)
		}
	}
	if _, err := repo.CreateComment(event.ID, users[2].ID, "I can bring extra copies for anyone who needs one."); err != nil {
		log.Fatalf("Failed to comment on event: %v", err)
	}
	log.Printf("Created event %q with %d RSVPs", event.Title, 3)
}

func createReadingLists(db *database.Database, users []*entities.User, catalog []*entities.Book) {
	repo := readinglist.NewRepository(db.DB)
	notifRepo := notifications.NewRepository(db.DB)

	entries := []struct {
		user   *entities.User
		book   *entities.Book
		status entities.ReadingStatus
	}{
		{users[1], catalog[1], entities.ReadingStatusReading},
		{users[1], catalog[0], entities.ReadingStatusCompleted},
		{users[2], catalog[2], entities.ReadingStatusToRead},
		{users[2], catalog[0], entities.ReadingStatusCompleted},
		{users[3], catalog[4], entities.ReadingStatusReading},
	}
	for _, e := range entries {
		if _, err := repo.Upsert(e.user.ID, e.book.ID, e.status); err != nil {
			log.Fatalf("Failed to create reading list entry: %v", err)
		}
	}
	log.Printf("Created %d reading list entries", len(entries))

	// A welcome note so the notification feed isn't empty
	for _, u := range users[1:] {
		if _, err := notifRepo.Create(u.ID, "Welcome to the club",
			"Introduce yourself on the forum and RSVP to the next meetup.", "/forum/topics"); err != nil {
			log.Fatalf("Failed to create welcome notification: %v", err)
		}
	}
}
