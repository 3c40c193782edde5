package main

import (
	"flag"
	"fmt"
	"time"

	"task-notify/pkg/config"
	"task-notify/pkg/database"
	"task-notify/pkg/jwt"
	"task-notify/pkg/logger"
	"task-notify/pkg/models"
	"task-notify/pkg/queue"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Fixed so repeated seeds land in the same organization.
const seedOrganizationID = "5b0c1f9e-3d4a-4c7e-9a61-0f2d8e7b6a10"

func main() {
	var publish bool
	flag.BoolVar(&publish, "publish", false, "Publish task.created events for seeded tasks")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	users, tasks, err := seedDatabase(db, cfg, log)
	if err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	if publish {
		queueClient, err := queue.NewRabbitMQClient(cfg, log)
		if err != nil {
			log.Error("Failed to connect to RabbitMQ: %v", err)
			panic(err)
		}
		defer queueClient.Close()
		for _, task := range tasks {
			event := queue.TaskEvent{
				Type:           queue.EventTaskCreated,
				TaskID:         task.ID,
				ActorID:        task.CreatedBy,
				OrganizationID: task.OrganizationID,
			}
			if err := queueClient.PublishTaskEvent(event); err != nil {
				log.Error("Failed to publish event for task %s: %v", task.Title, err)
			}
		}
		log.Info("Published %d task.created events", len(tasks))
	}

	tokens := jwt.NewService(cfg.JWTSecret)
	for _, user := range users {
		token, err := tokens.GenerateOrganizationToken(user.ID, string(user.Role), user.OrganizationID)
		if err != nil {
			log.Error("Failed to sign token for %s: %v", user.Email, err)
			continue
		}
		fmt.Printf("%-22s %-6s %s\n", user.Email, user.Role, token)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, cfg *config.Config, log *logger.Logger) ([]models.User, []models.Task, error) {
	testUsers := []struct {
		email string
		name  string
		role  models.UserRole
	}{
		{"alice@test.com", "Alice", models.RoleAdmin},
		{"bob@test.com", "Bob", models.RoleMember},
		{"charlie@test.com", "Charlie", models.RoleMember},
		{"diana@test.com", "Diana", models.RoleMember},
		{"eve@test.com", "Eve", models.RoleMember},
	}

	users := make([]models.User, 0, len(testUsers))
	for _, userData := range testUsers {
		var existing models.User
		if err := db.Where("email = ?", userData.email).First(&existing).Error; err == nil {
			log.Info("User %s already exists, skipping", userData.email)
			users = append(users, existing)
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash password: %w", err)
		}

		user := models.User{
			OrganizationID: seedOrganizationID,
			Email:          userData.email,
			Name:           userData.name,
			Password:       string(hashedPassword),
			Role:           userData.role,
			IsActive:       true,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}
		log.Info("Created user: %s (%s)", user.Name, user.Email)
		users = append(users, user)
	}

	lead := users[1].ID
	var team models.Team
	if err := db.Where("organization_id = ? AND name = ?", seedOrganizationID, "Platform").First(&team).Error; err != nil {
		team = models.Team{OrganizationID: seedOrganizationID, Name: "Platform", LeadID: &lead}
		if err := db.Create(&team).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to create team: %w", err)
		}
		for _, member := range users[1:] {
			tm := models.TeamMember{TeamID: team.ID, UserID: member.ID, IsActive: true}
			if err := db.Create(&tm).Error; err != nil {
				log.Error("Failed to add %s to team: %v", member.Email, err)
			}
		}
		log.Info("Created team Platform with %d members", len(users)-1)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 17, 0, 0, 0, loc)

	// One task per default threshold, alternating user and team assignment.
	specs := []struct {
		title string
		days  int
		team  bool
	}{
		{"Ship quarterly report", 0, false},
		{"Review onboarding flow", 1, true},
		{"Prepare sprint demo", 3, false},
		{"Rotate API credentials", 7, true},
	}

	tasks := make([]models.Task, 0, len(specs))
	for i, spec := range specs {
		due := today.AddDate(0, 0, spec.days).UTC()
		task := models.Task{
			ID:             uuid.NewString(),
			OrganizationID: seedOrganizationID,
			Title:          spec.title,
			Status:         models.TaskStatusTodo,
			Priority:       []string{"urgent", "high", "medium", "low"}[i%4],
			DueDate:        &due,
			CreatedBy:      users[0].ID,
		}
		if spec.team {
			task.TeamID = &team.ID
		} else {
			assignee := users[2+i%3].ID
			task.AssigneeID = &assignee
		}
		if err := db.Create(&task).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to create task %s: %w", spec.title, err)
		}
		log.Info("Created task %q due %s", task.Title, due.Format(time.RFC3339))
		tasks = append(tasks, task)
	}

	return users, tasks, nil
}
