package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Stores bundles every collaborator store the dashboard reads from.
type Stores struct {
	Departments DepartmentRepository
	Identities  IdentityRepository
	Users       UserRepository
	Tickets     TicketRepository
	Tasks       TaskRepository
	Faqs        FaqRepository
	Activity    ActivityRepository
}

// NewStores builds the Postgres stores over pool and the activity store over
// redisClient.
func NewStores(pool *pgxpool.Pool, redisClient redis.Cmdable, loc *time.Location, activityRetention time.Duration) Stores {
	return Stores{
		Departments: NewDepartmentRepository(pool),
		Identities:  NewIdentityRepository(pool),
		Users:       NewUserRepository(pool),
		Tickets:     NewTicketRepository(pool),
		Tasks:       NewTaskRepository(pool),
		Faqs:        NewFaqRepository(pool),
		Activity:    NewActivityRepository(redisClient, loc, activityRetention),
	}
}
