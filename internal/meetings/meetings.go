package meetings

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrRoomExists = errors.New("room already exists")

// Meeting records that a video room was opened. Written once per room and
// never read back by this service.
type Meeting struct {
	RoomID    string    `bson:"_id" json:"roomId"`
	HostUID   string    `bson:"hostUid" json:"hostUid"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Repository persists meeting records.
type Repository interface {
	Create(ctx context.Context, m *Meeting) error
}

// MongoRepository stores meetings keyed by room id; the _id primary key makes
// the create idempotency check atomic.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, m *Meeting) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrRoomExists
		}
		return err
	}
	return nil
}

// Service wraps repository operations for room creation.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

func (s *Service) CreateRoom(ctx context.Context, roomID, hostUID string) error {
	m := &Meeting{RoomID: roomID, HostUID: hostUID, CreatedAt: time.Now().UTC()}
	return s.repo.Create(ctx, m)
}
