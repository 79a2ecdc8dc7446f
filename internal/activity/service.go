package activity

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxEntries caps a single activity fetch to the most recent records.
const MaxEntries = 50

// Service reads the activity log and normalizes it for the admin dashboard.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// ListRecent returns at most MaxEntries entries, newest first, with every
// timestamp rewritten as an ISO-8601 string regardless of how the store
// represented it.
func (s *Service) ListRecent(ctx context.Context) ([]Entry, error) {
	entries, err := s.repo.ListRecent(ctx, MaxEntries)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if ts, ok := e["timestamp"]; ok {
			e["timestamp"] = normalizeTimestamp(ts)
		}
	}
	return entries, nil
}

// normalizeTimestamp converts the store's native temporal representation into
// an RFC3339 string. Unknown types are stringified rather than dropped.
func normalizeTimestamp(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	case int64:
		return time.Unix(t, 0).UTC().Format(time.RFC3339)
	case float64:
		return time.Unix(int64(t), 0).UTC().Format(time.RFC3339)
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
		return t
	default:
		return fmt.Sprintf("%v", v)
	}
}

func idString(v interface{}) string {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	default:
		return fmt.Sprintf("%v", v)
	}
}
