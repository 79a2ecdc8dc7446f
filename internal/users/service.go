package users

import (
	"context"
	"errors"
	"sort"

	"github.com/apt-tech/connect-backend/internal/models"
)

// ErrMissingFields is returned when a create payload omits a required field.
var ErrMissingFields = errors.New("all fields are required")

// CreateRequest carries the signup payload. Every field is required.
type CreateRequest struct {
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	College     string `json:"college"`
	YearOfStudy string `json:"year_of_study"`
}

// patchable is the set of user fields a PATCH may touch. Anything else in the
// request body is dropped rather than written into the document.
var patchable = map[string]bool{
	"firstname":         true,
	"lastname":          true,
	"email":             true,
	"password":          true,
	"college":           true,
	"year_of_study":     true,
	"role":              true,
	"isStudentApproved": true,
}

// Service encapsulates user-related business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Create validates the signup payload and inserts a new account. Email
// uniqueness is enforced by the repository (ErrEmailTaken), not by a
// check-then-insert sequence, so racing creates cannot both succeed.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	if req.Firstname == "" || req.Lastname == "" || req.Email == "" ||
		req.Password == "" || req.College == "" || req.YearOfStudy == "" {
		return "", ErrMissingFields
	}
	u := &models.User{
		Firstname:   req.Firstname,
		Lastname:    req.Lastname,
		Email:       req.Email,
		Password:    req.Password,
		College:     req.College,
		YearOfStudy: req.YearOfStudy,
		Role:        models.RoleStudent,
	}
	return s.repo.Insert(ctx, u)
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Patch merges the supplied fields into the existing record. Unknown fields
// are ignored; untouched fields keep their stored values.
func (s *Service) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	filtered := map[string]interface{}{}
	for k, v := range fields {
		if patchable[k] {
			filtered[k] = v
		}
	}
	return s.repo.Patch(ctx, id, filtered)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// GetRole looks up the stored role for the given uid. Used by the authorizer
// when the verified token carries no role claim.
func (s *Service) GetRole(ctx context.Context, uid string) (string, error) {
	u, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// SetApproval records an admin approval decision for a student account.
func (s *Service) SetApproval(ctx context.Context, uid string, approved bool) error {
	return s.repo.Patch(ctx, uid, map[string]interface{}{"isStudentApproved": approved})
}

// approvalRank orders roster entries: pending first, then approved, then rejected.
func approvalRank(v *bool) int {
	switch {
	case v == nil:
		return 0
	case *v:
		return 1
	default:
		return 2
	}
}

// ListStudents returns every student account projected for the admin roster,
// sorted by approval status (pending, approved, rejected). The sort is stable
// so store order is preserved within each group.
func (s *Service) ListStudents(ctx context.Context) ([]models.StudentSummary, error) {
	students, err := s.repo.FindByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	out := make([]models.StudentSummary, 0, len(students))
	for _, u := range students {
		sum := models.StudentSummary{
			UID:               u.ID,
			Email:             u.Email,
			IsStudentApproved: u.IsStudentApproved,
		}
		if u.Firstname != "" {
			f := u.Firstname
			sum.FirstName = &f
		}
		if u.Lastname != "" {
			l := u.Lastname
			sum.LastName = &l
		}
		out = append(out, sum)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return approvalRank(out[i].IsStudentApproved) < approvalRank(out[j].IsStudentApproved)
	})
	return out, nil
}
