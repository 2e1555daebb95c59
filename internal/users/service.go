package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/userapi/internal/platform/lock"
)

// Service implements the user operations as read-modify-write cycles over a Store.
type Service struct {
	store    Store
	locker   lock.Locker
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService builds Service instance. Mutations are serialized through locker.
func NewService(store Store, locker lock.Locker, logger *slog.Logger) *Service {
	if locker == nil {
		locker = lock.NewMemory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	validate := validator.New()
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if age, ok := field.Interface().(Age); ok {
			return age.Given()
		}
		return nil
	}, Age{})
	return &Service{store: store, locker: locker, validate: validate, logger: logger}
}

// List returns the whole collection.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.ReadAll(ctx)
}

// Get returns the user with id.
func (s *Service) Get(ctx context.Context, id int) (User, error) {
	users, err := s.store.ReadAll(ctx)
	if err != nil {
		return User{}, err
	}
	idx := indexOf(users, id)
	if idx < 0 {
		return User{}, userNotFound(id)
	}
	return users[idx], nil
}

// Create appends a user with the next free id.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return User{}, ErrMissingFields
		}
		return User{}, fmt.Errorf("users: validate create: %w", err)
	}
	age, ok := req.Age.Int()
	if !ok {
		return User{}, ErrInvalidAge
	}

	var created User
	err := s.withWriteLock(ctx, func(ctx context.Context) error {
		users, err := s.store.ReadAll(ctx)
		if err != nil {
			return err
		}
		if emailInUse(users, req.Email, -1) {
			return ErrEmailExists
		}
		created = User{ID: nextID(users), Name: req.Name, Age: age, Email: req.Email}
		return s.store.WriteAll(ctx, append(users, created))
	})
	if err != nil {
		return User{}, err
	}
	return created, nil
}

// Update applies the fields present in req to the user with id.
// Empty strings and a numeric zero age are ignored like absent fields.
func (s *Service) Update(ctx context.Context, id int, req UpdateUserRequest) (User, error) {
	var updated User
	err := s.withWriteLock(ctx, func(ctx context.Context) error {
		users, err := s.store.ReadAll(ctx)
		if err != nil {
			return err
		}
		idx := indexOf(users, id)
		if idx < 0 {
			return userNotFound(id)
		}
		target := users[idx]
		if req.Name != nil && *req.Name != "" {
			target.Name = *req.Name
		}
		if req.Age.Given() {
			age, ok := req.Age.Int()
			if !ok {
				return ErrInvalidAge
			}
			target.Age = age
		}
		if req.Email != nil && *req.Email != "" && *req.Email != target.Email {
			if emailInUse(users, *req.Email, idx) {
				return ErrEmailTaken
			}
			target.Email = *req.Email
		}
		users[idx] = target
		if err := s.store.WriteAll(ctx, users); err != nil {
			return err
		}
		updated = target
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

// Delete removes the user with id.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.withWriteLock(ctx, func(ctx context.Context) error {
		users, err := s.store.ReadAll(ctx)
		if err != nil {
			return err
		}
		remaining := make([]User, 0, len(users))
		for _, u := range users {
			if u.ID != id {
				remaining = append(remaining, u)
			}
		}
		if len(remaining) == len(users) {
			return userNotFound(id)
		}
		return s.store.WriteAll(ctx, remaining)
	})
}

func (s *Service) withWriteLock(ctx context.Context, fn func(context.Context) error) error {
	unlock, err := s.locker.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("users: acquire write lock: %w", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release write lock", slog.Any("error", err))
		}
	}()
	return fn(ctx)
}
