package user

import "context"

// UserRepository defines the persistence contract for users.
type UserRepository interface {
	// FindByID returns a NotFound error when the user does not exist.
	FindByID(ctx context.Context, id int64) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// Save inserts the user and returns it with its assigned id. A duplicate
	// email yields a Conflict error.
	Save(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
}
