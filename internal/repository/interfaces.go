package repository

import (
	"context"
	"errors"

	"github.com/dromero/barberbot/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrOwnerExists is returned when a second owner registration is
	// attempted. The owner slot is single-occupancy until an explicit reset.
	ErrOwnerExists = errors.New("owner already configured")
)

// OwnerRepository manages the single admin/tenant record.
type OwnerRepository interface {
	// AdminChatID returns the configured owner's chat identity, or
	// ErrNotFound when the bot is unconfigured.
	AdminChatID(ctx context.Context) (string, error)
	// Register sets the owner. Fails with ErrOwnerExists if the slot is
	// already taken.
	Register(ctx context.Context, owner *model.Owner) error
	Get(ctx context.Context) (*model.Owner, error)
	Update(ctx context.Context, chatID string, req *model.UpdateOwnerRequest) error
	// Reset clears the owner record and cascades to stored credentials.
	Reset(ctx context.Context) error
}

// CredentialRepository manages per-chat-identity OAuth credential records.
type CredentialRepository interface {
	Save(ctx context.Context, cred *model.Credential) error
	Get(ctx context.Context, chatID string) (*model.Credential, error)
	Delete(ctx context.Context, chatID string) error
}
