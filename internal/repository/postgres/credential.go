package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/internal/repository"
	"github.com/dromero/barberbot/pkg/security"
)

// credentialRepository stores OAuth credential records as AES-GCM encrypted
// JSON, keyed by chat identity.
type credentialRepository struct {
	BaseRepository
	encryptor security.Encryptor
}

func NewCredentialRepository(base BaseRepository, encryptor security.Encryptor) repository.CredentialRepository {
	return &credentialRepository{BaseRepository: base, encryptor: encryptor}
}

func (r *credentialRepository) Save(ctx context.Context, cred *model.Credential) error {
	payload, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	encrypted, err := security.EncryptString(r.encryptor, string(payload))
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %w", err)
	}

	query := `
		INSERT INTO credentials (chat_id, payload, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET payload = $2, updated_at = NOW()
	`

	if _, err := r.GetDB().ExecContext(ctx, query, cred.ChatID, encrypted); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (r *credentialRepository) Get(ctx context.Context, chatID string) (*model.Credential, error) {
	query := `SELECT payload FROM credentials WHERE chat_id = $1`

	var encrypted string
	err := r.GetDB().GetContext(ctx, &encrypted, query, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	payload, err := security.DecryptString(r.encryptor, encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credential: %w", err)
	}

	var cred model.Credential
	if err := json.Unmarshal([]byte(payload), &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	cred.ChatID = chatID
	return &cred, nil
}

func (r *credentialRepository) Delete(ctx context.Context, chatID string) error {
	query := `DELETE FROM credentials WHERE chat_id = $1`

	if _, err := r.GetDB().ExecContext(ctx, query, chatID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
