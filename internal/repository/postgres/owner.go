package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/internal/repository"
)

type ownerRepository struct {
	BaseRepository
}

func NewOwnerRepository(base BaseRepository) repository.OwnerRepository {
	return &ownerRepository{base}
}

func (r *ownerRepository) AdminChatID(ctx context.Context) (string, error) {
	query := `SELECT value FROM config WHERE key = 'admin_chat_id'`

	var chatID string
	err := r.GetDB().GetContext(ctx, &chatID, query)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get admin chat id: %w", err)
	}
	return chatID, nil
}

func (r *ownerRepository) Register(ctx context.Context, owner *model.Owner) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		// The INSERT fails on the primary key if a second registration
		// races past the read check.
		var existing string
		err := tx.GetContext(ctx, &existing, `SELECT value FROM config WHERE key = 'admin_chat_id'`)
		if err == nil {
			return repository.ErrOwnerExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check owner slot: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO config (key, value) VALUES ('admin_chat_id', $1)`,
			owner.ChatID,
		); err != nil {
			return fmt.Errorf("failed to reserve owner slot: %w", err)
		}

		query := `
			INSERT INTO owners (chat_id, name, username, shop_name, phone, address, email, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		`
		if _, err := tx.ExecContext(ctx, query,
			owner.ChatID, owner.Name, owner.Username, owner.ShopName,
			owner.Phone, owner.Address, owner.Email,
		); err != nil {
			return fmt.Errorf("failed to create owner record: %w", err)
		}
		return nil
	})
}

func (r *ownerRepository) Get(ctx context.Context) (*model.Owner, error) {
	query := `
		SELECT o.chat_id, o.name, o.username, o.shop_name, o.phone, o.address, o.email, o.created_at
		FROM owners o
		JOIN config c ON c.key = 'admin_chat_id' AND c.value = o.chat_id
		ORDER BY o.created_at DESC
		LIMIT 1
	`

	var owner model.Owner
	err := r.GetDB().GetContext(ctx, &owner, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return &owner, nil
}

func (r *ownerRepository) Update(ctx context.Context, chatID string, req *model.UpdateOwnerRequest) error {
	query := `
		UPDATE owners SET
			shop_name = COALESCE($2, shop_name),
			phone = COALESCE($3, phone),
			address = COALESCE($4, address),
			email = COALESCE($5, email)
		WHERE chat_id = $1
	`

	result, err := r.GetDB().ExecContext(ctx, query, chatID, req.ShopName, req.Phone, req.Address, req.Email)
	if err != nil {
		return fmt.Errorf("failed to update owner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ownerRepository) Reset(ctx context.Context) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var chatID string
		err := tx.GetContext(ctx, &chatID, `SELECT value FROM config WHERE key = 'admin_chat_id'`)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to resolve owner for reset: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM config WHERE key = 'admin_chat_id'`); err != nil {
			return fmt.Errorf("failed to clear owner slot: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM owners WHERE chat_id = $1`, chatID); err != nil {
			return fmt.Errorf("failed to delete owner record: %w", err)
		}
		// Reset cascades to the credential association.
		if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE chat_id = $1`, chatID); err != nil {
			return fmt.Errorf("failed to delete owner credentials: %w", err)
		}
		return nil
	})
}
