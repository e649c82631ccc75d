package model

import "time"

// Owner is the single business owner (admin tenant) the bot is configured
// for. At most one owner may exist per deployment.
type Owner struct {
	ChatID    string    `db:"chat_id" json:"chat_id"`
	Name      string    `db:"name" json:"name"`
	Username  string    `db:"username" json:"username,omitempty"`
	ShopName  string    `db:"shop_name" json:"shop_name,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Address   string    `db:"address" json:"address,omitempty"`
	Email     string    `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type UpdateOwnerRequest struct {
	ShopName *string `json:"shop_name" validate:"omitempty,min=1,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// TenantState is the startup/runtime readiness of the single tenant.
type TenantState int

const (
	// TenantNone means no owner has completed /setup yet.
	TenantNone TenantState = iota
	// TenantUncredentialed means an owner exists but has not linked a calendar.
	TenantUncredentialed
	// TenantReady means the owner exists and stored credentials are usable.
	TenantReady
)

func (s TenantState) String() string {
	switch s {
	case TenantNone:
		return "unconfigured"
	case TenantUncredentialed:
		return "uncredentialed"
	case TenantReady:
		return "ready"
	default:
		return "unknown"
	}
}
