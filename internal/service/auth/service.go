package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/dromero/barberbot/internal/config"
	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/internal/repository"
	"github.com/dromero/barberbot/pkg/logger"
)

// Scopes requested when the owner links their Google account.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/spreadsheets",
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

const stateTTL = 15 * time.Minute

var (
	ErrInvalidState = errors.New("invalid or expired oauth state")
	ErrExchange     = errors.New("token exchange failed")
)

// Service drives the OAuth link flow and resolves tenant readiness.
type Service struct {
	owners   repository.OwnerRepository
	creds    repository.CredentialRepository
	oauthCfg *oauth2.Config
	stateKey []byte
	logger   *logger.Logger
}

func NewService(
	owners repository.OwnerRepository,
	creds repository.CredentialRepository,
	googleCfg config.GoogleConfig,
	secrets *config.Secrets,
	log *logger.Logger,
) *Service {
	return &Service{
		owners: owners,
		creds:  creds,
		oauthCfg: &oauth2.Config{
			ClientID:     secrets.GoogleClientID,
			ClientSecret: secrets.GoogleClientSecret,
			RedirectURL:  secrets.OAuthRedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleCfg.AuthURL,
				TokenURL: googleCfg.TokenURL,
			},
			Scopes: Scopes,
		},
		stateKey: []byte(secrets.StateSigningKey),
		logger:   log,
	}
}

// BuildAuthURL returns the Google consent URL for a chat user. The state
// parameter is a short-lived signed token carrying the chat id, so the
// callback cannot be forged to bind tokens to another account.
func (s *Service) BuildAuthURL(chatID string) (string, error) {
	state, err := s.signState(chatID)
	if err != nil {
		return "", fmt.Errorf("failed to sign oauth state: %w", err)
	}

	return s.oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	), nil
}

// HandleCallback exchanges the authorization code and persists the resulting
// credential for the chat user named in the state token.
func (s *Service) HandleCallback(ctx context.Context, state, code string) error {
	chatID, err := s.verifyState(state)
	if err != nil {
		return err
	}

	token, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		s.logger.Error(err, "oauth code exchange failed", "chat_id", chatID)
		return fmt.Errorf("%w: %v", ErrExchange, err)
	}

	cred := &model.Credential{
		ChatID:       chatID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenURL:     s.oauthCfg.Endpoint.TokenURL,
		ClientID:     s.oauthCfg.ClientID,
		ClientSecret: s.oauthCfg.ClientSecret,
		Scopes:       s.oauthCfg.Scopes,
		Expiry:       token.Expiry,
	}

	if err := s.creds.Save(ctx, cred); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	s.logger.Info("calendar linked", "chat_id", chatID)
	return nil
}

// Credentials returns the stored credential record for a chat user, or
// repository.ErrNotFound.
func (s *Service) Credentials(ctx context.Context, chatID string) (*model.Credential, error) {
	return s.creds.Get(ctx, chatID)
}

// ResolveTenant reports the single tenant's readiness: no owner yet, owner
// without usable credentials, or ready. On TenantReady the owner chat id and
// credential are returned.
func (s *Service) ResolveTenant(ctx context.Context) (model.TenantState, string, *model.Credential, error) {
	chatID, err := s.owners.AdminChatID(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return model.TenantNone, "", nil, nil
	}
	if err != nil {
		return model.TenantNone, "", nil, err
	}

	cred, err := s.creds.Get(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.TenantUncredentialed, chatID, nil, nil
	}
	if err != nil {
		return model.TenantUncredentialed, chatID, nil, err
	}
	if !cred.Valid() {
		return model.TenantUncredentialed, chatID, nil, nil
	}

	return model.TenantReady, chatID, cred, nil
}

type stateClaims struct {
	jwt.RegisteredClaims
}

func (s *Service) signState(chatID string) (string, error) {
	now := time.Now()
	claims := stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   chatID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.stateKey)
}

func (s *Service) verifyState(state string) (string, error) {
	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.stateKey, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidState
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidState
	}
	return claims.Subject, nil
}
