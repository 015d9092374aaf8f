// Package account drives the customer authentication lifecycle: login,
// registration and logout. It owns the creation and destruction of the
// Session; components that must react to an authentication transition
// (the cart merge, for one) subscribe via OnAuthenticated.
package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/harborline/storefront-go/gateway"
	apperrors "github.com/harborline/storefront-go/internal/errors"
	"github.com/harborline/storefront-go/session"
	"github.com/harborline/storefront-go/wire"
)

// RegisterParams are the fields collected by the signup form.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Service performs auth operations against the commerce API.
type Service struct {
	api     *gateway.Client
	store   session.Store
	nowTime func() time.Time
	logger  zerolog.Logger
	onAuth  []func(ctx context.Context)
}

// Option configures a Service.
type Option func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) { s.nowTime = nowFunc }
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates an account service on top of the gateway client.
func New(api *gateway.Client, store session.Store, options ...Option) (*Service, error) {
	if api == nil {
		return nil, errors.New("[account.New] gateway client is required")
	}
	if store == nil {
		return nil, errors.New("[account.New] session store is required")
	}
	service := &Service{
		api:     api,
		store:   store,
		nowTime: time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// OnAuthenticated registers a hook fired after every successful login or
// registration, once the new session is in the store.
func (s *Service) OnAuthenticated(fn func(ctx context.Context)) {
	s.onAuth = append(s.onAuth, fn)
}

// Login authenticates the customer and establishes the session.
func (s *Service) Login(ctx context.Context, email, password string) (*session.Session, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	var dto wire.AuthResponse
	if err := s.api.Post(ctx, "/auth/login", wire.LoginRequest{Email: email, Password: password}, &dto); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] auth call")
	}
	return s.establishSession(ctx, dto)
}

// Register creates an account and establishes the session, mirroring the
// login transition.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*session.Session, error) {
	if err := validateCredentials(params.Email, params.Password); err != nil {
		return nil, err
	}

	req := wire.RegisterRequest{
		Email:     params.Email,
		Password:  params.Password,
		FirstName: params.FirstName,
		LastName:  params.LastName,
	}
	var dto wire.AuthResponse
	if err := s.api.Post(ctx, "/auth/register", req, &dto); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] auth call")
	}
	return s.establishSession(ctx, dto)
}

// Logout destroys the session. The server-side revocation is best effort:
// the local session is cleared even when the call fails.
func (s *Service) Logout(ctx context.Context) {
	if s.store.Get() == nil {
		return
	}
	if err := s.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		s.logger.Warn().Err(err).Msg("server-side logout failed, clearing local session anyway")
	}
	s.store.Clear()
}

func (s *Service) establishSession(ctx context.Context, dto wire.AuthResponse) (*session.Session, error) {
	if dto.AccessToken == "" || dto.RefreshToken == "" {
		return nil, apperrors.New(apperrors.KindAuth, "auth response missing tokens")
	}

	expiresAt := session.ExpiryFromToken(dto.AccessToken)
	if dto.ExpiresIn > 0 {
		expiresAt = s.nowTime().Add(time.Duration(dto.ExpiresIn) * time.Second)
	}

	sess := &session.Session{
		ClientID:     uuid.New().String(),
		AccessToken:  dto.AccessToken,
		RefreshToken: dto.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         wire.ToUser(dto.User),
	}
	s.store.Set(sess)
	s.logger.Info().Str("user_id", sess.User.ID).Msg("session established")

	for _, fn := range s.onAuth {
		fn(ctx)
	}
	return sess, nil
}

func validateCredentials(email, password string) error {
	fields := map[string]string{}
	email = strings.TrimSpace(email)
	if email == "" {
		fields["email"] = "email is required"
	} else if !strings.Contains(email, "@") {
		fields["email"] = "invalid email format"
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid credentials", fields)
	}
	return nil
}
