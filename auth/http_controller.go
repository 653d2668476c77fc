package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
)

// AuthControllerRoutes holds the relative paths of the auth endpoints
type AuthControllerRoutes struct {
	Login    string
	Register string
	Logout   string
	Me       string
}

type AuthController struct {
	Debug       bool
	Logger      Logger
	Repo        RepositoryManager
	Auther      Authenticator
	Revocations RevocationStore
	Activity    ActivitySink
	ContextKey  string
	Routes      *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerRevocations(store RevocationStore) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Revocations = store
		return c
	}
}

// WithControllerActivity sets the sink receiving login, register and
// logout events
func WithControllerActivity(sink ActivitySink) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Activity = sink
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = resolveLogger(logger)
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger(),
		ContextKey: "user",
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			Register: "/register",
			Logout:   "/logout",
			Me:       "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints, login and register are
// public while the rest go through the protected middleware
func RegisterAuthRoutes[T any](app router.Router[T], protected router.MiddlewareFunc, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.Register).
		SetName("register.post")
	app.Post(controller.Routes.Login, controller.Login).
		SetName("sign-in.post")
	app.Get(controller.Routes.Me, controller.Me, protected).
		SetName("me.get")
	app.Post(controller.Routes.Logout, controller.Logout, protected).
		SetName("sign-out.post")

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r LoginRequest) GetIdentifier() string {
	return strings.TrimSpace(r.Email)
}

func (r LoginRequest) GetPassword() string {
	return r.Password
}

var _ LoginPayload = LoginRequest{}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RegisterRequest payload
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) Login(c router.Context) error {
	payload := new(LoginRequest)

	if err := c.Bind(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse login payload").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	if a.Debug {
		a.Logger.Debug("auth login", "payload", print.MaybePrettyJSON(map[string]string{"email": payload.Email}))
	}

	token, identity, err := a.Auther.Login(c.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		RecordActivity(c.Context(), a.Activity, a.Logger, ActivityEvent{
			EventType:  ActivityEventLoginFailure,
			ObjectType: "users",
			Metadata:   map[string]any{"email": payload.GetIdentifier()},
		})
		return err
	}

	RecordActivity(c.Context(), a.Activity, a.Logger, ActivityEvent{
		EventType:  ActivityEventLoginSuccess,
		Actor:      ActorRef{ID: identity.ID(), Role: identity.Role()},
		ObjectType: "users",
		ObjectID:   identity.ID(),
	})

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  IdentityView(identity),
	})
}

func (a *AuthController) Register(c router.Context) error {
	payload := new(RegisterRequest)

	if err := c.Bind(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse registration payload").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return err
	}

	user := &User{
		Name:         strings.TrimSpace(payload.Name),
		Email:        payload.Email,
		PasswordHash: hash,
		Role:         RoleGuest,
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	err = a.Repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := a.Repo.Users().RegisterTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	a.Logger.Info("user registered", "user_id", user.ID.String())

	RecordActivity(c.Context(), a.Activity, a.Logger, ActivityEvent{
		EventType:  ActivityEventUserRegistered,
		Actor:      ActorRef{ID: user.ID.String(), Role: string(user.Role)},
		ObjectType: "users",
		ObjectID:   user.ID.String(),
	})

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    IdentityView(user.ToIdentity()),
	})
}

func (a *AuthController) Me(c router.Context) error {
	claims, ok := GetRouterClaims(c, a.ContextKey)
	if !ok {
		return ErrUnableToDecodeSession
	}

	identity, err := a.Auther.IdentityFromClaims(c.Context(), claims)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user": IdentityView(identity),
	})
}

// Logout revokes the presented token until it would have expired
func (a *AuthController) Logout(c router.Context) error {
	claims, ok := GetRouterClaims(c, a.ContextKey)
	if !ok {
		return ErrUnableToDecodeSession
	}

	if a.Revocations != nil {
		if err := a.Revocations.Revoke(c.Context(), claims.TokenID(), claims.Expires()); err != nil {
			return err
		}
	}

	a.Logger.Info("user logged out", "user_id", claims.UserID(), "jti", claims.TokenID())

	RecordActivity(c.Context(), a.Activity, a.Logger, ActivityEvent{
		EventType:  ActivityEventLogout,
		Actor:      ActorRef{ID: claims.UserID(), Role: claims.Role()},
		ObjectType: "users",
		ObjectID:   claims.UserID(),
	})

	return c.NoContent(http.StatusNoContent)
}
