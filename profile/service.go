package profile

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"campusbite/backend"
	"campusbite/models"
	"campusbite/session"

	"github.com/go-playground/validator/v10"
)

// RestaurantProvisioner creates a manager's restaurant at sign-up.
type RestaurantProvisioner interface {
	GetOrCreateRestaurant(ctx context.Context, managerAccountID string) (*models.Restaurant, error)
}

type Service struct {
	client      *backend.Client
	resolver    *Resolver
	sessions    *session.Store
	restaurants RestaurantProvisioner
	avatarBase  string
	validate    *validator.Validate
}

// NewService builds the profile service. avatarBase is the endpoint
// initials avatars are served from.
func NewService(client *backend.Client, resolver *Resolver, sessions *session.Store, avatarBase string) *Service {
	return &Service{
		client:     client,
		resolver:   resolver,
		sessions:   sessions,
		avatarBase: strings.TrimRight(avatarBase, "/"),
		validate:   validator.New(),
	}
}

// SetRestaurantProvisioner wires the catalog in after construction; the
// catalog itself depends on the resolver.
func (s *Service) SetRestaurantProvisioner(p RestaurantProvisioner) {
	s.restaurants = p
}

type RegisterInput struct {
	Email    string          `validate:"required,email"`
	Password string          `validate:"required,min=8"`
	Username string          `validate:"required,max=128"`
	Role     models.UserRole `validate:"required,oneof=student hotel_manager delivery"`
}

// Register creates the account and its profile. A hotel manager is also
// signed in and gets a restaurant straight away.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("all fields are required: %w", err)
	}
	log.Printf("Creating user %s (%s) as %s", in.Username, in.Email, in.Role)

	acc, err := s.client.Auth.CreateAccount(ctx, in.Email, in.Password, in.Username)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		AccountID: acc.ID,
		Email:     in.Email,
		Username:  in.Username,
		AvatarURL: s.InitialsURL(in.Username),
		Role:      in.Role,
		Language:  models.LanguageEnglish,
		IsPublic:  true,
	}
	if err := s.client.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("account %s created but profile failed: %w", acc.ID, err)
	}

	if in.Role == models.RoleHotelManager && s.restaurants != nil {
		if _, err := s.sessions.Login(ctx, in.Email, in.Password); err != nil {
			return user, fmt.Errorf("manager %s created but login failed: %w", user.ID, err)
		}
		if _, err := s.restaurants.GetOrCreateRestaurant(ctx, acc.ID); err != nil {
			return user, fmt.Errorf("manager %s created but restaurant failed: %w", user.ID, err)
		}
	}
	return user, nil
}

// InitialsURL is the generated avatar for a username.
func (s *Service) InitialsURL(username string) string {
	return s.avatarBase + "/avatars/initials?name=" + url.QueryEscape(username)
}

type SettingsUpdate struct {
	Username *string
	Language *string
	IsPublic *bool
	Avatar   *backend.FileInput
}

// UpdateSettings changes the caller's own profile. A new username renames
// the account as well.
func (s *Service) UpdateSettings(ctx context.Context, userID string, upd SettingsUpdate) (*models.User, error) {
	active, err := s.sessions.EnsureActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	var patch backend.UserPatch
	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" {
			return nil, fmt.Errorf("username cannot be empty")
		}
		patch.Username = &name
	}
	if upd.Language != nil {
		if *upd.Language != models.LanguageEnglish && *upd.Language != models.LanguageAmharic {
			return nil, fmt.Errorf("unsupported language %q", *upd.Language)
		}
		patch.Language = upd.Language
	}
	patch.IsPublic = upd.IsPublic

	if upd.Avatar != nil {
		file, err := s.client.Files.Upload(ctx, *upd.Avatar)
		if err != nil {
			return nil, err
		}
		avatar := s.client.Files.ViewURL(file.ID)
		patch.AvatarURL = &avatar
	}

	user, err := s.client.Users.Update(ctx, active.UserID, patch)
	if err != nil {
		return nil, err
	}
	if patch.Username != nil {
		if err := s.client.Auth.UpdateName(ctx, *patch.Username); err != nil {
			log.Printf("WARN profile %s renamed but account name update failed: %v", user.ID, err)
		}
	}
	log.Printf("Settings updated for user %s", user.ID)
	return user, nil
}

// DeliveryPersonnel lists delivery profiles that can take assignments.
func (s *Service) DeliveryPersonnel(ctx context.Context) ([]*models.User, error) {
	users, err := s.client.Users.ListByRole(ctx, models.RoleDelivery, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch delivery personnel: %w", err)
	}
	out := users[:0]
	for _, u := range users {
		if u.AccountID != "" && u.Username != "" {
			out = append(out, u)
		}
	}
	return out, nil
}
