package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"github.com/KevinHdezVaz/Lumorah-back/internal/models"
)

var (
	ErrFederatedTokenInvalid = errors.New("federated token invalid")
	ErrAudienceMismatch      = errors.New("token audience does not match this application")
	ErrEmailMissing          = errors.New("federated identity carries no verified email")
)

// Identity is a verified federated identity.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// GoogleVerifier validates Google ID tokens against Google's public keys.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// FacebookVerifier validates Facebook user access tokens via the Graph API.
type FacebookVerifier interface {
	Verify(ctx context.Context, accessToken string) (*Identity, error)
}

type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier builds a verifier bound to this application's OAuth
// client ID. Signature verification is delegated to Google's validator.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, ErrFederatedTokenInvalid
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrEmailMissing
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, ErrEmailMissing
	}
	name, _ := payload.Claims["name"].(string)

	return &Identity{
		Provider: models.ProviderGoogle,
		Subject:  payload.Subject,
		Email:    email,
		Name:     name,
	}, nil
}

type facebookVerifier struct {
	appID     string
	appSecret string
	baseURL   string
	client    *http.Client
}

// NewFacebookVerifier builds a verifier bound to this application's
// Facebook app. Token introspection goes through the Graph debug_token
// endpoint; the token's app id must match ours.
func NewFacebookVerifier(appID, appSecret string) FacebookVerifier {
	return &facebookVerifier{
		appID:     appID,
		appSecret: appSecret,
		baseURL:   "https://graph.facebook.com/v18.0",
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type fbDebugResponse struct {
	Data struct {
		AppID   string `json:"app_id"`
		IsValid bool   `json:"is_valid"`
		UserID  string `json:"user_id"`
	} `json:"data"`
}

type fbProfileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (v *facebookVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	debugURL := fmt.Sprintf("%s/debug_token?input_token=%s&access_token=%s",
		v.baseURL,
		url.QueryEscape(accessToken),
		url.QueryEscape(v.appID+"|"+v.appSecret),
	)

	var debug fbDebugResponse
	if err := v.getJSON(ctx, debugURL, &debug); err != nil {
		return nil, err
	}
	if !debug.Data.IsValid {
		return nil, ErrFederatedTokenInvalid
	}
	if debug.Data.AppID != v.appID {
		return nil, ErrAudienceMismatch
	}

	profileURL := fmt.Sprintf("%s/me?fields=id,name,email&access_token=%s",
		v.baseURL, url.QueryEscape(accessToken))

	var profile fbProfileResponse
	if err := v.getJSON(ctx, profileURL, &profile); err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, ErrEmailMissing
	}

	return &Identity{
		Provider: models.ProviderFacebook,
		Subject:  profile.ID,
		Email:    profile.Email,
		Name:     profile.Name,
	}, nil
}

func (v *facebookVerifier) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrFederatedTokenInvalid
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FederatedLogin maps a verified identity to a local account, creating one
// on first login and binding the provider subject, then mints a bearer
// token.
func (s *AuthService) FederatedLogin(ctx context.Context, identity *Identity, ipAddress, userAgent string) (*AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", identity.Email).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{"last_login_at": time.Now()}
		if user.ProviderID == "" {
			updates["provider"] = identity.Provider
			updates["provider_id"] = identity.Subject
		}
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ID:         uuid.New(),
			Email:      identity.Email,
			Name:       identity.Name,
			Provider:   identity.Provider,
			ProviderID: identity.Subject,
			Language:   "es",
			IsActive:   true,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	token, err := s.issueToken(ctx, &user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResponse{User: &user, Token: token}, nil
}
