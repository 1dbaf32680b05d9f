package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// UserInfo is the directory's view of a platform user.
type UserInfo struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DeviceToken string `json:"device_token,omitempty"`
}

// UserDirectory resolves recipient ids against the platform's relational user
// store. The notification pipeline never assumes referential integrity with
// that store; callers fall back to a generic label when a lookup fails.
type UserDirectory interface {
	Resolve(ctx context.Context, userID int64) (*UserInfo, error)
}

// RESTDirectory resolves users over the platform's internal user API.
type RESTDirectory struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTDirectory creates a directory client against the given base URL.
func NewRESTDirectory(baseURL string) *RESTDirectory {
	return &RESTDirectory{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Resolve fetches a single user's public profile.
func (d *RESTDirectory) Resolve(ctx context.Context, userID int64) (*UserInfo, error) {
	url := fmt.Sprintf("%s/api/users/%d", d.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory: user %d lookup returned status %d", userID, resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("directory: failed to decode user %d: %w", userID, err)
	}
	return &info, nil
}
