package protocol

// LoginRequest is the credential pair posted to /auth/login/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token. SimpleJWT names it "access",
// other providers use "access_token"; both are accepted.
type LoginResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	Access      string `json:"access,omitempty"`
	Refresh     string `json:"refresh,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
}

// Token returns the bearer token, preferring access_token over access.
func (r LoginResponse) Token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Access
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	WhopEmail string `json:"whop_email,omitempty"`
}

// ProfileUpdate is a partial user record for PATCH /auth/me.
// Nil fields are left untouched by the backend.
type ProfileUpdate struct {
	Username          *string `json:"username,omitempty"`
	FullName          *string `json:"full_name,omitempty"`
	AvatarURL         *string `json:"avatar_url,omitempty"`
	WhopEmail         *string `json:"whop_email,omitempty"`
	InstagramUsername *string `json:"instagram_username,omitempty"`
	TiktokUsername    *string `json:"tiktok_username,omitempty"`
	YoutubeChannel    *string `json:"youtube_channel,omitempty"`
	TwitterUsername   *string `json:"twitter_username,omitempty"`
}

// SubmitRequest posts a clip to a campaign. CampaignID duplicates the
// path parameter on purpose; the backend reads it from the body.
type SubmitRequest struct {
	VideoURL   string `json:"video_url"`
	Title      string `json:"title,omitempty"`
	CampaignID int64  `json:"campaign_id"`
}

// ChatRequest is a single chat widget message.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// CreateTicketRequest escalates a chat conversation to support.
type CreateTicketRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	Subject   string `json:"subject,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// TicketMessageRequest appends a message to an existing ticket.
type TicketMessageRequest struct {
	Message       string `json:"message"`
	IsFromSupport bool   `json:"is_from_support"`
}

// OAuthExchangeRequest trades a provider authorization code for a linked account.
type OAuthExchangeRequest struct {
	Platform string `json:"platform"`
	Code     string `json:"code"`
}

// ManualLinkRequest links an account by handle without OAuth.
type ManualLinkRequest struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// ConnectURLResponse holds the provider consent URL for the OAuth hand-off.
type ConnectURLResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the error body shape used by the backend.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Page is the paginated list envelope. Some list endpoints return it
// instead of a bare JSON array depending on backend pagination settings.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
