package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	FullName          string    `json:"full_name,omitempty"`
	DisplayName       string    `json:"display_name,omitempty"`
	Role              Role      `json:"role"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	WhopEmail         string    `json:"whop_email,omitempty"`
	InstagramUsername string    `json:"instagram_username,omitempty"`
	TiktokUsername    string    `json:"tiktok_username,omitempty"`
	YoutubeChannel    string    `json:"youtube_channel,omitempty"`
	TwitterUsername   string    `json:"twitter_username,omitempty"`
	IsActive          bool      `json:"is_active"`
	IsVerified        bool      `json:"is_verified"`
	CreatedAt         Timestamp `json:"created_at"`
	DateJoined        Timestamp `json:"date_joined"`
}

// IsAdmin reports whether the backend assigned the admin role.
// It is informational only; authorization is enforced server-side.
func (u User) IsAdmin() bool {
	return u.Role.Is(RoleAdmin)
}

// Joined returns the account creation time, whichever field the backend filled.
func (u User) Joined() time.Time {
	if !u.CreatedAt.IsZero() {
		return u.CreatedAt.Time
	}
	return u.DateJoined.Time
}

// LinkedHandles returns the social handles stored on the profile, keyed by platform.
func (u User) LinkedHandles() map[Platform]string {
	handles := make(map[Platform]string)
	if u.InstagramUsername != "" {
		handles[PlatformInstagram] = u.InstagramUsername
	}
	if u.TiktokUsername != "" {
		handles[PlatformTikTok] = u.TiktokUsername
	}
	if u.YoutubeChannel != "" {
		handles[PlatformYouTube] = u.YoutubeChannel
	}
	if u.TwitterUsername != "" {
		handles[PlatformOther] = u.TwitterUsername
	}
	return handles
}

type Campaign struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	CreatorName  string          `json:"creator_name,omitempty"`
	Category     string          `json:"category,omitempty"`
	PayoutType   string          `json:"payout_type,omitempty"`
	PayoutRate   decimal.Decimal `json:"payout_rate"`
	MinPayout    decimal.Decimal `json:"min_payout"`
	MaxPayout    decimal.Decimal `json:"max_payout"`
	TotalBudget  decimal.Decimal `json:"total_budget"`
	UsedBudget   decimal.Decimal `json:"used_budget"`
	Platform     string          `json:"platform,omitempty"`
	Requirements string          `json:"requirements,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	IsActive     bool            `json:"is_active"`
	Deadline     Timestamp       `json:"deadline"`
	CreatedAt    Timestamp       `json:"created_at"`
}

// RemainingBudget is the unspent part of the budget, never negative.
func (c Campaign) RemainingBudget() decimal.Decimal {
	left := c.TotalBudget.Sub(c.UsedBudget)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}

// BudgetUsedPercent returns how much of the budget is spent, 0-100.
func (c Campaign) BudgetUsedPercent() float64 {
	if !c.TotalBudget.IsPositive() {
		return 0
	}
	pct, _ := c.UsedBudget.Div(c.TotalBudget).Mul(decimal.NewFromInt(100)).Float64()
	if pct > 100 {
		return 100
	}
	return pct
}

// Expired reports whether the campaign deadline has passed at now.
// Campaigns without a deadline never expire.
func (c Campaign) Expired(now time.Time) bool {
	return !c.Deadline.IsZero() && now.After(c.Deadline.Time)
}

type Submission struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	CampaignID      int64            `json:"campaign_id"`
	VideoURL        string           `json:"video_url"`
	Title           string           `json:"title,omitempty"`
	Views           Count            `json:"views"`
	Earnings        decimal.Decimal  `json:"earnings"`
	Status          SubmissionStatus `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	CreatedAt       Timestamp        `json:"created_at"`
	ReviewedAt      Timestamp        `json:"reviewed_at"`
}

type ChatMessage struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	IsBot     bool      `json:"is_bot"`
	CreatedAt Timestamp `json:"created_at"`
}

// ChatResponse pairs the echoed user message with the bot reply.
type ChatResponse struct {
	UserMessage ChatMessage `json:"user_message"`
	BotMessage  ChatMessage `json:"bot_message"`
}

type SupportTicket struct {
	ID             int64     `json:"id"`
	UserEmail      string    `json:"user_email"`
	UserName       string    `json:"user_name"`
	Subject        string    `json:"subject"`
	InitialMessage string    `json:"initial_message"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
	EmailSent      bool      `json:"email_sent"`
	CreatedAt      Timestamp `json:"created_at"`
	ResolvedAt     Timestamp `json:"resolved_at"`
}

// Resolved reports whether support closed the ticket.
func (t SupportTicket) Resolved() bool {
	return !t.ResolvedAt.IsZero() || strings.EqualFold(t.Status, "resolved") || strings.EqualFold(t.Status, "closed")
}

type TicketMessage struct {
	ID            int64     `json:"id"`
	TicketID      int64     `json:"ticket_id"`
	Message       string    `json:"message"`
	IsFromSupport bool      `json:"is_from_support"`
	CreatedAt     Timestamp `json:"created_at"`
}

type ConnectedAccount struct {
	ID               int64           `json:"id"`
	Platform         Platform        `json:"platform"`
	Handle           string          `json:"handle"`
	ProfileURL       string          `json:"profile_url"`
	Status           AccountStatus   `json:"status"`
	VerificationCode string          `json:"verification_code,omitempty"`
	VerifiedAt       Timestamp       `json:"verified_at"`
	Metrics          *AccountMetrics `json:"metrics,omitempty"`
}

// IsVerified reports whether ownership of the account was confirmed.
func (a ConnectedAccount) IsVerified() bool {
	return a.Status.Is(AccountVerified)
}

// CurrentMetrics returns the embedded metrics snapshot, or zero metrics when absent.
func (a ConnectedAccount) CurrentMetrics() AccountMetrics {
	if a.Metrics == nil {
		return AccountMetrics{}
	}
	return *a.Metrics
}

type AdminStats struct {
	TotalViews       Count `json:"total_views"`
	TotalSubmissions Count `json:"total_submissions"`
}

type HealthStatus struct {
	Status string `json:"status"`
}

func (h HealthStatus) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy") || strings.EqualFold(h.Status, "ok")
}
