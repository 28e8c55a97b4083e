package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPlatform is returned by ParsePlatform for unsupported names.
var ErrUnknownPlatform = errors.New("unknown platform")

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
)

// Is compares roles case-insensitively; the backend has used both casings.
func (r Role) Is(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

type Platform string

const (
	PlatformTikTok    Platform = "TIKTOK"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformYouTube   Platform = "YOUTUBE"
	PlatformOther     Platform = "OTHER"
)

// Platforms lists the platforms accounts can be linked on.
var Platforms = []Platform{PlatformTikTok, PlatformInstagram, PlatformYouTube, PlatformOther}

// ParsePlatform accepts any casing ("YouTube", "youtube", "YOUTUBE").
func ParsePlatform(name string) (Platform, error) {
	name = strings.TrimSpace(name)
	for _, p := range Platforms {
		if strings.EqualFold(name, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
}

// Slug is the lowercase form used in connect_<slug> endpoints.
func (p Platform) Slug() string {
	return strings.ToLower(string(p))
}

func (p Platform) Is(other Platform) bool {
	return strings.EqualFold(string(p), string(other))
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
	SubmissionActive   SubmissionStatus = "active"
	SubmissionRemoved  SubmissionStatus = "removed"
)

func (s SubmissionStatus) Is(other SubmissionStatus) bool {
	return strings.EqualFold(string(s), string(other))
}

type AccountStatus string

const (
	AccountPending  AccountStatus = "PENDING"
	AccountVerified AccountStatus = "VERIFIED"
	AccountRejected AccountStatus = "REJECTED"
)

func (s AccountStatus) Is(other AccountStatus) bool {
	return strings.EqualFold(string(s), string(other))
}
