package models

// AccountMetrics is the latest metrics snapshot of a connected account.
// Every counter is optional on the wire and defaults to zero.
type AccountMetrics struct {
	Views       Count  `json:"views"`
	Subscribers Count  `json:"subscribers"`
	Likes       Count  `json:"likes"`
	Comments    Count  `json:"comments"`
	VideoCount  Count  `json:"video_count"`
	Title       string `json:"title,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// Interactions is likes plus comments.
func (m AccountMetrics) Interactions() int64 {
	return m.Likes.Int64() + m.Comments.Int64()
}

// EngagementRate is interactions per view as a percentage; 0 without views.
func (m AccountMetrics) EngagementRate() float64 {
	return engagementRate(m.Interactions(), m.Views.Int64())
}

// Add sums counters; descriptive fields keep the receiver's values.
func (m AccountMetrics) Add(other AccountMetrics) AccountMetrics {
	m.Views += other.Views
	m.Subscribers += other.Subscribers
	m.Likes += other.Likes
	m.Comments += other.Comments
	m.VideoCount += other.VideoCount
	return m
}

// VideoInsight is per-video analytics for an OAuth-linked account.
type VideoInsight struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Thumbnail   string    `json:"thumbnail"`
	PublishedAt Timestamp `json:"published_at"`
	Views       Count     `json:"views"`
	Likes       Count     `json:"likes"`
	Comments    Count     `json:"comments"`
	Duration    string    `json:"duration"`
	IsShort     bool      `json:"is_short"`
}

func (v VideoInsight) EngagementRate() float64 {
	return engagementRate(v.Likes.Int64()+v.Comments.Int64(), v.Views.Int64())
}

func engagementRate(interactions, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(interactions) * 100 / float64(views)
}
