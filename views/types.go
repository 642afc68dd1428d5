package views

// Owner is the public projection of a user embedded in other views.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// ChannelOwner is an Owner with subscription stats relative to the viewer.
type ChannelOwner struct {
	Owner
	SubscribersCount int  `json:"subscribers_count"`
	IsSubscribed     bool `json:"is_subscribed"`
}

// Video holds the stored video fields.
type Video struct {
	ID          string  `json:"id"`
	VideoFile   string  `json:"video_file"`
	Thumbnail   string  `json:"thumbnail"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Views       int64   `json:"views"`
	IsPublished bool    `json:"is_published"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (v *Video) scanDest() []interface{} {
	return []interface{}{
		&v.ID, &v.VideoFile, &v.Thumbnail, &v.Title, &v.Description,
		&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
	}
}

func (o *Owner) scanDest() []interface{} {
	return []interface{}{&o.ID, &o.Username, &o.FullName, &o.Avatar}
}

// VideoCard is a video with its owner, as listed in feeds.
type VideoCard struct {
	Video
	Owner Owner `json:"owner"`
}

// VideoDetail is the single-video page.
type VideoDetail struct {
	Video
	LikesCount int          `json:"likes_count"`
	IsLiked    bool         `json:"is_liked"`
	Owner      ChannelOwner `json:"owner"`
}

// ChannelProfile is the public channel page of a user.
type ChannelProfile struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	FullName                  string `json:"full_name"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"cover_image"`
	SubscribersCount          int    `json:"subscribers_count"`
	ChannelsSubscribedToCount int    `json:"channels_subscribed_to_count"`
	IsSubscribed              bool   `json:"is_subscribed"`
	CreatedAt                 string `json:"created_at"`
}

// HistoryEntry is one watched video.
type HistoryEntry struct {
	VideoCard
	WatchedAt string `json:"watched_at"`
}

// Comment is a comment with its owner and like stats.
type Comment struct {
	ID         string `json:"id"`
	VideoID    string `json:"video_id"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	Owner      Owner  `json:"owner"`
	LikesCount int    `json:"likes_count"`
	IsLiked    bool   `json:"is_liked"`
}

// Tweet is a tweet with its owner and like stats.
type Tweet struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	Owner      Owner  `json:"owner"`
	LikesCount int    `json:"likes_count"`
	IsLiked    bool   `json:"is_liked"`
}

// LikedVideo is a video the user liked.
type LikedVideo struct {
	LikedAt string    `json:"liked_at"`
	Video   VideoCard `json:"video"`
}

// LikedTweet is a tweet the user liked.
type LikedTweet struct {
	LikedAt string `json:"liked_at"`
	Tweet   Tweet  `json:"tweet"`
}

// PlaylistSummary is one row of a user's playlist list.
type PlaylistSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TotalVideos int      `json:"total_videos"`
	TotalViews  int64    `json:"total_views"`
	Thumbnails  []string `json:"thumbnails"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// PlaylistDetail is a playlist with its owner and videos in position order.
type PlaylistDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Owner       Owner       `json:"owner"`
	TotalVideos int         `json:"total_videos"`
	TotalViews  int64       `json:"total_views"`
	Videos      []VideoCard `json:"videos"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
}

// Subscriber is a user subscribed to a channel.
type Subscriber struct {
	Owner
	SubscribedAt string `json:"subscribed_at"`
}

// LatestVideo is the newest published video of a channel.
type LatestVideo struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration"`
	Views     int64   `json:"views"`
	CreatedAt string  `json:"created_at"`
}

// SubscribedChannel is a channel the user subscribes to.
type SubscribedChannel struct {
	Owner
	SubscribersCount int          `json:"subscribers_count"`
	SubscribedAt     string       `json:"subscribed_at"`
	LatestVideo      *LatestVideo `json:"latest_video"`
}
