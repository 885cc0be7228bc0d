package dto

import "cfp-api/modules/announcement/entity"

// AnnouncementRequest creates or replaces an announcement. An empty
// audience means everybody.
type AnnouncementRequest struct {
	Title             string `json:"title"`
	Message           string `json:"message"`
	Audience          string `json:"target_audience"`
	SendNotifications bool   `json:"send_notifications"`
}

type PublishResponse struct {
	Announcement        *entity.Announcement `json:"announcement"`
	AlreadyPublished    bool                 `json:"already_published"`
	NotificationsQueued bool                 `json:"notifications_queued"`
}
