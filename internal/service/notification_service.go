package service

import (
	"upline/internal/models"
	"upline/internal/repository"
	"upline/internal/ws"
)

// NotificationService stores notifications and pushes them to any live
// websocket connections of the target user. The push is fire-and-forget.
type NotificationService struct {
	repo *repository.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo *repository.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

func (s *NotificationService) Notify(userID uint, notifType, body string) error {
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Body:   body,
	}
	if err := s.repo.Create(n); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, map[string]interface{}{
			"type":       "notification",
			"id":         n.ID,
			"notif_type": n.Type,
			"body":       n.Body,
			"created_at": n.CreatedAt,
		})
	}
	return nil
}
