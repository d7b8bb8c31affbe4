package service

import (
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

// NotificationService exposes the per-user notification feed. Notifications
// are emitted inside workflow transactions; this service only reads and
// flips the read flag.
type NotificationService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewNotificationService creates a notification service.
func NewNotificationService(st *store.Store, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: st, logger: logger}
}

// ForUser returns the user's notifications in emission order.
func (s *NotificationService) ForUser(userID int64) []models.Notification {
	var out []models.Notification
	s.store.View(func(st *store.State) {
		out = st.NotificationsFor(userID)
	})
	return out
}

// MarkRead flags a notification as read. Users may only touch their own.
func (s *NotificationService) MarkRead(userID, notificationID int64) (*models.Notification, error) {
	var (
		updated *models.Notification
		markErr *appErrors.Error
	)
	s.store.Update(func(st *store.State) {
		n, ok := st.NotificationByID(notificationID)
		if !ok || n.RecipientID != userID {
			markErr = appErrors.Clone(appErrors.ErrNotFound, "notification not found")
			return
		}
		n.Read = true
		copied := *n
		updated = &copied
	})
	if markErr != nil {
		return nil, markErr
	}
	return updated, nil
}
