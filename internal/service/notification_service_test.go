package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

func TestNotificationFeed(t *testing.T) {
	st := store.New(models.DefaultRegistrationPolicy())
	svc := NewNotificationService(st, zap.NewNop())

	st.Update(func(s *store.State) {
		s.Emit(10, "first")
		s.Emit(20, "other user")
		s.Emit(10, "second")
	})

	feed := svc.ForUser(10)
	require.Len(t, feed, 2)
	assert.Equal(t, "first", feed[0].Message, "feed preserves emission order")
	assert.Equal(t, "second", feed[1].Message)
	assert.False(t, feed[0].Read)

	updated, err := svc.MarkRead(10, feed[0].ID)
	require.NoError(t, err)
	assert.True(t, updated.Read)

	feed = svc.ForUser(10)
	require.Len(t, feed, 2, "read notifications stay in the feed")
	assert.True(t, feed[0].Read)
}

func TestMarkReadOwnershipAndLookup(t *testing.T) {
	st := store.New(models.DefaultRegistrationPolicy())
	svc := NewNotificationService(st, zap.NewNop())

	var id int64
	st.Update(func(s *store.State) {
		id = s.Emit(10, "private").ID
	})

	_, err := svc.MarkRead(20, id)
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err), "recipients only")

	_, err = svc.MarkRead(10, 404)
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}
