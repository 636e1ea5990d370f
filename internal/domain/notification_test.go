package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotificationValidatesRequiredFields(t *testing.T) {
	ref := EntityRef{Kind: EntityTicket, ID: "T1"}

	_, err := NewNotification("", "admin-1", AssignPayload{Entity: ref})
	assert.Error(t, err)

	_, err = NewNotification("tech-A", "admin-1", nil)
	assert.Error(t, err)

	_, err = NewNotification("tech-A", "admin-1", AssignPayload{Entity: EntityRef{Kind: "invoice", ID: "X"}})
	assert.Error(t, err)

	_, err = NewNotification("tech-A", "admin-1", TransferOutPayload{Entity: ref})
	assert.Error(t, err)

	_, err = NewNotification("tech-B", "admin-1", TransferInPayload{AssignPayload: AssignPayload{Entity: ref}})
	assert.Error(t, err)

	_, err = NewNotification("tech-A", "admin-1", StatusChangePayload{Entity: ref, NewStatus: "completed"})
	assert.Error(t, err)

	n, err := NewNotification("tech-B", "admin-1", TransferInPayload{
		AssignPayload:    AssignPayload{Entity: ref},
		PreviousAssignee: "tech-A",
	})
	require.NoError(t, err)
	assert.Equal(t, NotificationTransferIn, n.Kind())
}

func TestNotificationJSONKeepsVariant(t *testing.T) {
	n, err := NewNotification("tech-A", "admin-1", StatusChangePayload{
		Entity:    EntityRef{Kind: EntityTicket, ID: "T1"},
		OldStatus: "in_progress",
		NewStatus: "on_hold",
		Reason:    "waiting for parts",
	})
	require.NoError(t, err)
	n.ID = "n-1"

	raw, err := json.Marshal(n)
	require.NoError(t, err)

	var decoded Notification
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, NotificationStatusChange, decoded.Kind())
	payload, ok := decoded.Payload.(StatusChangePayload)
	require.True(t, ok)
	assert.Equal(t, "waiting for parts", payload.Reason)
	assert.Equal(t, "tech-A", decoded.RecipientID)
}

func TestNotificationJSONRejectsUnknownKind(t *testing.T) {
	var n Notification
	err := json.Unmarshal([]byte(`{"kind":"promo","payload":{}}`), &n)
	assert.Error(t, err)
}
