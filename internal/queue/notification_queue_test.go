package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-shop/internal/domain"
)

func TestDecodeStreamValues(t *testing.T) {
	n, err := domain.NewNotification("staff-2", "staff-1", domain.TransferOutPayload{
		Entity:      domain.EntityRef{Kind: domain.EntityTicket, ID: "t-1"},
		NewAssignee: "staff-3",
	})
	require.NoError(t, err)
	n.ID = "n-1"

	raw, err := json.Marshal(n)
	require.NoError(t, err)

	decoded, err := decode(map[string]any{dataField: string(raw)})
	require.NoError(t, err)
	assert.Equal(t, "n-1", decoded.ID)
	assert.Equal(t, domain.NotificationTransferOut, decoded.Kind())
	assert.Equal(t, "staff-3", decoded.Payload.(domain.TransferOutPayload).NewAssignee)
}

func TestDecodeRejectsMalformedEntries(t *testing.T) {
	_, err := decode(map[string]any{"other": "x"})
	assert.Error(t, err)

	_, err = decode(map[string]any{dataField: `{"kind":"mystery","payload":{}}`})
	assert.Error(t, err)
}
