package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// NotificationKind tags the closed set of notification variants.
type NotificationKind string

const (
	NotificationAssign       NotificationKind = "assign"
	NotificationUnassign     NotificationKind = "unassign"
	NotificationTransferOut  NotificationKind = "transfer_out"
	NotificationTransferIn   NotificationKind = "transfer_in"
	NotificationStatusChange NotificationKind = "status_change"
)

// EntityRef points a notification at the ticket or appointment it concerns.
type EntityRef struct {
	Kind EntityKind `json:"entity_kind"`
	ID   string     `json:"entity_id"`
}

func (r EntityRef) validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("invalid entity kind %q", r.Kind)
	}
	if r.ID == "" {
		return errors.New("entity id required")
	}
	return nil
}

// NotificationPayload is implemented only by the payload types in this file.
type NotificationPayload interface {
	Kind() NotificationKind
	validate() error
}

// AssignPayload tells a staff member they received work.
type AssignPayload struct {
	Entity EntityRef `json:"entity"`
}

func (AssignPayload) Kind() NotificationKind { return NotificationAssign }
func (p AssignPayload) validate() error      { return p.Entity.validate() }

// UnassignPayload tells the previous assignee the work was taken off them.
type UnassignPayload struct {
	Entity EntityRef `json:"entity"`
}

func (UnassignPayload) Kind() NotificationKind { return NotificationUnassign }
func (p UnassignPayload) validate() error      { return p.Entity.validate() }

// TransferOutPayload goes to the previous assignee of a transferred entity.
type TransferOutPayload struct {
	Entity      EntityRef `json:"entity"`
	NewAssignee string    `json:"new_assignee"`
}

func (TransferOutPayload) Kind() NotificationKind { return NotificationTransferOut }

func (p TransferOutPayload) validate() error {
	if err := p.Entity.validate(); err != nil {
		return err
	}
	if p.NewAssignee == "" {
		return errors.New("new assignee required")
	}
	return nil
}

// TransferInPayload goes to the new assignee. It carries the assign payload plus the previous holder.
type TransferInPayload struct {
	AssignPayload
	PreviousAssignee string `json:"previous_assignee"`
}

func (TransferInPayload) Kind() NotificationKind { return NotificationTransferIn }

func (p TransferInPayload) validate() error {
	if err := p.AssignPayload.validate(); err != nil {
		return err
	}
	if p.PreviousAssignee == "" {
		return errors.New("previous assignee required")
	}
	return nil
}

// StatusChangePayload describes an old to new status move.
type StatusChangePayload struct {
	Entity    EntityRef `json:"entity"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Reason    string    `json:"reason,omitempty"`
}

func (StatusChangePayload) Kind() NotificationKind { return NotificationStatusChange }

func (p StatusChangePayload) validate() error {
	if err := p.Entity.validate(); err != nil {
		return err
	}
	if p.OldStatus == "" || p.NewStatus == "" {
		return errors.New("old and new status required")
	}
	return nil
}

// Notification is a command for the dispatcher.
type Notification struct {
	ID          string
	RecipientID string
	ActorID     string
	Payload     NotificationPayload
	CreatedAt   time.Time
}

// NewNotification validates the payload's required fields.
func NewNotification(recipientID, actorID string, payload NotificationPayload) (Notification, error) {
	if recipientID == "" {
		return Notification{}, errors.New("notification recipient required")
	}
	if payload == nil {
		return Notification{}, errors.New("notification payload required")
	}
	if err := payload.validate(); err != nil {
		return Notification{}, fmt.Errorf("%s notification: %w", payload.Kind(), err)
	}
	return Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Payload:     payload,
	}, nil
}

// Kind returns the payload tag.
func (n Notification) Kind() NotificationKind {
	if n.Payload == nil {
		return ""
	}
	return n.Payload.Kind()
}

type notificationEnvelope struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	ActorID     string           `json:"actor_id,omitempty"`
	Kind        NotificationKind `json:"kind"`
	Payload     json.RawMessage  `json:"payload"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (n Notification) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(n.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(notificationEnvelope{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		ActorID:     n.ActorID,
		Kind:        n.Kind(),
		Payload:     raw,
		CreatedAt:   n.CreatedAt,
	})
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var env notificationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	var payload NotificationPayload
	switch env.Kind {
	case NotificationAssign:
		var p AssignPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		payload = p
	case NotificationUnassign:
		var p UnassignPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		payload = p
	case NotificationTransferOut:
		var p TransferOutPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		payload = p
	case NotificationTransferIn:
		var p TransferInPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		payload = p
	case NotificationStatusChange:
		var p StatusChangePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		payload = p
	default:
		return fmt.Errorf("unknown notification kind %q", env.Kind)
	}
	*n = Notification{
		ID:          env.ID,
		RecipientID: env.RecipientID,
		ActorID:     env.ActorID,
		Payload:     payload,
		CreatedAt:   env.CreatedAt,
	}
	return nil
}
