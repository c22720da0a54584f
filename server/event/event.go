// Package event routes domain events from the creation path to their handlers.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies an event type. The set of kinds is closed.
type Kind string

const (
	KindEmployeeCreated Kind = "employee.created"
	KindClientCreated   Kind = "client.created"
)

// Event is an immutable domain event. Only types in this package implement it.
type Event interface {
	Kind() Kind
	// ID is generated when the event is built.
	ID() uuid.UUID
	// OccurredAt is in UTC.
	OccurredAt() time.Time

	sealed()
}

type header struct {
	id         uuid.UUID
	occurredAt time.Time
}

func newHeader() header {
	return header{id: uuid.New(), occurredAt: time.Now().UTC()}
}

func (h header) ID() uuid.UUID         { return h.id }
func (h header) OccurredAt() time.Time { return h.occurredAt }
func (header) sealed()                 {}

// EmployeeCreated is published after an employee row is committed.
type EmployeeCreated struct {
	header

	EmployeeID uuid.UUID
	FirstName  string
	LastName   string
	Email      string
	Mobile     string
}

func NewEmployeeCreated(employeeID uuid.UUID, firstName, lastName, email, mobile string) *EmployeeCreated {
	return &EmployeeCreated{
		header:     newHeader(),
		EmployeeID: employeeID,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Mobile:     mobile,
	}
}

func (*EmployeeCreated) Kind() Kind { return KindEmployeeCreated }

// ClientCreated is published after a client row is committed.
type ClientCreated struct {
	header

	ClientID          uuid.UUID
	ClientName        string
	Mobile            string
	Email             string
	ClientDescription string
}

func NewClientCreated(clientID uuid.UUID, clientName, mobile, email, description string) *ClientCreated {
	return &ClientCreated{
		header:            newHeader(),
		ClientID:          clientID,
		ClientName:        clientName,
		Mobile:            mobile,
		Email:             email,
		ClientDescription: description,
	}
}

func (*ClientCreated) Kind() Kind { return KindClientCreated }
