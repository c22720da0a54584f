// Package record implements the business-record services: managers, employees, clients and shifts.
package record

import (
	"context"
	"errors"

	"github.com/hrygo/rosterly/server/event"
	"github.com/hrygo/rosterly/store"
)

// ErrInvalidArgument marks a request the services refuse before touching the store.
var ErrInvalidArgument = errors.New("invalid argument")

// Publisher is where the creation path announces new records.
type Publisher interface {
	Publish(ctx context.Context, e event.Event)
}

// Page is an offset/limit window over a listing.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = store.DefaultListLimit
	}
	return p
}

const textSearchLimit = 10
