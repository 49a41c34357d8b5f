// Package users keeps the in-memory user directory shared by all request
// handlers.
package users

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
	"github.com/dmitrijs2005/fibkeeper/internal/syncx"
)

// marshalFunc renders records; swapped in tests to exercise encoding failures.
type marshalFunc func(v any, prefix, indent string) ([]byte, error)

// Directory maps user IDs to records. Many readers may run at once, a
// writer excludes everyone else.
type Directory struct {
	guard   syncx.RWMutex
	users   map[string]User
	marshal marshalFunc
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		users:   make(map[string]User),
		marshal: json.MarshalIndent,
	}
}

func (d *Directory) render(v any) ([]byte, error) {
	b, err := d.marshal(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorSerialization, err)
	}
	return b, nil
}

// List renders every record as a pretty-printed JSON array. Element order
// follows map iteration and is not stable.
func (d *Directory) List() ([]byte, error) {
	var out []byte

	err := d.guard.Read(func() error {
		list := make([]User, 0, len(d.users))
		for _, u := range d.users {
			list = append(list, u)
		}

		var err error
		out, err = d.render(list)
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Get renders the record stored under id. Unknown ids yield
// common.ErrorUnknownUser.
func (d *Directory) Get(id string) ([]byte, error) {
	var out []byte

	err := d.guard.Read(func() error {
		u, ok := d.users[id]
		if !ok {
			return common.ErrorUnknownUser
		}

		var err error
		out, err = d.render(u)
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Upsert stores u under its own ID, replacing any previous record in full.
func (d *Directory) Upsert(u User) error {
	return d.guard.Write(func() error {
		d.users[u.ID] = u
		return nil
	})
}

// Len returns the number of records.
func (d *Directory) Len() (int, error) {
	n := 0
	err := d.guard.Read(func() error {
		n = len(d.users)
		return nil
	})
	return n, err
}
