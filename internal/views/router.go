package views

import (
	"fmt"
	"sync"
)

type ID string

const (
	Login  ID = "login"
	Orders ID = "orders"
	Admin  ID = "admin"
)

// All lists the views in display order.
var All = []ID{Login, Orders, Admin}

func (id ID) Valid() bool {
	for _, v := range All {
		if v == id {
			return true
		}
	}
	return false
}

// Router tracks which single view is visible.
type Router struct {
	mu     sync.RWMutex
	active ID
}

func NewRouter() *Router {
	return &Router{active: Login}
}

// Show makes id the only visible view.
func (r *Router) Show(id ID) error {
	if !id.Valid() {
		return fmt.Errorf("unknown view %q", id)
	}
	r.mu.Lock()
	r.active = id
	r.mu.Unlock()
	return nil
}

func (r *Router) Active() ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *Router) Visible(id ID) bool {
	return r.Active() == id
}
