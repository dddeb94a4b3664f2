package checkout

import (
	"errors"
	"regexp"
	"sort"
	"sync"
)

// ErrInvalidRegisterID is returned for register ids outside [A-Za-z0-9_-]{1,64}.
var ErrInvalidRegisterID = errors.New("invalid register id")

var registerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Registry hands out one Register per register id, creating them on first use.
type Registry struct {
	deps Deps

	mu        sync.Mutex
	registers map[string]*Register
}

// NewRegistry builds a registry whose registers share deps.
func NewRegistry(deps Deps) (*Registry, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Registry{deps: deps, registers: make(map[string]*Register)}, nil
}

// Get returns the register for id.
func (r *Registry) Get(id string) (*Register, error) {
	if !registerIDPattern.MatchString(id) {
		return nil, ErrInvalidRegisterID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.registers[id]; ok {
		return reg, nil
	}
	reg, err := NewRegister(id, r.deps)
	if err != nil {
		return nil, err
	}
	r.registers[id] = reg
	return reg, nil
}

// IDs lists the registers created so far.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.registers))
	for id := range r.registers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
