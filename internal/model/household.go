package model

import (
	"maps"
	"slices"
)

// State is the whole household aggregate. It is loaded, mutated and saved as
// one unit.
type State struct {
	Treasury      int                `json:"treasury"`
	Ranking       map[string]int     `json:"ranking"`
	Pending       []PendingClaim     `json:"pending"`
	History       []CompletionRecord `json:"history"`
	CustomTasks   []TaskDefinition   `json:"custom_tasks"`
	CustomRewards []Reward           `json:"custom_rewards"`
	Purchases     []PurchaseRecord   `json:"purchases"`
	Deliveries    []DeliveryTicket   `json:"deliveries"`
	Members       []Member           `json:"members"`
}

// DefaultState returns the state used when no snapshot exists yet.
func DefaultState() State {
	return State{
		Ranking:       map[string]int{"Parent 1": 0, "Enfant 1": 0},
		Pending:       []PendingClaim{},
		History:       []CompletionRecord{},
		CustomTasks:   []TaskDefinition{},
		CustomRewards: []Reward{},
		Purchases:     []PurchaseRecord{},
		Deliveries:    []DeliveryTicket{},
		Members: []Member{
			{Name: "Parent 1", Role: RoleParent},
			{Name: "Enfant 1", Role: RoleChild},
		},
	}
}

// Normalize replaces nil collections with empty ones so callers can append and
// index without nil checks.
func (s *State) Normalize() {
	if s.Ranking == nil {
		s.Ranking = map[string]int{}
	}
	if s.Pending == nil {
		s.Pending = []PendingClaim{}
	}
	if s.History == nil {
		s.History = []CompletionRecord{}
	}
	if s.CustomTasks == nil {
		s.CustomTasks = []TaskDefinition{}
	}
	if s.CustomRewards == nil {
		s.CustomRewards = []Reward{}
	}
	if s.Purchases == nil {
		s.Purchases = []PurchaseRecord{}
	}
	if s.Deliveries == nil {
		s.Deliveries = []DeliveryTicket{}
	}
	if s.Members == nil {
		s.Members = []Member{}
	}
}

// Clone returns a deep copy; mutating the copy never affects s.
func (s State) Clone() State {
	cp := s
	cp.Ranking = maps.Clone(s.Ranking)
	cp.Pending = slices.Clone(s.Pending)
	cp.History = slices.Clone(s.History)
	if s.CustomTasks != nil {
		cp.CustomTasks = make([]TaskDefinition, len(s.CustomTasks))
		for i, t := range s.CustomTasks {
			t.Roles = slices.Clone(t.Roles)
			cp.CustomTasks[i] = t
		}
	}
	cp.CustomRewards = slices.Clone(s.CustomRewards)
	cp.Purchases = slices.Clone(s.Purchases)
	cp.Deliveries = slices.Clone(s.Deliveries)
	cp.Members = slices.Clone(s.Members)
	return cp
}

// FindMember returns the roster entry for name.
func (s *State) FindMember(name string) (Member, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}
