// Package catalog merges the built-in task definitions with the household's
// custom tasks and groups them for display.
package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/dukerupert/foyer/internal/cadence"
	"github.com/dukerupert/foyer/internal/model"
)

// CategoryOrder is the fixed display order. Unknown categories are listed
// after these, alphabetically.
var CategoryOrder = []string{"Chambre", "Cuisine", "Salon", "Hygiène", "Linge", "Extérieur", "Courses", "Entraide"}

type Group struct {
	Category string                 `json:"category"`
	Tasks    []model.TaskDefinition `json:"tasks"`
}

// Validate checks a definition before it enters the catalog.
func Validate(t model.TaskDefinition) error {
	if strings.TrimSpace(t.Name) == "" {
		return &model.ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &model.ValidationError{Field: "description", Message: "description is required"}
	}
	if t.Points <= 0 {
		return &model.ValidationError{Field: "points", Message: "points must be > 0"}
	}
	if len(t.Roles) == 0 {
		return &model.ValidationError{Field: "roles", Message: "at least one role is required"}
	}
	for _, r := range t.Roles {
		if _, err := model.ParseRole(string(r)); err != nil {
			return err
		}
	}
	switch t.Frequency {
	case model.FrequencyNone, model.FrequencyDaily, model.FrequencyOneOff:
		if t.WeeklyCap != 0 || t.Uncapped || t.Cadence != "" {
			return &model.ValidationError{Field: "frequency", Message: "weekly options require a weekly task"}
		}
	case model.FrequencyWeekly:
		if t.WeeklyCap < 0 {
			return &model.ValidationError{Field: "weekly_cap", Message: "weekly_cap must be >= 0"}
		}
		if t.Cadence != "" {
			if _, err := cadence.Parse(t.Cadence); err != nil {
				return &model.ValidationError{Field: "cadence", Message: err.Error()}
			}
		}
	default:
		return &model.ValidationError{Field: "frequency", Message: fmt.Sprintf("unknown frequency %q", t.Frequency)}
	}
	return nil
}

// All returns built-in tasks followed by custom tasks.
func All(st *model.State) []model.TaskDefinition {
	all := Builtins()
	for _, t := range st.CustomTasks {
		t.Roles = slices.Clone(t.Roles)
		all = append(all, t)
	}
	return all
}

// Find looks a task up by name.
func Find(st *model.State, name string) (model.TaskDefinition, bool) {
	for _, t := range All(st) {
		if t.Name == name {
			return t, true
		}
	}
	return model.TaskDefinition{}, false
}

// ListFor returns the tasks available to role, grouped by category.
func ListFor(st *model.State, role model.Role) []Group {
	byCategory := make(map[string][]model.TaskDefinition)
	for _, t := range All(st) {
		if t.AllowedFor(role) {
			byCategory[t.Category] = append(byCategory[t.Category], t)
		}
	}

	var groups []Group
	for _, c := range CategoryOrder {
		if tasks, ok := byCategory[c]; ok {
			groups = append(groups, Group{Category: c, Tasks: tasks})
			delete(byCategory, c)
		}
	}

	var rest []string
	for c := range byCategory {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	for _, c := range rest {
		groups = append(groups, Group{Category: c, Tasks: byCategory[c]})
	}
	return groups
}

// CreateCustom validates def and appends it to the custom catalog.
func CreateCustom(st *model.State, def model.TaskDefinition) (model.TaskDefinition, error) {
	def.Name = strings.TrimSpace(def.Name)
	def.Description = strings.TrimSpace(def.Description)
	def.Category = strings.TrimSpace(def.Category)
	if def.Category == "" {
		def.Category = "Entraide"
	}
	if def.Frequency == "" {
		def.Frequency = model.FrequencyNone
	}
	def.Builtin = false

	if err := Validate(def); err != nil {
		return model.TaskDefinition{}, err
	}
	if _, exists := Find(st, def.Name); exists {
		return model.TaskDefinition{}, &model.ValidationError{Field: "name", Message: fmt.Sprintf("a task named %q already exists", def.Name)}
	}

	st.CustomTasks = append(st.CustomTasks, def)
	return def, nil
}

// DeleteCustom removes a custom task. Built-in tasks cannot be deleted.
func DeleteCustom(st *model.State, name string) error {
	for _, b := range builtins {
		if b.Name == name {
			return &model.ValidationError{Field: "name", Message: "built-in tasks cannot be deleted"}
		}
	}
	i := slices.IndexFunc(st.CustomTasks, func(t model.TaskDefinition) bool { return t.Name == name })
	if i < 0 {
		return &model.NotFoundError{Kind: "task", Key: name}
	}
	st.CustomTasks = slices.Delete(st.CustomTasks, i, i+1)
	return nil
}

// Prune drops custom tasks that no longer validate, or that shadow a
// built-in, and returns their names.
func Prune(st *model.State) []string {
	var dropped []string
	kept := st.CustomTasks[:0]
	for _, t := range st.CustomTasks {
		shadow := slices.ContainsFunc(builtins, func(b model.TaskDefinition) bool { return b.Name == t.Name })
		if shadow || Validate(t) != nil {
			dropped = append(dropped, t.Name)
			continue
		}
		kept = append(kept, t)
	}
	st.CustomTasks = kept
	return dropped
}
