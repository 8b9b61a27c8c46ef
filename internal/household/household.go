// Package household manages the member roster. Member names are identities:
// a rename is rewritten into every record that mentions the old name.
package household

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/foyer/internal/model"
)

// Members returns the roster entries with the given role, or every member
// when role is empty.
func Members(st *model.State, role model.Role) []model.Member {
	out := []model.Member{}
	for _, m := range st.Members {
		if role == "" || m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

func Find(st *model.State, name string) (model.Member, error) {
	m, ok := st.FindMember(name)
	if !ok {
		return model.Member{}, &model.NotFoundError{Kind: "member", Key: name}
	}
	return m, nil
}

// AddMember appends a member with a generated name such as "Enfant 2". The
// smallest number not held by a member or left in a record is used.
func AddMember(st *model.State, role model.Role) (model.Member, error) {
	role, err := model.ParseRole(string(role))
	if err != nil {
		return model.Member{}, err
	}

	var name string
	for n := 1; ; n++ {
		name = fmt.Sprintf("%s %d", role.BucketLabel(), n)
		if !nameInUse(st, name) {
			break
		}
	}

	m := model.Member{Name: name, Role: role}
	st.Members = append(st.Members, m)
	st.Ranking[name] = 0
	return m, nil
}

// RenameMember changes a member's name and rewrites the ranking, pending
// claims, history, purchases and delivery tickets to match.
func RenameMember(st *model.State, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return &model.ValidationError{Field: "name", Message: "name is required"}
	}
	i := slices.IndexFunc(st.Members, func(m model.Member) bool { return m.Name == oldName })
	if i < 0 {
		return &model.NotFoundError{Kind: "member", Key: oldName}
	}
	if newName == oldName {
		return nil
	}
	if nameInUse(st, newName) {
		return &model.ValidationError{Field: "name", Message: fmt.Sprintf("%q is already used", newName)}
	}

	st.Members[i].Name = newName

	st.Ranking[newName] = st.Ranking[oldName]
	delete(st.Ranking, oldName)

	for j := range st.Pending {
		if st.Pending[j].Member == oldName {
			st.Pending[j].Member = newName
		}
	}
	for j := range st.History {
		if st.History[j].Member == oldName {
			st.History[j].Member = newName
		}
	}
	for j := range st.Purchases {
		if st.Purchases[j].Member == oldName {
			st.Purchases[j].Member = newName
		}
	}
	for j := range st.Deliveries {
		if st.Deliveries[j].Member == oldName {
			st.Deliveries[j].Member = newName
		}
	}
	return nil
}

// ChangeRole moves a member to another role bucket. History is untouched.
func ChangeRole(st *model.State, name string, role model.Role) error {
	role, err := model.ParseRole(string(role))
	if err != nil {
		return err
	}
	i := slices.IndexFunc(st.Members, func(m model.Member) bool { return m.Name == name })
	if i < 0 {
		return &model.NotFoundError{Kind: "member", Key: name}
	}
	if st.Members[i].Role == model.RoleParent && role != model.RoleParent && parentCount(st) == 1 {
		return &model.ValidationError{Field: "role", Message: "the household needs at least one parent"}
	}
	st.Members[i].Role = role
	return nil
}

// RemoveMember deletes the roster entry and its balance. Records that
// mention the member are kept.
func RemoveMember(st *model.State, name string) error {
	i := slices.IndexFunc(st.Members, func(m model.Member) bool { return m.Name == name })
	if i < 0 {
		return &model.NotFoundError{Kind: "member", Key: name}
	}
	if st.Members[i].Role == model.RoleParent && parentCount(st) == 1 {
		return &model.ValidationError{Field: "name", Message: "the household needs at least one parent"}
	}
	st.Members = slices.Delete(st.Members, i, i+1)
	delete(st.Ranking, name)
	return nil
}

// nameInUse reports whether name belongs to a member or still appears in
// records left by a removed member. Reusing such a name would hand those
// records to someone else.
func nameInUse(st *model.State, name string) bool {
	if _, ok := st.FindMember(name); ok {
		return true
	}
	return slices.ContainsFunc(st.History, func(r model.CompletionRecord) bool { return r.Member == name }) ||
		slices.ContainsFunc(st.Pending, func(c model.PendingClaim) bool { return c.Member == name }) ||
		slices.ContainsFunc(st.Purchases, func(p model.PurchaseRecord) bool { return p.Member == name }) ||
		slices.ContainsFunc(st.Deliveries, func(d model.DeliveryTicket) bool { return d.Member == name })
}

func parentCount(st *model.State) int {
	n := 0
	for _, m := range st.Members {
		if m.Role == model.RoleParent {
			n++
		}
	}
	return n
}
