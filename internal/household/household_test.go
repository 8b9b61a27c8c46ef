package household

import (
	"errors"
	"testing"

	"github.com/dukerupert/foyer/internal/model"
)

func TestAddMemberGeneratesUniqueNames(t *testing.T) {
	st := model.DefaultState()

	m, err := AddMember(&st, model.RoleChild)
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if m.Name != "Enfant 2" {
		t.Errorf("name = %q, want %q", m.Name, "Enfant 2")
	}

	m, err = AddMember(&st, model.RoleTeen)
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if m.Name != "Ado 1" {
		t.Errorf("name = %q, want %q", m.Name, "Ado 1")
	}
	if bal, ok := st.Ranking["Ado 1"]; !ok || bal != 0 {
		t.Errorf("ranking[Ado 1] = %d, %v; want 0, true", bal, ok)
	}

	if err := RemoveMember(&st, "Enfant 1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	m, _ = AddMember(&st, model.RoleChild)
	if m.Name != "Enfant 1" {
		t.Errorf("name = %q, want reused %q", m.Name, "Enfant 1")
	}
}

func TestNamesLeftInRecordsAreNotReused(t *testing.T) {
	st := model.DefaultState()
	m, _ := AddMember(&st, model.RoleChild)
	st.History = append(st.History, model.CompletionRecord{Task: "Mission Décollage", Member: m.Name, Date: "2026-10-20", Points: 10})
	if err := RemoveMember(&st, m.Name); err != nil {
		t.Fatalf("remove: %v", err)
	}

	next, err := AddMember(&st, model.RoleChild)
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if next.Name != "Enfant 3" {
		t.Errorf("name = %q, want %q", next.Name, "Enfant 3")
	}

	var verr *model.ValidationError
	if err := RenameMember(&st, "Enfant 1", "Enfant 2"); !errors.As(err, &verr) {
		t.Errorf("rename onto removed member's name err = %v, want ValidationError", err)
	}
	if _, ok := st.FindMember("Enfant 1"); !ok {
		t.Error("roster changed on refused rename")
	}
}

func TestNameInUse(t *testing.T) {
	tests := []struct {
		name  string
		state func(st *model.State)
		want  bool
	}{
		{"member", func(st *model.State) {}, true},
		{"history", func(st *model.State) { st.History = []model.CompletionRecord{{Member: "Léa"}} }, true},
		{"pending", func(st *model.State) { st.Pending = []model.PendingClaim{{ID: "c1", Member: "Léa"}} }, true},
		{"purchase", func(st *model.State) { st.Purchases = []model.PurchaseRecord{{Member: "Léa"}} }, true},
		{"delivery", func(st *model.State) { st.Deliveries = []model.DeliveryTicket{{ID: "t1", Member: "Léa"}} }, true},
		{"unused", func(st *model.State) {}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := model.DefaultState()
			tt.state(&st)
			name := "Léa"
			if tt.name == "member" {
				name = "Enfant 1"
			}
			if got := nameInUse(&st, name); got != tt.want {
				t.Errorf("nameInUse(%q) = %v, want %v", name, got, tt.want)
			}
		})
	}
}

func TestAddMemberUnknownRole(t *testing.T) {
	st := model.DefaultState()
	var verr *model.ValidationError
	if _, err := AddMember(&st, "grandparent"); !errors.As(err, &verr) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestRenameCascades(t *testing.T) {
	st := model.DefaultState()
	st.Ranking["Enfant 1"] = 35
	st.History = []model.CompletionRecord{
		{Task: "Mission Décollage", Member: "Enfant 1", Date: "2026-10-19", Points: 10, Validated: true},
		{Task: "Chef de Table", Member: "Enfant 1", Date: "2026-10-19", Points: 10, Validated: true},
		{Task: "Magicien du Salon", Member: "Enfant 1", Date: "2026-10-20", Points: 15, Validated: true},
		{Task: "Lave-vaisselle", Member: "Parent 1", Date: "2026-10-20", Points: 15, Validated: true},
	}
	st.Pending = []model.PendingClaim{{ID: "c1", Member: "Enfant 1", Task: "Sourire de Star", Points: 5}}
	st.Purchases = []model.PurchaseRecord{{Member: "Enfant 1", RewardID: 1, Price: 10}}
	st.Deliveries = []model.DeliveryTicket{{ID: "d1", Member: "Enfant 1", RewardID: 1}}

	before := sumFor(st.History, "Enfant 1")

	if err := RenameMember(&st, "Enfant 1", "Lucie"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if got := sumFor(st.History, "Lucie"); got != before {
		t.Errorf("history sum = %d, want %d", got, before)
	}
	if got := sumFor(st.History, "Enfant 1"); got != 0 {
		t.Errorf("old name history sum = %d, want 0", got)
	}
	if st.Ranking["Lucie"] != 35 {
		t.Errorf("ranking[Lucie] = %d, want 35", st.Ranking["Lucie"])
	}
	if _, ok := st.Ranking["Enfant 1"]; ok {
		t.Error("old ranking entry still present")
	}
	if st.Pending[0].Member != "Lucie" {
		t.Errorf("pending member = %q, want Lucie", st.Pending[0].Member)
	}
	if st.Purchases[0].Member != "Lucie" {
		t.Errorf("purchase member = %q, want Lucie", st.Purchases[0].Member)
	}
	if st.Deliveries[0].Member != "Lucie" {
		t.Errorf("ticket member = %q, want Lucie", st.Deliveries[0].Member)
	}
	if _, err := Find(&st, "Lucie"); err != nil {
		t.Errorf("find renamed member: %v", err)
	}
	if st.History[3].Member != "Parent 1" {
		t.Errorf("unrelated record renamed to %q", st.History[3].Member)
	}
}

func TestRenameValidation(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		wantErr  any
	}{
		{"blank", "Enfant 1", "   ", &model.ValidationError{}},
		{"taken", "Enfant 1", "Parent 1", &model.ValidationError{}},
		{"unknown", "Nobody", "Lucie", &model.NotFoundError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := model.DefaultState()
			err := RenameMember(&st, tt.old, tt.new)
			switch tt.wantErr.(type) {
			case *model.ValidationError:
				var verr *model.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("err = %v, want ValidationError", err)
				}
			case *model.NotFoundError:
				var nf *model.NotFoundError
				if !errors.As(err, &nf) {
					t.Errorf("err = %v, want NotFoundError", err)
				}
			}
			if _, ok := st.FindMember("Enfant 1"); !ok {
				t.Error("roster changed on failed rename")
			}
		})
	}
}

func TestRenameToSameNameIsNoop(t *testing.T) {
	st := model.DefaultState()
	if err := RenameMember(&st, "Enfant 1", "Enfant 1"); err != nil {
		t.Errorf("rename to same name: %v", err)
	}
}

func TestChangeRole(t *testing.T) {
	st := model.DefaultState()
	st.History = []model.CompletionRecord{{Task: "Mission Décollage", Member: "Enfant 1", Points: 10}}

	if err := ChangeRole(&st, "Enfant 1", model.RoleTeen); err != nil {
		t.Fatalf("change role: %v", err)
	}
	if got := Members(&st, model.RoleTeen); len(got) != 1 || got[0].Name != "Enfant 1" {
		t.Errorf("teens = %+v, want [Enfant 1]", got)
	}
	if len(Members(&st, model.RoleChild)) != 0 {
		t.Error("member still listed as child")
	}
	if st.History[0].Member != "Enfant 1" {
		t.Error("history changed by role change")
	}

	var verr *model.ValidationError
	if err := ChangeRole(&st, "Parent 1", model.RoleTeen); !errors.As(err, &verr) {
		t.Errorf("demoting last parent err = %v, want ValidationError", err)
	}
}

func TestRemoveMemberKeepsHistory(t *testing.T) {
	st := model.DefaultState()
	st.Ranking["Enfant 1"] = 20
	st.History = []model.CompletionRecord{{Task: "Mission Décollage", Member: "Enfant 1", Points: 10}}
	st.Pending = []model.PendingClaim{{ID: "c1", Member: "Enfant 1"}}

	if err := RemoveMember(&st, "Enfant 1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := st.Ranking["Enfant 1"]; ok {
		t.Error("ranking entry not removed")
	}
	if len(st.History) != 1 || len(st.Pending) != 1 {
		t.Error("history or pending purged on remove")
	}

	var nf *model.NotFoundError
	if err := RemoveMember(&st, "Enfant 1"); !errors.As(err, &nf) {
		t.Errorf("second remove err = %v, want NotFoundError", err)
	}
}

func TestRemoveLastParent(t *testing.T) {
	st := model.DefaultState()
	var verr *model.ValidationError
	if err := RemoveMember(&st, "Parent 1"); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	if _, err := AddMember(&st, model.RoleParent); err != nil {
		t.Fatalf("add parent: %v", err)
	}
	if err := RemoveMember(&st, "Parent 1"); err != nil {
		t.Errorf("remove with second parent present: %v", err)
	}
}

func sumFor(history []model.CompletionRecord, member string) int {
	total := 0
	for _, h := range history {
		if h.Member == member {
			total += h.Points
		}
	}
	return total
}
