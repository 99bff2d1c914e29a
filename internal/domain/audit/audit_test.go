package audit

import (
	"reflect"
	"testing"
)

func TestBuildBaseQuery(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		query  string
		args   []any
	}{
		{"none", Filter{}, "SELECT 1 FROM audit_events WHERE 1=1", nil},
		{"action", Filter{Action: ActionLeaveApproved}, "SELECT 1 FROM audit_events WHERE 1=1 AND action = $1", []any{ActionLeaveApproved}},
		{"all", Filter{Action: "a", EntityType: "leave_request", ActorUser: "u1"},
			"SELECT 1 FROM audit_events WHERE 1=1 AND action = $1 AND entity_type = $2 AND actor_user_id::text = $3",
			[]any{"a", "leave_request", "u1"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			query, args := buildBaseQuery("SELECT 1", tc.filter)
			if query != tc.query {
				t.Fatalf("query = %q, want %q", query, tc.query)
			}
			if !reflect.DeepEqual(args, tc.args) {
				t.Fatalf("args = %v, want %v", args, tc.args)
			}
		})
	}
}
