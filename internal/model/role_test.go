package model

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"User", RoleUser, true},
		{"Admin", RoleAdmin, true},
		{"user", "", false},
		{"ADMIN", "", false},
		{"Owner", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, valid := range []OrderStatus{OrderPending, OrderCompleted, OrderCancelled} {
		got, ok := ParseOrderStatus(valid.String())
		if !ok || got != valid {
			t.Errorf("ParseOrderStatus(%q) = (%q, %v), want (%q, true)", valid.String(), got, ok, valid)
		}
	}
	for _, invalid := range []string{"pending", "Done", "Refunded", ""} {
		if _, ok := ParseOrderStatus(invalid); ok {
			t.Errorf("ParseOrderStatus(%q) accepted an unknown status", invalid)
		}
	}
}
