package rbac

import "testing"

func TestDefaultRoles(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"student", "exam:view", true},
		{"student", "attempt:create", true},
		{"student", "attempt:view-own", true},
		{"student", "attempt:view-all", false},
		{"student", "exam:create", false},
		{"admin", "exam:create", true},
		{"admin", "attempt:view-all", true},
		{"admin", "anything:at-all", true},
		{"unknown-role", "exam:view", false},
		{"", "exam:view", false},
	}
	for _, tc := range tests {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "exam:create", "attempt:save") {
		t.Error("student should pass via attempt:save")
	}
	if c.Any("student", "exam:create", "exam:delete") {
		t.Error("student should not hold any admin permission")
	}
}

func TestPrefixWildcard(t *testing.T) {
	c := NewChecker(map[string][]string{"grader": {"attempt:*"}})
	if !c.Has("grader", "attempt:view-all") {
		t.Error("attempt:* should match attempt:view-all")
	}
	if c.Has("grader", "exam:view") {
		t.Error("attempt:* must not match exam:view")
	}
}
