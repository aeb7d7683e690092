package models

import (
	"errors"
	"testing"
)

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    TaskStatus
		wantErr bool
	}{
		{"TODO", TaskTodo, false},
		{" in_progress ", TaskInProgress, false},
		{"Done", TaskDone, false},
		{"cancelled", TaskCancelled, false},
		{"finished", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTaskStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTaskStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTaskStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseProjectStatus_Invalid(t *testing.T) {
	_, err := ParseProjectStatus("archived")
	var enumErr *EnumError
	if !errors.As(err, &enumErr) {
		t.Fatalf("expected *EnumError, got %v", err)
	}
	if enumErr.Value != "archived" {
		t.Errorf("Value = %q, expected %q", enumErr.Value, "archived")
	}
}

func TestParsePriority_DefaultsToMedium(t *testing.T) {
	got, err := ParsePriority("  ")
	if err != nil {
		t.Fatalf("ParsePriority() error = %v", err)
	}
	if got != PriorityMedium {
		t.Errorf("ParsePriority(blank) = %q, want %q", got, PriorityMedium)
	}
}

func TestParseRoles(t *testing.T) {
	if r, err := ParseGlobalRole("manager"); err != nil || r != RoleManager {
		t.Errorf("ParseGlobalRole(manager) = %q, %v", r, err)
	}
	if _, err := ParseGlobalRole("owner"); err == nil {
		t.Error("OWNER is not a global role")
	}
	if r, err := ParseMemberRole("owner"); err != nil || r != MemberRoleOwner {
		t.Errorf("ParseMemberRole(owner) = %q, %v", r, err)
	}
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	terminal := map[TaskStatus]bool{
		TaskTodo:       false,
		TaskInProgress: false,
		TaskBlocked:    false,
		TaskOnHold:     false,
		TaskDone:       true,
		TaskCancelled:  true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}
