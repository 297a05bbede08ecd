package constants

import "testing"

func TestMissingPolicy_Valid(t *testing.T) {
	tests := []struct {
		name   string
		policy MissingPolicy
		want   bool
	}{
		{name: "skip is valid", policy: MissingSkip, want: true},
		{name: "abort is valid", policy: MissingAbort, want: true},
		{name: "empty string is invalid", policy: MissingPolicy(""), want: false},
		{name: "SKIP uppercase is invalid", policy: MissingPolicy("SKIP"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Valid(); got != tt.want {
				t.Errorf("MissingPolicy(%q).Valid() = %v, want %v", tt.policy, got, tt.want)
			}
		})
	}
}

func TestDuplicatePolicy_Valid(t *testing.T) {
	tests := []struct {
		name   string
		policy DuplicatePolicy
		want   bool
	}{
		{name: "accumulate is valid", policy: DuplicateAccumulate, want: true},
		{name: "last is valid", policy: DuplicateLast, want: true},
		{name: "error is valid", policy: DuplicateError, want: true},
		{name: "first is invalid", policy: DuplicatePolicy("first"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Valid(); got != tt.want {
				t.Errorf("DuplicatePolicy(%q).Valid() = %v, want %v", tt.policy, got, tt.want)
			}
		})
	}
}

func TestInsufficientPolicy_Valid(t *testing.T) {
	tests := []struct {
		name   string
		policy InsufficientPolicy
		want   bool
	}{
		{name: "blank is valid", policy: InsufficientBlank, want: true},
		{name: "abort is valid", policy: InsufficientAbort, want: true},
		{name: "skip is invalid", policy: InsufficientPolicy("skip"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Valid(); got != tt.want {
				t.Errorf("InsufficientPolicy(%q).Valid() = %v, want %v", tt.policy, got, tt.want)
			}
		})
	}
}

func TestPolicy_String(t *testing.T) {
	if MissingSkip.String() != "skip" {
		t.Errorf("MissingSkip.String() = %q, want %q", MissingSkip.String(), "skip")
	}
	if DuplicateLast.String() != "last" {
		t.Errorf("DuplicateLast.String() = %q, want %q", DuplicateLast.String(), "last")
	}
	if InsufficientBlank.String() != "blank" {
		t.Errorf("InsufficientBlank.String() = %q, want %q", InsufficientBlank.String(), "blank")
	}
}
