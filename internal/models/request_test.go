package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from RequestStatus
		to   RequestStatus
		want bool
	}{
		{RequestStatusPending, RequestStatusApproved, true},
		{RequestStatusPending, RequestStatusRejected, true},
		{RequestStatusPending, RequestStatusRemoved, false},
		{RequestStatusPending, RequestStatusSuspended, false},
		{RequestStatusApproved, RequestStatusSuspended, true},
		{RequestStatusApproved, RequestStatusRemoved, true},
		{RequestStatusApproved, RequestStatusRejected, false},
		{RequestStatusSuspended, RequestStatusApproved, true},
		{RequestStatusSuspended, RequestStatusRemoved, true},
		{RequestStatusSuspended, RequestStatusRejected, false},
		{RequestStatusRejected, RequestStatusRemoved, true},
		{RequestStatusRejected, RequestStatusApproved, false},
		{RequestStatusRejected, RequestStatusPending, false},
		{RequestStatusRemoved, RequestStatusApproved, false},
		{RequestStatusRemoved, RequestStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
