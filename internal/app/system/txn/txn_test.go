package txn

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	standalone := mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated error", errors.New("connection reset by peer"), false},
		{"standalone server", standalone, true},
		{"wrapped standalone server", fmt.Errorf("delete group: %w", standalone), true},
		{"illegal operation code", mongo.CommandError{Code: 51, Message: "Illegal operation"}, true},
		{"op not allowed in txn code", mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"}, true},
		{"duplicate key code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"replica set wording", errors.New("Transaction requires a REPLICA SET"), true},
		{"sessions not supported", errors.New("sessions are not supported by this deployment"), true},
		{"transaction session state", errors.New("cannot start transaction in current session state"), true},
		{"only transaction mentioned", errors.New("transaction aborted"), false},
		{"illegal operation wording", errors.New("Illegal Operation in this context"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
