package domain

import "testing"

func TestOrderStatus_Terminal(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{Pending, false},
		{PartiallyFilled, false},
		{Filled, true},
		{Cancelled, true},
		{Rejected, true},
		{Expired, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, ok := ParseOrderStatus("pending"); !ok {
		t.Error("expected pending to parse")
	}
	if _, ok := ParseOrderStatus("open"); ok {
		t.Error("expected unknown status to fail")
	}
}

func TestStateError_Message(t *testing.T) {
	err := &StateError{Op: "cancel", Status: Cancelled}
	want := "Cannot cancel order with status cancelled"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Errors: []string{"a", "b"}}
	want := "Order validation failed: a, b"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestOrder_Remaining(t *testing.T) {
	o := &Order{Quantity: 100, FilledQuantity: 40}
	if got := o.Remaining(); got != 60 {
		t.Errorf("Remaining() = %d, want 60", got)
	}
}
