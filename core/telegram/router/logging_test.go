package router

import (
	"errors"
	"fmt"
	"testing"
)

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "not found" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{codedErr{}, "NOT_FOUND"},
		{fmt.Errorf("wrap: %w", codedErr{}), "NOT_FOUND"},
		{&plainErr{}, "PLAINERR"},
		{errors.New("x"), "ERRORSTRING"},
	}
	for _, tt := range tests {
		if got := errorCode(tt.err); got != tt.want {
			t.Errorf("errorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestHandlerName(t *testing.T) {
	if got := handlerName("cmd.", "/Start"); got != "cmd.start" {
		t.Fatalf("got %q", got)
	}
	if got := handlerName("callback.", ""); got != "callback.unknown" {
		t.Fatalf("got %q", got)
	}
}
