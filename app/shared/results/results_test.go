package results

import (
	"errors"
	"testing"
)

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[string, error]("done")
	if !ok.IsSuccess() || ok.IsFailure() {
		t.Fatalf("expected success result, got %+v", ok)
	}
	if *ok.Success != "done" {
		t.Errorf("Success = %q, want done", *ok.Success)
	}

	fail := FailureResult[string, error](errors.New("nope"))
	if fail.IsSuccess() || !fail.IsFailure() {
		t.Fatalf("expected failure result, got %+v", fail)
	}

	var zero OperationResult[int, int]
	if zero.IsSuccess() || zero.IsFailure() {
		t.Errorf("zero value should be neither success nor failure")
	}
}
