// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package validation

import (
	"strings"
	"testing"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type verifyBody struct {
	Code     string `json:"code" validate:"vcode"`
	Location string `json:"location" validate:"omitempty,location"`
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
	}{
		{"valid login", &loginBody{Email: "a@b.co", Password: "longenough"}, nil},
		{"missing email", &loginBody{Password: "longenough"}, []string{"email"}},
		{"bad email short password", &loginBody{Email: "nope", Password: "x"}, []string{"email", "password"}},
		{"valid code", &verifyBody{Code: "123456"}, nil},
		{"code too short", &verifyBody{Code: "12345"}, []string{"code"}},
		{"code not numeric", &verifyBody{Code: "12345a"}, []string{"code"}},
		{"location with slash", &verifyBody{Code: "123456", Location: "../etc"}, []string{"location"}},
		{"location ok", &verifyBody{Code: "123456", Location: "Palengke Market"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verr := ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("ValidateStruct() = nil, want errors on %v", tt.wantFields)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("got %d field errors (%v), want %d", len(verr.Fields), verr, len(tt.wantFields))
			}
			for i, f := range verr.Fields {
				if f.Field != tt.wantFields[i] {
					t.Errorf("field[%d] = %q, want %q", i, f.Field, tt.wantFields[i])
				}
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	t.Parallel()

	if verr := ValidateVar("email", "ops@foottraffic.local", "required,email"); verr != nil {
		t.Errorf("ValidateVar(valid) = %v", verr)
	}
	verr := ValidateVar("email", "not-an-address", "required,email")
	if verr == nil {
		t.Fatal("ValidateVar(invalid) = nil")
	}
	if got := verr.Error(); got != "email must be a valid email address" {
		t.Errorf("message = %q", got)
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&loginBody{Password: "longenough"}).ToAPIError()
	if single.Code != ErrorCode || single.Message != "email is required" {
		t.Errorf("single = %+v", single)
	}
	if single.Details["field"] != "email" {
		t.Errorf("single details = %v", single.Details)
	}

	multi := ValidateStruct(&loginBody{}).ToAPIError()
	if !strings.Contains(multi.Message, "email is required") || !strings.Contains(multi.Message, "password is required") {
		t.Errorf("multi message = %q", multi.Message)
	}
	if _, ok := multi.Details["fields"]; !ok {
		t.Errorf("multi details = %v", multi.Details)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty = %+v", empty)
	}
}

func TestMinMaxMessages(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&loginBody{Email: "a@b.co", Password: "short"})
	if verr == nil || verr.Fields[0].Message != "password must be at least 8 characters" {
		t.Errorf("got %v", verr)
	}
}
