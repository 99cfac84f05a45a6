package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

func TestReferenceNotFound_IsValidation(t *testing.T) {
	err := fmt.Errorf("create encounter: %w", ReferenceNotFound("provider", "PRO000009"))

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected reference error to match *ValidationError")
	}
	if ve.Message != "provider PRO000009 does not exist" {
		t.Errorf("unexpected message: %q", ve.Message)
	}

	var rn *ReferenceNotFoundError
	if !errors.As(err, &rn) || rn.Key != "PRO000009" {
		t.Errorf("expected *ReferenceNotFoundError with key, got %v", rn)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := Validation("visit_date", "is required")
	if err.Error() != "visit_date: is required" {
		t.Errorf("unexpected: %q", err.Error())
	}
	if (&ValidationError{Message: "bad"}).Error() != "bad" {
		t.Error("expected bare message without field")
	}
}

func TestStorage(t *testing.T) {
	if Storage("op", nil) != nil {
		t.Error("expected nil for nil error")
	}
	if !errors.Is(Storage("get patient", pgx.ErrNoRows), ErrNotFound) {
		t.Error("expected ErrNoRows to become ErrNotFound")
	}

	base := errors.New("connection reset")
	err := Storage("insert claim", base)
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "insert claim" {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Error("expected StorageError to unwrap to the cause")
	}
	if Storage("outer", err) != err {
		t.Error("expected an existing StorageError to pass through")
	}
}

func TestStorage_Constraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23514", ConstraintName: "chk_appeal_complete"}
	err := Storage("insert denial", pgErr)
	if !strings.Contains(err.Error(), "chk_appeal_complete") {
		t.Errorf("expected constraint name in message, got %q", err.Error())
	}
	if !IsConstraint(err) {
		t.Error("expected IsConstraint true")
	}
	if IsConstraint(errors.New("plain")) {
		t.Error("expected IsConstraint false for plain error")
	}
}

func TestHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", Validation("dob", "is required"), http.StatusBadRequest},
		{"reference", ReferenceNotFound("encounter", "ENC000001"), http.StatusBadRequest},
		{"conflict", &ConflictError{Relation: "encounters", Message: "Delete related encounters first"}, http.StatusConflict},
		{"not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound},
		{"storage", Storage("x", errors.New("boom")), http.StatusInternalServerError},
		{"constraint", Storage("x", &pgconn.PgError{Code: "23505"}), http.StatusInternalServerError},
		{"echo", echo.NewHTTPError(http.StatusTeapot, "tea"), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := HTTP(tt.err)
			if he.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, he.Code)
			}
		})
	}
}

func TestHTTP_HidesInternalDetail(t *testing.T) {
	he := HTTP(Storage("select", errors.New("password authentication failed")))
	if he.Message != "internal server error" {
		t.Errorf("expected generic message, got %v", he.Message)
	}
}

type input struct {
	Name  string  `json:"name"`
	Code  string  `json:"code"`
	Phone *string `json:"phone"`
}

func (i input) Validate() error {
	return Check(validation.ValidateStruct(&i,
		validation.Field(&i.Name, Required),
		validation.Field(&i.Code, Required),
		validation.Field(&i.Phone, NotEmpty),
	))
}

func TestCheck(t *testing.T) {
	empty := ""
	tests := []struct {
		name      string
		in        input
		wantField string
		wantMsg   string
	}{
		{"valid", input{Name: "a", Code: "b"}, "", ""},
		{"one missing", input{Name: "a"}, "code", "is required"},
		{"empty patch field", input{Name: "a", Code: "b", Phone: &empty}, "phone", "cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField || ve.Message != tt.wantMsg {
				t.Errorf("got %q/%q, want %q/%q", ve.Field, ve.Message, tt.wantField, tt.wantMsg)
			}
		})
	}

	err := input{}.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "code" {
		t.Fatalf("expected first sorted field, got %v", err)
	}
	if !strings.Contains(ve.Message, "name: is required") {
		t.Errorf("message should list every field: %q", ve.Message)
	}
}
