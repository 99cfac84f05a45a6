package identity

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPatient_JSONDates(t *testing.T) {
	var p Patient
	if err := json.Unmarshal([]byte(`{"first_name":"Ada","last_name":"Byron","dob":"1990-12-10","gender":"F"}`), &p); err != nil {
		t.Fatal(err)
	}
	if !p.DOB.Valid || p.DOB.Time.Year() != 1990 || p.DOB.Time.Month() != time.December {
		t.Errorf("dob = %+v", p.DOB)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
	out, _ := json.Marshal(&p)
	if !strings.Contains(string(out), `"dob":"1990-12-10"`) {
		t.Errorf("dob not rendered as a date: %s", out)
	}
}

func TestApplyDefaults_KeepsSuppliedValues(t *testing.T) {
	ms := "married"
	p := &Patient{MaritalStatus: &ms, RegistrationDate: date(2020, 1, 2)}
	p.applyDefaults(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	if *p.MaritalStatus != "married" {
		t.Errorf("marital status overwritten: %q", *p.MaritalStatus)
	}
	if p.RegistrationDate != date(2020, 1, 2) {
		t.Errorf("registration date overwritten: %v", p.RegistrationDate)
	}
}

func TestPatientPatch_Assignments(t *testing.T) {
	city := "Leeds"
	dob := date(1991, 1, 1)
	p := &PatientPatch{City: &city, DOB: &dob}
	sql, args := p.assignments().Update("patients", "patient_id", "PAT000001")
	want := "UPDATE patients SET dob = $1, city = $2 WHERE patient_id = $3"
	if sql != want {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 3 {
		t.Errorf("args = %v", args)
	}
}

func TestProviderPatch_TouchesHead(t *testing.T) {
	email := "x@example.org"
	loc := "Ward 1"
	if (&ProviderPatch{Location: &loc}).touchesHead() {
		t.Error("location does not feed department heads")
	}
	if !(&ProviderPatch{Email: &email}).touchesHead() {
		t.Error("email feeds department heads")
	}
}

func TestDepartmentHead_Validate(t *testing.T) {
	err := (&DepartmentHead{Department: "Cardiology"}).Validate()
	if err == nil || !strings.Contains(err.Error(), "head_provider_id") {
		t.Errorf("expected head_provider_id error, got %v", err)
	}
}
