package encounter

import (
	"encoding/json"
	"testing"
)

func TestEncounter_ApplyDefaults(t *testing.T) {
	los, readmitted := 4, true
	e := &Encounter{Status: "Completed", LengthOfStay: &los, ReadmittedFlag: &readmitted}
	e.applyDefaults()
	if e.Status != "Completed" || *e.LengthOfStay != 4 || !*e.ReadmittedFlag {
		t.Errorf("supplied values overwritten: %+v", e)
	}
}

func TestEncounterPatch_Assignments(t *testing.T) {
	status := "Completed"
	dept := "Cardiology"
	p := &EncounterPatch{Department: &dept, Status: &status}
	sql, args := p.assignments().Update("encounters", "encounter_id", "ENC000001")
	want := "UPDATE encounters SET department = $1, status = $2 WHERE encounter_id = $3"
	if sql != want {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 3 || args[2] != "ENC000001" {
		t.Errorf("args = %v", args)
	}
}

func TestEncounterPatch_EmptyStatus(t *testing.T) {
	empty := ""
	if err := (&EncounterPatch{Status: &empty}).Validate(); err == nil {
		t.Error("expected validation error for empty status")
	}
	if err := (&EncounterPatch{}).Validate(); err != nil {
		t.Errorf("empty patch should validate: %v", err)
	}
}

func TestDiagnosis_Validate(t *testing.T) {
	var d Diagnosis
	if err := json.Unmarshal([]byte(`{"encounter_id":"ENC000001"}`), &d); err != nil {
		t.Fatal(err)
	}
	if got := fieldOf(t, d.Validate()); got != "diagnosis_code" {
		t.Errorf("field = %q", got)
	}
}

func TestLabTest_Validate(t *testing.T) {
	l := &LabTest{EncounterID: "ENC000001", TestName: "CBC", TestCode: "85025", Status: "Ordered"}
	if got := fieldOf(t, l.Validate()); got != "test_date" {
		t.Errorf("field = %q", got)
	}
}

func TestLabTest_ApplyDefaults(t *testing.T) {
	units := "mg/dL"
	l := &LabTest{Units: &units}
	l.applyDefaults()
	if *l.Units != "mg/dL" {
		t.Errorf("units overwritten: %q", *l.Units)
	}
	if *l.NormalRange != NotApplicable {
		t.Errorf("normal range = %q", *l.NormalRange)
	}
}
