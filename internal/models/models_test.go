package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_JSON(t *testing.T) {
	d := NewDate(2024, time.January, 5)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-01-05"` {
		t.Fatalf("marshal = %s", b)
	}

	var got Date
	if err := json.Unmarshal([]byte(`"2024-01-06"`), &got); err != nil {
		t.Fatal(err)
	}
	if got.String() != "2024-01-06" {
		t.Fatalf("unmarshal = %s", got)
	}
	if err := json.Unmarshal([]byte(`"06.01.2024"`), &got); err == nil {
		t.Fatal("expected error for foreign date layout")
	}
	if err := json.Unmarshal([]byte(`null`), &got); err != nil || !got.IsZero() {
		t.Fatalf("null should give zero date, got %v err %v", got, err)
	}
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{name: "time", src: time.Date(2024, 1, 5, 13, 45, 0, 0, time.UTC), want: "2024-01-05"},
		{name: "string", src: "2024-02-29", want: "2024-02-29"},
		{name: "bytes with time", src: []byte("2024-03-01T00:00:00Z"), want: "2024-03-01"},
		{name: "nil", src: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatal(err)
			}
			if d.String() != tt.want {
				t.Errorf("Scan(%v) = %q, want %q", tt.src, d.String(), tt.want)
			}
		})
	}
}

func TestDate_AddDays(t *testing.T) {
	d := NewDate(2024, time.March, 1).AddDays(-30)
	if d.String() != "2024-01-31" {
		t.Fatalf("AddDays = %s", d)
	}
}

func TestParseAttendanceStatus(t *testing.T) {
	tests := []struct {
		in   string
		want AttendanceStatus
		ok   bool
	}{
		{"P", StatusPresent, true},
		{"absent", StatusAbsent, true},
		{" Late ", StatusLate, true},
		{"excused", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAttendanceStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAttendanceStatus(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStringForms(t *testing.T) {
	st := &Student{Name: "Asha", RollNumber: 12}
	m := Mark{Student: st, Subject: &Subject{Name: "Math"}, ExamType: ExamFinal, Score: 91}
	if got := m.String(); got != "Asha's 91 in Math (Final Exam)" {
		t.Errorf("Mark.String() = %q", got)
	}
	a := AttendanceRecord{Student: st, Date: NewDate(2024, 1, 6), Status: StatusAbsent}
	if got := a.String(); got != "Asha - 2024-01-06: Absent" {
		t.Errorf("AttendanceRecord.String() = %q", got)
	}
	if got := st.String(); got != "Student: Asha (Roll: 12)" {
		t.Errorf("Student.String() = %q", got)
	}
	if got := (Teacher{Name: "Ivanova", EmployeeID: "T-001"}).String(); got != "Teacher: Ivanova (T-001)" {
		t.Errorf("Teacher.String() = %q", got)
	}
	if !ExamQuiz.Valid() || ExamType("oral").Valid() {
		t.Error("ExamType.Valid mismatch")
	}
}
