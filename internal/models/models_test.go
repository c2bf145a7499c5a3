package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestResource_Fields(t *testing.T) {
	typ := reflect.TypeOf(Resource{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:36")
	assertGormTag(t, typ, "IsSpecial", "default:false")
	assertGormTag(t, typ, "IsTaken", "default:false")
	assertGormTag(t, typ, "CreatedAt", "index")
	assertGormTag(t, typ, "Messages", "foreignKey:ResourceID")

	assertFieldType(t, typ, "AcceptedByCompanyID", "*string")
	assertFieldType(t, typ, "Comments", "*string")
	assertFieldType(t, typ, "Price", "*float64")
	assertFieldType(t, typ, "CreatedAt", "time.Time")
}

func TestMessage_Fields(t *testing.T) {
	typ := reflect.TypeOf(Message{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ResourceID", "not null")
	assertGormTag(t, typ, "ResourceID", "index")
	assertGormTag(t, typ, "ReadAt", "index")
	assertGormTag(t, typ, "Resource", "foreignKey:ResourceID")

	assertFieldType(t, typ, "ReadAt", "*time.Time")
	assertFieldType(t, typ, "ThreadID", "*string")
	assertFieldType(t, typ, "Resource", "*models.Resource")
}

func TestTableNames(t *testing.T) {
	if got := (Resource{}).TableName(); got != "resources" {
		t.Errorf("Resource.TableName() = %q, want %q", got, "resources")
	}
	if got := (Message{}).TableName(); got != "messages" {
		t.Errorf("Message.TableName() = %q, want %q", got, "messages")
	}
}

func TestResource_BeforeSaveNormalizesToUTC(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	created := time.Date(2026, 2, 13, 12, 30, 0, 0, cet)
	from := time.Date(2026, 3, 1, 8, 0, 0, 0, cet)
	r := &Resource{CreatedAt: created, PeriodFrom: &from}

	if err := r.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if r.CreatedAt.Location() != time.UTC || !r.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v in UTC", r.CreatedAt, created)
	}
	if r.PeriodFrom.Location() != time.UTC || !r.PeriodFrom.Equal(from) {
		t.Errorf("PeriodFrom = %v, want %v in UTC", r.PeriodFrom, from)
	}
	if from.Location() != cet {
		t.Error("BeforeSave modified the caller's PeriodFrom value")
	}
	if r.PeriodTo != nil {
		t.Errorf("PeriodTo = %v, want nil", r.PeriodTo)
	}
}

func TestMessage_BeforeSaveNormalizesToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	read := time.Date(2026, 2, 13, 7, 0, 0, 0, est)
	m := &Message{CreatedAt: read.Add(-time.Hour), ReadAt: &read}

	if err := m.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if m.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt location = %v, want UTC", m.CreatedAt.Location())
	}
	if m.ReadAt.Location() != time.UTC || !m.ReadAt.Equal(read) {
		t.Errorf("ReadAt = %v, want %v in UTC", m.ReadAt, read)
	}
}
