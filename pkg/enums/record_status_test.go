package enums

import "testing"

func TestRecordStatusIsValid(t *testing.T) {
	for _, status := range RecordStatuses() {
		if !status.IsValid() {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if RecordStatus("Perdu").IsValid() {
		t.Fatalf("unknown status must not validate")
	}
	if RecordStatus("").IsValid() {
		t.Fatalf("empty status must not validate")
	}
}

func TestDefaultRecordStatus(t *testing.T) {
	if DefaultRecordStatus != RecordStatusListed {
		t.Fatalf("new records default to listed, got %q", DefaultRecordStatus)
	}
}
