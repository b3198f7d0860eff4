package enums

// RecordStatus represents the lifecycle state of a tracked product record.
// Values are the French labels the application has always displayed.
type RecordStatus string

const (
	RecordStatusToClean      RecordStatus = "À nettoyer"
	RecordStatusAwaitingShot RecordStatus = "En attente de photo"
	RecordStatusListed       RecordStatus = "En ligne"
	RecordStatusSold         RecordStatus = "Vendu"
	RecordStatusShipped      RecordStatus = "Expédié"
	RecordStatusReturned     RecordStatus = "Retour"
	RecordStatusArchived     RecordStatus = "Archivé"
)

var validRecordStatuses = []RecordStatus{
	RecordStatusToClean,
	RecordStatusAwaitingShot,
	RecordStatusListed,
	RecordStatusSold,
	RecordStatusShipped,
	RecordStatusReturned,
	RecordStatusArchived,
}

// DefaultRecordStatus is assigned when a record is created without a status.
const DefaultRecordStatus = RecordStatusListed

// String implements fmt.Stringer.
func (s RecordStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RecordStatus.
func (s RecordStatus) IsValid() bool {
	for _, candidate := range validRecordStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// RecordStatuses returns the ordered list of known statuses.
func RecordStatuses() []RecordStatus {
	out := make([]RecordStatus, len(validRecordStatuses))
	copy(out, validRecordStatuses)
	return out
}
