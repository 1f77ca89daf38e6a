package store

// Ledger column headers, in file order.
const (
	ColumnName   = "Name"
	ColumnCode   = "Code"
	ColumnUserID = "UserID"
)

// Record is one verified user in the ledger.
type Record struct {
	Name   string
	Code   string
	UserID int64
}
