package database

import (
	"regexp"
	"strings"

	"github.com/nfrund/goonies/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const (
	userTable          = "user"
	allowTable         = "allow"
	galleryTable       = "gallery"
	eventTable         = "event"
	passwordResetTable = "password_reset"
)

var recordKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ParseRecordID turns "table:key" or a bare "key" into a record id for table.
// References to another table and keys outside [A-Za-z0-9_] are rejected with
// domain.ErrInvalidID.
func ParseRecordID(table, raw string) (surrealmodels.RecordID, error) {
	key := strings.TrimSpace(raw)
	if t, k, ok := strings.Cut(key, ":"); ok {
		if t != table {
			return surrealmodels.RecordID{}, domain.ErrInvalidID
		}
		key = k
	}
	key = strings.Trim(key, "⟨⟩`")
	if !recordKeyPattern.MatchString(key) {
		return surrealmodels.RecordID{}, domain.ErrInvalidID
	}
	return surrealmodels.NewRecordID(table, key), nil
}
