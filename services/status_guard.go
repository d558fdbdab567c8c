package services

import (
	"database/sql"
	"errors"
	"log"

	"github.com/lib/pq"
)

// StatusSetter is what the engines use to promote a request's status.
type StatusSetter interface {
	TrySet(requestID string, candidates []string) bool
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// StatusGuard applies a request status change by trying an ordered list of
// label candidates against the status enum. The enum accumulated variants of
// the same semantic label over the years; which variant a given database
// accepts differs, so the guard walks the list until one sticks. A write that
// the enum rejects surfaces as a pq error and the next candidate is tried.
type StatusGuard struct {
	db execer
}

func NewStatusGuard(db *sql.DB) *StatusGuard {
	return &StatusGuard{db: db}
}

// TrySet attempts each candidate in order and reports whether any succeeded.
// Exhausting the list is logged but left to the caller to interpret; the
// primary entity change has usually committed already at this point.
func (g *StatusGuard) TrySet(requestID string, candidates []string) bool {
	for _, candidate := range candidates {
		result, err := g.db.Exec(
			`UPDATE service_requests SET status = $1, updated_at = NOW() WHERE id = $2`,
			candidate, requestID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) {
				log.Printf("status guard: label %q rejected for request %s (%s), trying next", candidate, requestID, pqErr.Code)
			} else {
				log.Printf("status guard: update failed for request %s: %v", requestID, err)
			}
			continue
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			return true
		}
	}
	log.Printf("status guard: no candidate accepted for request %s (tried %d)", requestID, len(candidates))
	return false
}
