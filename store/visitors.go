package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rarecask/leadtrack-go/models"
)

// VisitorStore is the persistence boundary for visitor aggregates. Handlers
// and processors depend on this interface so tests can inject fakes.
type VisitorStore interface {
	// GetVisitor returns (nil, nil) when the visitor is unknown.
	GetVisitor(visitorID string) (*models.Visitor, error)
	UpsertVisitor(v *models.Visitor) error
	// DeleteVisitors removes the given ids and reports how many rows were
	// actually deleted; unknown ids are skipped, not errors.
	DeleteVisitors(visitorIDs []string) (int, error)
	// ListSince returns visitors with lastVisit at or after cutoff. A zero
	// cutoff returns the whole collection.
	ListSince(cutoff time.Time) ([]*models.Visitor, error)
	// ListCaptured returns visitors with at least one identifying field.
	ListCaptured() ([]*models.Visitor, error)
	// Export returns visitors filtered by optional status and minimum lead
	// score, sorted by lead score descending.
	Export(status string, minLeadScore int) ([]*models.Visitor, error)
}

// SQLVisitorStore implements VisitorStore over SQLite/Turso.
type SQLVisitorStore struct {
	db *Database
}

func NewSQLVisitorStore(db *Database) *SQLVisitorStore {
	return &SQLVisitorStore{db: db}
}

func (s *SQLVisitorStore) GetVisitor(visitorID string) (*models.Visitor, error) {
	query := `SELECT doc FROM visitors WHERE visitor_id = ? LIMIT 1`

	var doc string
	err := s.db.Conn.QueryRow(query, visitorID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load visitor %s: %w", visitorID, err)
	}

	return decodeVisitor(doc)
}

func (s *SQLVisitorStore) UpsertVisitor(v *models.Visitor) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode visitor %s: %w", v.VisitorID, err)
	}

	hasIdentity := 0
	if v.HasIdentity() {
		hasIdentity = 1
	}

	query := `INSERT INTO visitors
		(visitor_id, status, email, lead_score, engagement_score, has_identity, last_visit, created_at, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(visitor_id) DO UPDATE SET
			status = excluded.status,
			email = excluded.email,
			lead_score = excluded.lead_score,
			engagement_score = excluded.engagement_score,
			has_identity = excluded.has_identity,
			last_visit = excluded.last_visit,
			doc = excluded.doc`

	_, err = s.db.Conn.Exec(query,
		v.VisitorID,
		string(v.Status),
		v.Email,
		v.Behavior.LeadScore,
		v.Behavior.EngagementScore,
		hasIdentity,
		v.LastVisit.UTC(),
		v.CreatedAt.UTC(),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert visitor %s: %w", v.VisitorID, err)
	}

	return nil
}

func (s *SQLVisitorStore) DeleteVisitors(visitorIDs []string) (int, error) {
	if len(visitorIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(visitorIDs))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`DELETE FROM visitors WHERE visitor_id IN (%s)`, placeholders)

	args := make([]interface{}, len(visitorIDs))
	for i, id := range visitorIDs {
		args[i] = id
	}

	result, err := s.db.Conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete visitors: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted visitors: %w", err)
	}

	return int(affected), nil
}

func (s *SQLVisitorStore) ListSince(cutoff time.Time) ([]*models.Visitor, error) {
	var rows *sql.Rows
	var err error

	if cutoff.IsZero() {
		rows, err = s.db.Conn.Query(`SELECT doc FROM visitors ORDER BY last_visit DESC`)
	} else {
		rows, err = s.db.Conn.Query(
			`SELECT doc FROM visitors WHERE last_visit >= ? ORDER BY last_visit DESC`,
			cutoff.UTC(),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	defer rows.Close()

	return scanVisitors(rows)
}

func (s *SQLVisitorStore) ListCaptured() ([]*models.Visitor, error) {
	rows, err := s.db.Conn.Query(
		`SELECT doc FROM visitors WHERE has_identity = 1 ORDER BY last_visit DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list captured visitors: %w", err)
	}
	defer rows.Close()

	return scanVisitors(rows)
}

func (s *SQLVisitorStore) Export(status string, minLeadScore int) ([]*models.Visitor, error) {
	query := `SELECT doc FROM visitors WHERE lead_score >= ?`
	args := []interface{}{minLeadScore}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY lead_score DESC, last_visit DESC`

	rows, err := s.db.Conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to export visitors: %w", err)
	}
	defer rows.Close()

	return scanVisitors(rows)
}

func scanVisitors(rows *sql.Rows) ([]*models.Visitor, error) {
	visitors := make([]*models.Visitor, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan visitor row: %w", err)
		}
		v, err := decodeVisitor(doc)
		if err != nil {
			return nil, err
		}
		visitors = append(visitors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("visitor row iteration failed: %w", err)
	}
	return visitors, nil
}

// decodeVisitor unmarshals a stored document and re-initializes any embedded
// structure that round-tripped to nil so behavior methods stay nil-safe.
func decodeVisitor(doc string) (*models.Visitor, error) {
	var v models.Visitor
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return nil, fmt.Errorf("failed to decode visitor document: %w", err)
	}

	if v.PagesVisited == nil {
		v.PagesVisited = make(map[string]*models.PageVisit)
	}
	if v.FormInteractions == nil {
		v.FormInteractions = make(map[string]*models.FormInteraction)
	}
	for _, interaction := range v.FormInteractions {
		if interaction.Fields == nil {
			interaction.Fields = make(map[string]*models.FormField)
		}
	}
	if v.ClosedSessions == nil {
		v.ClosedSessions = make([]models.Session, 0)
	}
	if v.Events == nil {
		v.Events = make([]models.Event, 0)
	}
	if v.Behavior.Interests == nil {
		v.Behavior.Interests = make([]string, 0)
	}

	return &v, nil
}
