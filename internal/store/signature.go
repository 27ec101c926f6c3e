package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Purpose records why a signature was captured.
type Purpose string

const (
	PurposeCapture  Purpose = "capture"
	PurposeRegister Purpose = "register"
	PurposeValidate Purpose = "validate"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeCapture, PurposeRegister, PurposeValidate:
		return true
	}
	return false
}

// Signature is a saved signature.
type Signature struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Purpose     Purpose         `json:"purpose"`
	PNG         []byte          `json:"-"`
	SVG         string          `json:"-"`
	Coordinates string          `json:"-"`
	Thumbnail   []byte          `json:"-"`
	Stroke      json.RawMessage `json:"-"`
	Segments    int             `json:"segments"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SignatureRepository provides CRUD operations for signatures.
type SignatureRepository struct {
	db *sql.DB
}

// Signatures returns the signature repository for this store.
func (s *Store) Signatures() *SignatureRepository {
	return &SignatureRepository{db: s.db}
}

// Create inserts a new signature.
func (r *SignatureRepository) Create(sig *Signature) error {
	sig.CreatedAt = time.Now()
	if sig.Purpose == "" {
		sig.Purpose = PurposeCapture
	}
	stroke := sig.Stroke
	if stroke == nil {
		stroke = json.RawMessage("[]")
	}

	_, err := r.db.Exec(
		`INSERT INTO signatures (id, username, purpose, png, svg, coordinates, thumbnail, stroke, segments, width, height, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sig.ID, sig.Username, string(sig.Purpose), sig.PNG, sig.SVG, sig.Coordinates, sig.Thumbnail,
		string(stroke), sig.Segments, sig.Width, sig.Height, sig.CreatedAt,
	)
	return err
}

// GetByID retrieves a signature with its artifacts.
func (r *SignatureRepository) GetByID(id string) (*Signature, error) {
	sig := &Signature{}
	var purpose, stroke string

	err := r.db.QueryRow(
		`SELECT id, username, purpose, png, svg, coordinates, thumbnail, stroke, segments, width, height, created_at
		 FROM signatures WHERE id = ?`,
		id,
	).Scan(&sig.ID, &sig.Username, &purpose, &sig.PNG, &sig.SVG, &sig.Coordinates, &sig.Thumbnail,
		&stroke, &sig.Segments, &sig.Width, &sig.Height, &sig.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sig.Purpose = Purpose(purpose)
	sig.Stroke = json.RawMessage(stroke)
	return sig, nil
}

// List returns signature metadata, newest first. Artifacts other than the
// thumbnail are not loaded. A limit <= 0 means no limit.
func (r *SignatureRepository) List(limit int) ([]*Signature, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, username, purpose, thumbnail, segments, width, height, created_at
		 FROM signatures ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []*Signature
	for rows.Next() {
		sig := &Signature{}
		var purpose string

		err := rows.Scan(&sig.ID, &sig.Username, &purpose, &sig.Thumbnail, &sig.Segments,
			&sig.Width, &sig.Height, &sig.CreatedAt)
		if err != nil {
			return nil, err
		}

		sig.Purpose = Purpose(purpose)
		sigs = append(sigs, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sigs, nil
}

// Count returns the number of saved signatures.
func (r *SignatureRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM signatures`).Scan(&n)
	return n, err
}

// Delete removes a signature and its deliveries.
func (r *SignatureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM signatures WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
