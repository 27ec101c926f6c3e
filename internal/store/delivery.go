package store

import (
	"database/sql"
	"time"
)

// Delivery records one hand-off of a signature to an upload hook.
type Delivery struct {
	ID          int64     `json:"id"`
	SignatureID string    `json:"signatureId"`
	Hook        string    `json:"hook"`
	Action      string    `json:"action"`
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DeliveryRepository records upload hook results.
type DeliveryRepository struct {
	db *sql.DB
}

// Deliveries returns the delivery repository for this store.
func (s *Store) Deliveries() *DeliveryRepository {
	return &DeliveryRepository{db: s.db}
}

// Create inserts d and sets its ID.
func (r *DeliveryRepository) Create(d *Delivery) error {
	d.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO deliveries (signature_id, hook, action, success, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.SignatureID, d.Hook, d.Action, d.Success, d.Message, d.CreatedAt,
	)
	if err != nil {
		return err
	}

	d.ID, err = result.LastInsertId()
	return err
}

// ListBySignature returns the deliveries of one signature, oldest first.
func (r *DeliveryRepository) ListBySignature(signatureID string) ([]*Delivery, error) {
	rows, err := r.db.Query(
		`SELECT id, signature_id, hook, action, success, message, created_at
		 FROM deliveries WHERE signature_id = ? ORDER BY id`,
		signatureID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Delivery
	for rows.Next() {
		d := &Delivery{}
		var success int

		if err := rows.Scan(&d.ID, &d.SignatureID, &d.Hook, &d.Action, &success, &d.Message, &d.CreatedAt); err != nil {
			return nil, err
		}

		d.Success = success != 0
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
