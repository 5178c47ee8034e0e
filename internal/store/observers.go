// File path: internal/store/observers.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ObserverInput carries the writable observer fields for a full create.
type ObserverInput struct {
	Name         string
	Email        string
	Phone        string
	Organization string
	Expertise    string
	JoinDate     string
	Active       *bool
}

func (in *ObserverInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return validationf("observer name is required")
	}
	if in.Email == "" {
		return validationf("observer email is required")
	}
	if in.JoinDate != "" {
		if err := checkDate(in.JoinDate); err != nil {
			return err
		}
	}
	return nil
}

// ObserverPatch is a sparse update: only non-nil fields are written.
type ObserverPatch struct {
	Name         *string
	Email        *string
	Phone        *string
	Organization *string
	Expertise    *string
	JoinDate     *string
	Active       *bool
}

// CreateObserver inserts an observer row and returns its id. A duplicate
// email surfaces as a ConflictError.
func (s *Store) CreateObserver(ctx context.Context, in ObserverInput) (int64, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	if err := in.validate(); err != nil {
		return 0, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var id int64
	query := s.rebind(`INSERT INTO observers (name, email, phone, organization, expertise, join_date, active)
                VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING observer_id`)
	err := s.db.QueryRowxContext(ctx, query,
		in.Name, in.Email, in.Phone, in.Organization, in.Expertise, in.JoinDate, active,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &ConflictError{Reference: "observer email", Err: err}
		}
		return 0, fmt.Errorf("insert observer: %w", err)
	}
	return id, nil
}

// UpdateObserver applies a sparse patch built from the populated optionals.
// An empty patch is rejected before any write.
func (s *Store) UpdateObserver(ctx context.Context, id int64, patch ObserverPatch) error {
	if err := s.ensureReady(); err != nil {
		return err
	}

	sets := []string{}
	args := []interface{}{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, strings.TrimSpace(*patch.Email))
	}
	if patch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *patch.Phone)
	}
	if patch.Organization != nil {
		sets = append(sets, "organization = ?")
		args = append(args, *patch.Organization)
	}
	if patch.Expertise != nil {
		sets = append(sets, "expertise = ?")
		args = append(args, *patch.Expertise)
	}
	if patch.JoinDate != nil {
		if *patch.JoinDate != "" {
			if err := checkDate(*patch.JoinDate); err != nil {
				return err
			}
		}
		sets = append(sets, "join_date = ?")
		args = append(args, *patch.JoinDate)
	}
	if patch.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *patch.Active)
	}
	if len(sets) == 0 {
		return validationf("no fields to update")
	}
	args = append(args, id)

	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	query := s.rebind(fmt.Sprintf(`UPDATE observers SET %s WHERE observer_id = ?`, strings.Join(sets, ", ")))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return &ConflictError{Reference: "observer email", Err: err}
		}
		return fmt.Errorf("update observer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update observer: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetObserver returns one observer by id.
func (s *Store) GetObserver(ctx context.Context, id int64) (*Observer, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var obs Observer
	query := s.rebind(`SELECT * FROM observers WHERE observer_id = ?`)
	if err := s.db.GetContext(ctx, &obs, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select observer: %w", err)
	}
	return &obs, nil
}

// ListObservers returns every observer ordered by name.
func (s *Store) ListObservers(ctx context.Context) ([]Observer, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	observers := []Observer{}
	if err := s.db.SelectContext(ctx, &observers, `SELECT * FROM observers ORDER BY name`); err != nil {
		return nil, fmt.Errorf("select observers: %w", err)
	}
	return observers, nil
}

func checkDate(value string) error {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return &ValidationError{Msg: "invalid date", Details: "dates must use the YYYY-MM-DD format"}
	}
	return nil
}
