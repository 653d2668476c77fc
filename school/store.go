package school

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Store is the bun backed repository shared by the school resources
type Store[T Record] struct {
	repository.Repository[T]
	db        *bun.DB
	resource  string
	newRecord func() T
	relations []string
}

func newStore[T Record](db *bun.DB, resource string, newRecord func() T, relations ...string) *Store[T] {
	repo := repository.NewRepository[T](db, repository.ModelHandlers[T]{
		NewRecord: newRecord,
		GetID: func(record T) uuid.UUID {
			return record.GetID()
		},
		SetID: func(record T, id uuid.UUID) {
			record.SetID(id)
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &Store[T]{
		Repository: repo,
		db:         db,
		resource:   resource,
		newRecord:  newRecord,
		relations:  relations,
	}
}

// Resource returns the collection name, e.g. "courses"
func (s *Store[T]) Resource() string {
	return s.resource
}

func (s *Store[T]) withRelations(q *bun.SelectQuery) *bun.SelectQuery {
	for _, rel := range s.relations {
		q = q.Relation(rel)
	}
	return q
}

// Paginate returns one page of records ordered by creation time
func (s *Store[T]) Paginate(ctx context.Context, p Pagination) (*Page[T], error) {
	return s.PaginateTx(ctx, s.db, p)
}

func (s *Store[T]) PaginateTx(ctx context.Context, tx bun.IDB, p Pagination) (*Page[T], error) {
	records := make([]T, 0, p.Limit)

	total, err := s.withRelations(tx.NewSelect().Model(&records)).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC").
		Limit(p.Limit).
		Offset(p.Offset()).
		ScanAndCount(ctx)

	if err != nil && !isNotFound(err) {
		return nil, err
	}

	for _, record := range records {
		record.normalize()
	}

	return NewPage(records, total, p), nil
}

// Find returns the record with its relations loaded
func (s *Store[T]) Find(ctx context.Context, id string) (T, error) {
	return s.FindTx(ctx, s.db, id)
}

func (s *Store[T]) FindTx(ctx context.Context, tx bun.IDB, id string) (T, error) {
	var zero T

	uid, err := uuid.Parse(id)
	if err != nil {
		return zero, notFound(s.resource, id)
	}

	record := s.newRecord()
	err = s.withRelations(tx.NewSelect().Model(record)).
		Where("?TableAlias.id = ?", uid).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNotFound(err) {
			return zero, notFound(s.resource, id)
		}
		return zero, err
	}

	record.normalize()
	return record, nil
}

// ExistsTx fails with a not found error unless the record exists
func (s *Store[T]) ExistsTx(ctx context.Context, tx bun.IDB, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return notFound(s.resource, id)
	}

	exists, err := tx.NewSelect().
		Model(s.newRecord()).
		Where("?TableAlias.id = ?", uid).
		Exists(ctx)
	if err != nil {
		return err
	}

	if !exists {
		return notFound(s.resource, id)
	}
	return nil
}

// Insert creates the record assigning a new id
func (s *Store[T]) Insert(ctx context.Context, record T) (T, error) {
	return s.InsertTx(ctx, s.db, record)
}

func (s *Store[T]) InsertTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	var zero T

	if record.GetID() == uuid.Nil {
		record.SetID(uuid.New())
	}
	record.touch(time.Now())

	if err := s.checkUniqueTx(ctx, tx, record); err != nil {
		return zero, err
	}

	created, err := s.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return zero, ErrRecordExists
		}
		return zero, err
	}

	return created, nil
}

// Save persists every column of an existing record
func (s *Store[T]) Save(ctx context.Context, record T) (T, error) {
	return s.SaveTx(ctx, s.db, record)
}

func (s *Store[T]) SaveTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	var zero T

	record.touch(time.Now())

	if err := s.checkUniqueTx(ctx, tx, record); err != nil {
		return zero, err
	}

	updated, err := s.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.GetID().String()))
	if err != nil {
		if isUniqueViolation(err) {
			return zero, ErrRecordExists
		}
		return zero, err
	}

	return updated, nil
}

type emailRecord interface {
	GetEmail() string
}

// checkUniqueTx fails with ErrRecordExists when another record uses
// the same email
func (s *Store[T]) checkUniqueTx(ctx context.Context, tx bun.IDB, record T) error {
	withEmail, ok := any(record).(emailRecord)
	if !ok || withEmail.GetEmail() == "" {
		return nil
	}

	taken, err := tx.NewSelect().
		Model(s.newRecord()).
		Where("?TableAlias.email = ?", withEmail.GetEmail()).
		Where("?TableAlias.id != ?", record.GetID()).
		Exists(ctx)
	if err != nil {
		return err
	}

	if taken {
		return ErrRecordExists
	}
	return nil
}

// Remove deletes the record with the given id
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	return s.RemoveTx(ctx, s.db, id)
}

func (s *Store[T]) RemoveTx(ctx context.Context, tx bun.IDB, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return notFound(s.resource, id)
	}

	record := s.newRecord()
	record.SetID(uid)

	res, err := tx.NewDelete().Model(record).WherePK().Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(s.resource, id)
	}
	return nil
}

// Count returns the number of stored records
func (s *Store[T]) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model(s.newRecord()).Count(ctx)
}
