package school

import (
	"context"
	"database/sql"
	"errors"
	"log"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Resource names, also used as permission scopes
const (
	ResourceCourses  = "courses"
	ResourceStudents = "students"
	ResourceTeachers = "teachers"
)

// RepositoryManager exposes the school repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Courses() *Store[*Course]
	Students() *Store[*Student]
	Teachers() *Store[*Teacher]
	Enroll(ctx context.Context, courseID, studentID string) error
	Unenroll(ctx context.Context, courseID, studentID string) error
}

type mngr struct {
	db       *bun.DB
	courses  *Store[*Course]
	students *Store[*Student]
	teachers *Store[*Teacher]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	db.RegisterModel((*CourseStudent)(nil))

	return &mngr{
		db:       db,
		courses:  newStore(db, ResourceCourses, func() *Course { return &Course{} }, "Teacher", "Students"),
		students: newStore(db, ResourceStudents, func() *Student { return &Student{} }, "Courses"),
		teachers: newStore(db, ResourceTeachers, func() *Teacher { return &Teacher{} }, "Courses"),
	}
}

func (m *mngr) Validate() error {
	if m.db == nil {
		return errors.New("school repository manager needs a database")
	}

	if m.courses == nil || m.students == nil || m.teachers == nil {
		return errors.New("school repositories should be initialized")
	}

	return nil
}

func (m *mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m *mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m *mngr) Courses() *Store[*Course] {
	return m.courses
}

func (m *mngr) Students() *Store[*Student] {
	return m.students
}

func (m *mngr) Teachers() *Store[*Teacher] {
	return m.teachers
}

// Enroll adds the student to the course, enrolling twice is a no-op
func (m *mngr) Enroll(ctx context.Context, courseID, studentID string) error {
	return m.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.courses.ExistsTx(ctx, tx, courseID); err != nil {
			return err
		}

		if err := m.students.ExistsTx(ctx, tx, studentID); err != nil {
			return err
		}

		_, err := tx.NewInsert().
			Model(&CourseStudent{
				CourseID:  uuid.MustParse(courseID),
				StudentID: uuid.MustParse(studentID),
			}).
			On("CONFLICT DO NOTHING").
			Exec(ctx)

		return err
	})
}

// Unenroll removes the student from the course
func (m *mngr) Unenroll(ctx context.Context, courseID, studentID string) error {
	cid, err := uuid.Parse(courseID)
	if err != nil {
		return notFound(ResourceCourses, courseID)
	}

	sid, err := uuid.Parse(studentID)
	if err != nil {
		return notFound(ResourceStudents, studentID)
	}

	res, err := m.db.NewDelete().
		Model((*CourseStudent)(nil)).
		Where("course_id = ?", cid).
		Where("student_id = ?", sid).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("enrollments", courseID+":"+studentID)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}
