package school

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is implemented by every school model
type Record interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	touch(now time.Time)
	normalize()
}

// Teacher teaches many courses
type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:teacher"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	Phone         string    `bun:"phone" json:"phone,omitempty"`
	Department    string    `bun:"department" json:"department,omitempty"`
	Courses       []*Course `bun:"rel:has-many,join:id=teacher_id" json:"Courses,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Course belongs to a teacher and has many enrolled students
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:course"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Title         string     `bun:"title,notnull" json:"title"`
	Description   string     `bun:"description" json:"description,omitempty"`
	TeacherID     *uuid.UUID `bun:"teacher_id,type:uuid" json:"teacher_id,omitempty"`
	Teacher       *Teacher   `bun:"rel:belongs-to,join:teacher_id=id" json:"Teacher,omitempty"`
	Students      []*Student `bun:"m2m:course_students,join:Course=Student" json:"Students,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Student enrolls in many courses
type Student struct {
	bun.BaseModel `bun:"table:students,alias:student"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	Courses       []*Course `bun:"m2m:course_students,join:Student=Course" json:"Courses,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// CourseStudent is the enrollment join table
type CourseStudent struct {
	bun.BaseModel `bun:"table:course_students,alias:cs"`
	CourseID      uuid.UUID `bun:"course_id,pk,type:uuid"`
	Course        *Course   `bun:"rel:belongs-to,join:course_id=id"`
	StudentID     uuid.UUID `bun:"student_id,pk,type:uuid"`
	Student       *Student  `bun:"rel:belongs-to,join:student_id=id"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (t *Teacher) GetID() uuid.UUID   { return t.ID }
func (t *Teacher) SetID(id uuid.UUID) { t.ID = id }
func (t *Teacher) touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

func (t *Teacher) normalize()       {}
func (t *Teacher) GetEmail() string { return t.Email }

func (c *Course) GetID() uuid.UUID   { return c.ID }
func (c *Course) SetID(id uuid.UUID) { c.ID = id }
func (c *Course) touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// a detached course scans an empty teacher from the join
func (c *Course) normalize() {
	if c.TeacherID == nil {
		c.Teacher = nil
	}
}

func (s *Student) GetID() uuid.UUID   { return s.ID }
func (s *Student) SetID(id uuid.UUID) { s.ID = id }
func (s *Student) touch(now time.Time) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
}

func (s *Student) normalize()       {}
func (s *Student) GetEmail() string { return s.Email }

var (
	_ Record = (*Teacher)(nil)
	_ Record = (*Course)(nil)
	_ Record = (*Student)(nil)
)

func parseUUID(raw string) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
