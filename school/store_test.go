package school_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-school/persistence"
	"github.com/goliatone/go-school/school"
)

func newTestRepo(t *testing.T) school.RepositoryManager {
	t.Helper()
	db, err := persistence.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := school.NewRepositoryManager(db)
	require.NoError(t, repo.Validate())
	return repo
}

func TestStore_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	teacher, err := repo.Teachers().Insert(ctx, &school.Teacher{
		Name:       "Marie Curie",
		Email:      "marie@example.com",
		Department: "Physics",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, teacher.ID)
	assert.False(t, teacher.CreatedAt.IsZero())

	teacherID := teacher.ID
	course, err := repo.Courses().Insert(ctx, &school.Course{
		Title:     "Radioactivity",
		TeacherID: &teacherID,
	})
	require.NoError(t, err)

	found, err := repo.Courses().Find(ctx, course.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Radioactivity", found.Title)
	require.NotNil(t, found.Teacher)
	assert.Equal(t, "Marie Curie", found.Teacher.Name)

	withCourses, err := repo.Teachers().Find(ctx, teacher.ID.String())
	require.NoError(t, err)
	require.Len(t, withCourses.Courses, 1)
	assert.Equal(t, course.ID, withCourses.Courses[0].ID)

	_, err = repo.Courses().Find(ctx, uuid.NewString())
	assert.True(t, school.IsNotFound(err))

	_, err = repo.Courses().Find(ctx, "not-a-uuid")
	assert.True(t, school.IsNotFound(err))
}

func TestStore_DetachedCourseHasNoTeacher(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	course, err := repo.Courses().Insert(ctx, &school.Course{Title: "Self study"})
	require.NoError(t, err)

	found, err := repo.Courses().Find(ctx, course.ID.String())
	require.NoError(t, err)
	assert.Nil(t, found.TeacherID)
	assert.Nil(t, found.Teacher)
}

func TestStore_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Students().Insert(ctx, &school.Student{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	_, err = repo.Students().Insert(ctx, &school.Student{Name: "Ann Two", Email: "ann@example.com"})
	assert.ErrorIs(t, err, school.ErrRecordExists)
}

func TestStore_Paginate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for i := 0; i < 12; i++ {
		_, err := repo.Students().Insert(ctx, &school.Student{
			Name:  "Student",
			Email: uuid.NewString() + "@example.com",
		})
		require.NoError(t, err)
	}

	page, err := repo.Students().Paginate(ctx, school.Pagination{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 5, page.Limit)

	last, err := repo.Students().Paginate(ctx, school.Pagination{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, last.Data, 2)

	beyond, err := repo.Students().Paginate(ctx, school.Pagination{Page: 9, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, beyond.Data)
	assert.NotNil(t, beyond.Data)
	assert.Equal(t, 12, beyond.Total)

	seen := map[uuid.UUID]bool{}
	for p := 1; p <= 3; p++ {
		page, err := repo.Students().Paginate(ctx, school.Pagination{Page: p, Limit: 5})
		require.NoError(t, err)
		for _, s := range page.Data {
			assert.False(t, seen[s.ID], "student listed twice")
			seen[s.ID] = true
		}
	}
	assert.Len(t, seen, 12)

	count, err := repo.Students().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}

func TestStore_SaveAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	student, err := repo.Students().Insert(ctx, &school.Student{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	student.Name = "Robert"
	_, err = repo.Students().Save(ctx, student)
	require.NoError(t, err)

	found, err := repo.Students().Find(ctx, student.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Robert", found.Name)

	require.NoError(t, repo.Students().Remove(ctx, student.ID.String()))

	err = repo.Students().Remove(ctx, student.ID.String())
	assert.True(t, school.IsNotFound(err))
}

func TestRepositoryManager_Enrollment(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	course, err := repo.Courses().Insert(ctx, &school.Course{Title: "Algebra"})
	require.NoError(t, err)
	student, err := repo.Students().Insert(ctx, &school.Student{Name: "Eve", Email: "eve@example.com"})
	require.NoError(t, err)

	courseID, studentID := course.ID.String(), student.ID.String()

	require.NoError(t, repo.Enroll(ctx, courseID, studentID))
	require.NoError(t, repo.Enroll(ctx, courseID, studentID))

	found, err := repo.Courses().Find(ctx, courseID)
	require.NoError(t, err)
	require.Len(t, found.Students, 1)
	assert.Equal(t, student.ID, found.Students[0].ID)

	enrolled, err := repo.Students().Find(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, enrolled.Courses, 1)
	assert.Equal(t, "Algebra", enrolled.Courses[0].Title)

	err = repo.Enroll(ctx, courseID, uuid.NewString())
	assert.True(t, school.IsNotFound(err))

	require.NoError(t, repo.Unenroll(ctx, courseID, studentID))
	err = repo.Unenroll(ctx, courseID, studentID)
	assert.True(t, school.IsNotFound(err))

	found, err = repo.Courses().Find(ctx, courseID)
	require.NoError(t, err)
	assert.Empty(t, found.Students)
}

func TestRepositoryManager_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	teacher, err := repo.Teachers().Insert(ctx, &school.Teacher{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	teacherID := teacher.ID

	course, err := repo.Courses().Insert(ctx, &school.Course{Title: "Engines", TeacherID: &teacherID})
	require.NoError(t, err)
	student, err := repo.Students().Insert(ctx, &school.Student{Name: "Charles", Email: "charles@example.com"})
	require.NoError(t, err)
	require.NoError(t, repo.Enroll(ctx, course.ID.String(), student.ID.String()))

	require.NoError(t, repo.Teachers().Remove(ctx, teacher.ID.String()))

	found, err := repo.Courses().Find(ctx, course.ID.String())
	require.NoError(t, err)
	assert.Nil(t, found.TeacherID)
	assert.Nil(t, found.Teacher)

	require.NoError(t, repo.Courses().Remove(ctx, course.ID.String()))

	enrolled, err := repo.Students().Find(ctx, student.ID.String())
	require.NoError(t, err)
	assert.Empty(t, enrolled.Courses)
}
