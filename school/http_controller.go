package school

import (
	"context"
	"errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-school/auth"
)

type Controller struct {
	Debug    bool
	Logger   auth.Logger
	Repo     RepositoryManager
	Activity auth.ActivitySink
}

type ControllerOption func(*Controller) *Controller

func WithRepo(repo RepositoryManager) ControllerOption {
	return func(c *Controller) *Controller {
		c.Repo = repo
		return c
	}
}

func WithLogger(logger auth.Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithActivitySink sets the sink receiving record write events
func WithActivitySink(sink auth.ActivitySink) ControllerOption {
	return func(c *Controller) *Controller {
		c.Activity = sink
		return c
	}
}

func WithDebug(debug bool) ControllerOption {
	return func(c *Controller) *Controller {
		c.Debug = debug
		return c
	}
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger(),
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in school controller...")
	}

	return c
}

// binder decodes and validates a request body into a new or existing
// record inside the write transaction
type binder[T Record] func(c router.Context, ctx context.Context, tx bun.IDB, record T) error

type resource[T Record] struct {
	ctrl  *Controller
	store *Store[T]
	bind  binder[T]
}

// RegisterRoutes mounts the courses, students and teachers collections
// behind the protected middleware
func RegisterRoutes[T any](app router.Router[T], protected router.MiddlewareFunc, opts ...ControllerOption) *Controller {
	c := NewController(opts...)

	students := app.Group("/" + ResourceStudents).Use(protected)
	mount(students, &resource[*Student]{ctrl: c, store: c.Repo.Students(), bind: bindStudent})

	teachers := app.Group("/" + ResourceTeachers).Use(protected)
	mount(teachers, &resource[*Teacher]{ctrl: c, store: c.Repo.Teachers(), bind: bindTeacher})

	courses := app.Group("/" + ResourceCourses).Use(protected)
	mount(courses, &resource[*Course]{ctrl: c, store: c.Repo.Courses(), bind: c.bindCourse})
	courses.Post("/:id/students", c.EnrollStudent, Authorize(ResourceCourses, auth.PermissionEdit)).
		SetName(ResourceCourses + ".enroll")
	courses.Delete("/:id/students/:studentId", c.UnenrollStudent, Authorize(ResourceCourses, auth.PermissionEdit)).
		SetName(ResourceCourses + ".unenroll")

	return c
}

func mount[R any, T Record](app router.Router[R], r *resource[T]) {
	name := r.store.Resource()
	app.Get("/", r.list, Authorize(name, auth.PermissionRead)).SetName(name + ".list")
	app.Get("/:id", r.get, Authorize(name, auth.PermissionRead)).SetName(name + ".get")
	app.Post("/", r.create, Authorize(name, auth.PermissionCreate)).SetName(name + ".create")
	app.Put("/:id", r.update, Authorize(name, auth.PermissionEdit)).SetName(name + ".update")
	app.Delete("/:id", r.remove, Authorize(name, auth.PermissionDelete)).SetName(name + ".delete")
}

// Authorize rejects requests whose claims lack the permission on resource
func Authorize(resource, permission string) router.MiddlewareFunc {
	return func(_ router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if _, ok := auth.GetClaims(c.Context()); !ok {
				return auth.ErrUnableToDecodeSession
			}

			if !auth.Can(c.Context(), resource, permission) {
				return auth.Forbidden(resource, permission)
			}

			return c.Next()
		}
	}
}

func (r *resource[T]) list(c router.Context) error {
	p, err := ParsePagination(c)
	if err != nil {
		return err
	}

	page, err := r.store.Paginate(c.Context(), p)
	if err != nil {
		return wrapInternal(err, "failed to list "+r.store.Resource())
	}

	return c.JSON(http.StatusOK, page)
}

func (r *resource[T]) get(c router.Context) error {
	record, err := r.store.Find(c.Context(), c.Param("id"))
	if err != nil {
		return wrapInternal(err, "failed to fetch "+r.store.Resource())
	}
	return c.JSON(http.StatusOK, record)
}

func (r *resource[T]) create(c router.Context) error {
	record := r.store.newRecord()

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	err := r.ctrl.Repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := r.bind(c, ctx, tx, record); err != nil {
			return err
		}
		created, err := r.store.InsertTx(ctx, tx, record)
		if err != nil {
			return err
		}
		record = created
		return nil
	})
	if err != nil {
		return wrapInternal(err, "failed to create "+r.store.Resource())
	}

	created, err := r.store.Find(c.Context(), record.GetID().String())
	if err != nil {
		return wrapInternal(err, "failed to fetch "+r.store.Resource())
	}

	r.ctrl.Logger.Info("record created", "resource", r.store.Resource(), "id", record.GetID().String())
	r.ctrl.record(c, auth.ActivityEventRecordCreated, r.store.Resource(), record.GetID().String(), nil)
	if r.ctrl.Debug {
		r.ctrl.Logger.Debug("record created", "record", print.MaybePrettyJSON(created))
	}

	return c.JSON(http.StatusCreated, created)
}

func (r *resource[T]) update(c router.Context) error {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	err := r.ctrl.Repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := r.store.FindTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := r.bind(c, ctx, tx, record); err != nil {
			return err
		}
		_, err = r.store.SaveTx(ctx, tx, record)
		return err
	})
	if err != nil {
		return wrapInternal(err, "failed to update "+r.store.Resource())
	}

	updated, err := r.store.Find(c.Context(), id)
	if err != nil {
		return wrapInternal(err, "failed to fetch "+r.store.Resource())
	}

	r.ctrl.Logger.Info("record updated", "resource", r.store.Resource(), "id", id)
	r.ctrl.record(c, auth.ActivityEventRecordUpdated, r.store.Resource(), id, nil)

	return c.JSON(http.StatusOK, updated)
}

func (r *resource[T]) remove(c router.Context) error {
	id := c.Param("id")

	if err := r.store.Remove(c.Context(), id); err != nil {
		return wrapInternal(err, "failed to delete "+r.store.Resource())
	}

	r.ctrl.Logger.Info("record deleted", "resource", r.store.Resource(), "id", id)
	r.ctrl.record(c, auth.ActivityEventRecordDeleted, r.store.Resource(), id, nil)

	return c.NoContent(http.StatusNoContent)
}

// EnrollStudent adds a student to the course and returns the course
func (ctrl *Controller) EnrollStudent(c router.Context) error {
	payload := new(EnrollRequest)
	if err := parseBody(c, payload); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	courseID := c.Param("id")
	if err := ctrl.Repo.Enroll(c.Context(), courseID, payload.StudentID); err != nil {
		return wrapInternal(err, "failed to enroll student")
	}

	course, err := ctrl.Repo.Courses().Find(c.Context(), courseID)
	if err != nil {
		return wrapInternal(err, "failed to fetch course")
	}

	ctrl.Logger.Info("student enrolled", "course_id", courseID, "student_id", payload.StudentID)
	ctrl.record(c, auth.ActivityEventStudentEnrolled, ResourceCourses, courseID, map[string]any{
		"student_id": payload.StudentID,
	})

	return c.JSON(http.StatusOK, course)
}

// UnenrollStudent removes a student from the course
func (ctrl *Controller) UnenrollStudent(c router.Context) error {
	courseID := c.Param("id")
	studentID := c.Param("studentId")

	if err := ctrl.Repo.Unenroll(c.Context(), courseID, studentID); err != nil {
		return wrapInternal(err, "failed to unenroll student")
	}

	ctrl.Logger.Info("student unenrolled", "course_id", courseID, "student_id", studentID)
	ctrl.record(c, auth.ActivityEventStudentUnenrolled, ResourceCourses, courseID, map[string]any{
		"student_id": studentID,
	})

	return c.NoContent(http.StatusNoContent)
}

func (ctrl *Controller) record(c router.Context, event auth.ActivityEventType, resource, id string, metadata map[string]any) {
	auth.RecordActivity(c.Context(), ctrl.Activity, ctrl.Logger, auth.ActivityEvent{
		EventType:  event,
		Actor:      auth.ActorFromContext(c.Context()),
		ObjectType: resource,
		ObjectID:   id,
		Metadata:   metadata,
	})
}

func bindStudent(c router.Context, _ context.Context, _ bun.IDB, record *Student) error {
	payload := new(StudentRequest)
	if err := parseBody(c, payload); err != nil {
		return err
	}
	if err := payload.Validate(); err != nil {
		return err
	}
	payload.Apply(record)
	return nil
}

func bindTeacher(c router.Context, _ context.Context, _ bun.IDB, record *Teacher) error {
	payload := new(TeacherRequest)
	if err := parseBody(c, payload); err != nil {
		return err
	}
	if err := payload.Validate(); err != nil {
		return err
	}
	payload.Apply(record)
	return nil
}

func (ctrl *Controller) bindCourse(c router.Context, ctx context.Context, tx bun.IDB, record *Course) error {
	payload := new(CourseRequest)
	if err := parseBody(c, payload); err != nil {
		return err
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	payload.Apply(record)

	if record.TeacherID != nil {
		err := ctrl.Repo.Teachers().ExistsTx(ctx, tx, record.TeacherID.String())
		if IsNotFound(err) {
			return validation.Errors{"teacher_id": errors.New("teacher not found")}
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func parseBody(c router.Context, payload any) error {
	if err := c.Bind(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request payload").
			WithTextCode(TextCodeBadRequest).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

// wrapInternal keeps categorized and validation errors as they are and
// marks anything else as an internal failure
func wrapInternal(err error, msg string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
