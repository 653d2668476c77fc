package school

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// PhoneRegion is the region used to parse teacher phone numbers written
// without a country calling code
var PhoneRegion = "US"

var errInvalidPhone = errors.New("must be a valid phone number")

// TeacherRequest payload
type TeacherRequest struct {
	Name       string `json:"name" form:"name"`
	Email      string `json:"email" form:"email"`
	Phone      string `json:"phone" form:"phone"`
	Department string `json:"department" form:"department"`
}

// Validate will run validation rules
func (r TeacherRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&r.Phone, validation.By(phoneNumber)),
		validation.Field(&r.Department, validation.Length(0, 200)),
	)
}

// Apply copies the payload into the teacher record
func (r TeacherRequest) Apply(t *Teacher) {
	t.Name = strings.TrimSpace(r.Name)
	t.Email = normalizeEmail(r.Email)
	t.Phone = NormalizePhone(r.Phone)
	t.Department = strings.TrimSpace(r.Department)
}

// StudentRequest payload
type StudentRequest struct {
	Name  string `json:"name" form:"name"`
	Email string `json:"email" form:"email"`
}

// Validate will run validation rules
func (r StudentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
	)
}

// Apply copies the payload into the student record
func (r StudentRequest) Apply(s *Student) {
	s.Name = strings.TrimSpace(r.Name)
	s.Email = normalizeEmail(r.Email)
}

// CourseRequest payload, teacher_id is optional and empty detaches the
// course from its teacher
type CourseRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	TeacherID   string `json:"teacher_id" form:"teacher_id"`
}

// Validate will run validation rules
func (r CourseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.TeacherID, is.UUID),
	)
}

// Apply copies the payload into the course record
func (r CourseRequest) Apply(c *Course) {
	c.Title = strings.TrimSpace(r.Title)
	c.Description = strings.TrimSpace(r.Description)
	c.TeacherID = nil
	c.Teacher = nil
	if id, ok := parseUUID(r.TeacherID); ok {
		c.TeacherID = &id
	}
}

// EnrollRequest payload
type EnrollRequest struct {
	StudentID string `json:"student_id" form:"student_id"`
}

// Validate will run validation rules
func (r EnrollRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StudentID, validation.Required, is.UUID),
	)
}

func phoneNumber(value any) error {
	raw, _ := value.(string)
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	num, err := phonenumbers.Parse(raw, PhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return errInvalidPhone
	}
	return nil
}

// NormalizePhone formats valid numbers as E164 and returns anything
// else trimmed
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	num, err := phonenumbers.Parse(raw, PhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
