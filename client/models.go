package client

import "time"

// Teacher as returned by the teachers endpoints
type Teacher struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department,omitempty"`
	Courses    []Course  `json:"Courses,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t Teacher) DepartmentLabel() string {
	if t.Department == "" {
		return "N/A"
	}
	return t.Department
}

func (t Teacher) CourseCount() int { return len(t.Courses) }

// Course as returned by the courses endpoints
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	TeacherID   *string   `json:"teacher_id,omitempty"`
	Teacher     *Teacher  `json:"Teacher,omitempty"`
	Students    []Student `json:"Students,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayTitle falls back to the name and then to a placeholder
func (c Course) DisplayTitle() string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Name != "":
		return c.Name
	default:
		return "Untitled Course"
	}
}

func (c Course) DisplayDescription() string {
	if c.Description == "" {
		return "No description available"
	}
	return c.Description
}

// TeacherName is empty when the course has no teacher
func (c Course) TeacherName() string {
	if c.Teacher == nil {
		return ""
	}
	return c.Teacher.Name
}

func (c Course) StudentCount() int { return len(c.Students) }

// Student as returned by the students endpoints
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Courses   []Course  `json:"Courses,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Student) CourseCount() int { return len(s.Courses) }
