package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/aula/core"
)

// Material types
const (
	TypePDF          = "PDF"
	TypeVideo        = "Video"
	TypePresentation = "Presentation"
	TypeDocument     = "Document"
)

// Material is one uploaded teaching item. Materials sharing a (Subject, TeacherID) pair form a Group.
type Material struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"` // copied at upload, not kept in sync
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	FileURL     string    `json:"file_url,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type NewMaterial struct {
	Subject     string `json:"subject" validate:"required,notblank"`
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"omitempty,oneof=PDF Video Presentation Document"`
	FileURL     string `json:"file_url" validate:"omitempty,url"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Subject = core.CleanString(nm.Subject)
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	nm.FileURL = core.CleanString(nm.FileURL)
	if nm.Type == "" {
		nm.Type = TypePDF
	}
	return validate.Struct(nm)
}

// Group is a course: every Material sharing a subject and a teacher.
type Group struct {
	Subject       string     `json:"subject"`
	TeacherID     string     `json:"teacher_id"`
	TeacherName   string     `json:"teacher_name"`
	MaterialCount int        `json:"material_count"`
	Materials     []Material `json:"materials"`
}

// EnrolledIn reports whether any of the group's materials is in the enrollment set.
func (g Group) EnrolledIn(enrolled map[string]bool) bool {
	for _, m := range g.Materials {
		if enrolled[m.ID] {
			return true
		}
	}
	return false
}

// MaterialIDs returns the ids of the group's materials, in stored order.
func (g Group) MaterialIDs() []string {
	ids := make([]string, 0, len(g.Materials))
	for _, m := range g.Materials {
		ids = append(ids, m.ID)
	}
	return ids
}

// SubjectMaterials is a dashboard section.
type SubjectMaterials struct {
	Subject   string     `json:"subject"`
	Materials []Material `json:"materials"`
}

type groupKey struct {
	subject   string
	teacherID string
}

// GroupMaterials folds materials into one Group per (subject, teacherID) pair.
// Groups come out in first-occurrence order and the first material of a pair sets its TeacherName.
func GroupMaterials(materials []Material) []Group {
	groups := make([]Group, 0)
	index := make(map[groupKey]int)
	for _, m := range materials {
		key := groupKey{subject: m.Subject, teacherID: m.TeacherID}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Subject:     m.Subject,
				TeacherID:   m.TeacherID,
				TeacherName: m.TeacherName,
			})
		}
		groups[i].MaterialCount++
		groups[i].Materials = append(groups[i].Materials, m)
	}
	return groups
}

// BySubject splits materials per subject, in first-occurrence order.
func BySubject(materials []Material) []SubjectMaterials {
	sections := make([]SubjectMaterials, 0)
	index := make(map[string]int)
	for _, m := range materials {
		i, ok := index[m.Subject]
		if !ok {
			i = len(sections)
			index[m.Subject] = i
			sections = append(sections, SubjectMaterials{Subject: m.Subject})
		}
		sections[i].Materials = append(sections[i].Materials, m)
	}
	return sections
}

// Subjects returns the distinct subjects of materials, in first-occurrence order.
func Subjects(materials []Material) []string {
	subjects := make([]string, 0)
	seen := make(map[string]bool)
	for _, m := range materials {
		if !seen[m.Subject] {
			seen[m.Subject] = true
			subjects = append(subjects, m.Subject)
		}
	}
	return subjects
}
