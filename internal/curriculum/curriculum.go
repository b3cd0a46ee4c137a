// Package curriculum holds the closed subject list the study screens
// draw from, grouped the way the IB Diploma Programme groups subjects.
package curriculum

// Group is one IB subject group.
type Group struct {
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
}

// Curriculum is the externally supplied subject enumeration. Repositories
// store subject values as opaque strings; the curriculum exists for the
// browsing screen and the subject picker.
type Curriculum struct {
	Groups []Group `json:"groups"`
}

// Default returns the built-in IB Diploma Programme curriculum, used when
// the configuration supplies no override.
func Default() Curriculum {
	return Curriculum{Groups: []Group{
		{Name: "Studies in Language and Literature", Subjects: []string{"English A", "Spanish A"}},
		{Name: "Language Acquisition", Subjects: []string{"French B", "Spanish B", "German B"}},
		{Name: "Individuals and Societies", Subjects: []string{"History", "Geography", "Economics", "Psychology"}},
		{Name: "Sciences", Subjects: []string{"Biology", "Chemistry", "Physics", "Computer Science"}},
		{Name: "Mathematics", Subjects: []string{"Math AA", "Math AI"}},
		{Name: "The Arts", Subjects: []string{"Visual Arts", "Music", "Theatre"}},
	}}
}

// Subjects returns the flat subject list in group order.
func (c Curriculum) Subjects() []string {
	var out []string
	for _, g := range c.Groups {
		out = append(out, g.Subjects...)
	}
	return out
}

// Has reports whether subject is part of the curriculum.
func (c Curriculum) Has(subject string) bool {
	for _, g := range c.Groups {
		for _, s := range g.Subjects {
			if s == subject {
				return true
			}
		}
	}
	return false
}
