// Package analysis holds the career analysis returned by the language model together with
// its schema validation, console rendering and file persistence.
package analysis

// DefaultFile is where the interactive flow stores a successful analysis.
const DefaultFile = "career_analysis.json"

// Analysis is a validated career guidance result.
type Analysis struct {
	ProfileSummary      string       `json:"profile_summary" mapstructure:"profile_summary"`
	Strengths           []string     `json:"strengths" mapstructure:"strengths"`
	AreasForDevelopment []string     `json:"areas_for_development" mapstructure:"areas_for_development"`
	RecommendedPaths    []CareerPath `json:"recommended_paths" mapstructure:"recommended_paths"`
}

// CareerPath is a single recommended path.
type CareerPath struct {
	Title             string   `json:"title" mapstructure:"title"`
	Description       string   `json:"description" mapstructure:"description"`
	RequiredSkills    []string `json:"required_skills" mapstructure:"required_skills"`
	LearningResources []string `json:"learning_resources" mapstructure:"learning_resources"`
	NextSteps         []string `json:"next_steps" mapstructure:"next_steps"`
}

// normalize replaces nil slices with empty ones so the JSON form always carries arrays.
func (a *Analysis) normalize() {
	a.Strengths = nonNil(a.Strengths)
	a.AreasForDevelopment = nonNil(a.AreasForDevelopment)
	if a.RecommendedPaths == nil {
		a.RecommendedPaths = []CareerPath{}
	}
	for i := range a.RecommendedPaths {
		path := &a.RecommendedPaths[i]
		path.RequiredSkills = nonNil(path.RequiredSkills)
		path.LearningResources = nonNil(path.LearningResources)
		path.NextSteps = nonNil(path.NextSteps)
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
