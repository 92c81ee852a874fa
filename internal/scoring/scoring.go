// Package scoring holds the fixed evaluation criteria and the
// weighted-score computation shared by the scoresheet endpoints.
package scoring

import (
	"fmt"
	"math"
)

// Criterion is one weighted scoring dimension. The list below is
// static configuration; it defines both the scoresheet inputs and the
// scoring formula.
type Criterion struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

// Criteria are the six dimensions of the evaluator scoresheet.
// Weights sum to 100, so the overall score is always in [0,100].
var Criteria = []Criterion{
	{
		ID:          "impact",
		Title:       "Environmental Impact",
		Description: "Measurable positive effects on the environment (waste reduction, emissions, biodiversity, etc.)",
		Weight:      30,
	},
	{
		ID:          "innovation",
		Title:       "Innovation & Creativity",
		Description: "Originality, creativity, and innovative use of approaches or technology.",
		Weight:      20,
	},
	{
		ID:          "sustainability",
		Title:       "Sustainability & Scalability",
		Description: "Long-term viability and potential for replication in other LGUs or organizations.",
		Weight:      20,
	},
	{
		ID:          "community",
		Title:       "Community Engagement",
		Description: "Level of community participation, awareness, and involvement.",
		Weight:      15,
	},
	{
		ID:          "implementation",
		Title:       "Implementation Quality",
		Description: "Execution quality, project management, and adherence to timelines.",
		Weight:      10,
	},
	{
		ID:          "documentation",
		Title:       "Documentation & Reporting",
		Description: "Clarity, completeness, and quality of submitted documents and reporting.",
		Weight:      5,
	},
}

// Score computes the weighted overall score from per-criterion ratings.
// A missing rating contributes zero, which lets a partially filled
// scoresheet show a running total. The result is rounded to one
// decimal place, matching what is displayed and stored.
func Score(ratings map[string]int) float64 {
	var total float64
	for _, c := range Criteria {
		r := ratings[c.ID]
		if r == 0 {
			continue
		}
		total += float64(r) / 5 * float64(c.Weight)
	}
	return math.Round(total*10) / 10
}

// ValidateRatings checks that every criterion carries a rating in 1..5.
// A complete scoresheet is required before an evaluation is accepted.
func ValidateRatings(ratings map[string]int) error {
	for _, c := range Criteria {
		r, ok := ratings[c.ID]
		if !ok || r < 1 || r > 5 {
			return fmt.Errorf("criterion %q must be rated between 1 and 5", c.ID)
		}
	}
	return nil
}
