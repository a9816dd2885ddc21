// Package assessment scores a certificate description with keyword heuristics.
// The result is advisory input for a reviewer and never changes any state.
package assessment

import (
	"fmt"
	"math"
	"strings"
)

// Source names the engine that produced a Result.
const Source = "Pattern-based Analysis"

const baseScore = 50

var (
	prestigiousOrgs     = []string{"google", "microsoft", "amazon", "aws", "ieee", "ibm", "oracle", "coursera", "udacity", "stanford", "mit", "harvard"}
	technicalKeywords   = []string{"machine learning", "ai", "cloud", "blockchain", "data science", "cybersecurity", "devops", "full stack"}
	competitionKeywords = []string{"hackathon", "winner", "finalist", "champion", "award", "1st place", "first prize"}
	skillPatterns       = []string{"python", "java", "javascript", "react", "node", "aws", "docker", "kubernetes", "ml", "ai", "data"}
)

// Input describes the certificate under review.
type Input struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	Level       string `json:"level"`
}

// Result is the advisory assessment.
type Result struct {
	Summary            string   `json:"summary"`
	CredibilityScore   int      `json:"credibility_score"`
	CredibilityFactors []string `json:"credibility_factors"`
	CategoryAssessment string   `json:"category_assessment"`
	RecommendedPoints  int      `json:"recommended_points"`
	KeyHighlights      []string `json:"key_highlights"`
	SkillsIdentified   []string `json:"skills_identified"`
	RedFlags           []string `json:"red_flags"`
	AssessmentLevel    string   `json:"assessment_level"`
	Confidence         string   `json:"ai_confidence"`
	PoweredBy          string   `json:"powered_by"`
}

// Assess scores in.
func Assess(in Input) Result {
	title := strings.ToLower(in.Title)
	desc := strings.ToLower(in.Description)
	mentions := func(words []string) bool {
		for _, w := range words {
			if strings.Contains(title, w) || strings.Contains(desc, w) {
				return true
			}
		}
		return false
	}

	r := Result{
		CredibilityFactors: []string{},
		KeyHighlights:      []string{},
		SkillsIdentified:   []string{},
		RedFlags:           []string{},
		PoweredBy:          Source,
	}

	score := baseScore
	if mentions(prestigiousOrgs) {
		score += 30
		r.CredibilityFactors = append(r.CredibilityFactors, "Issued by recognized organization")
	}
	if mentions(technicalKeywords) {
		score += 15
		r.CredibilityFactors = append(r.CredibilityFactors, "Technical skill certification")
	}
	if mentions(competitionKeywords) {
		score += 20
		r.CredibilityFactors = append(r.CredibilityFactors, "Competition/Award achievement")
	}

	switch strings.ToLower(in.Level) {
	case "international":
		score += 20
	case "national":
		score += 15
	case "state":
		score += 10
	}
	score = min(score, 100)
	r.CredibilityScore = score

	scaled := func(f float64) int { return int(math.Floor(float64(score) * f)) }
	switch strings.ToLower(in.Category) {
	case "certification":
		r.CategoryAssessment = "Professional certification demonstrating skill validation"
		r.RecommendedPoints = scaled(0.5)
		if strings.Contains(title, "advanced") || strings.Contains(title, "professional") {
			r.KeyHighlights = append(r.KeyHighlights, "Advanced level certification")
			r.RecommendedPoints += 10
		}
	case "competition":
		r.CategoryAssessment = "Competitive achievement showing excellence"
		r.RecommendedPoints = scaled(0.7)
		if strings.Contains(title, "1st") || strings.Contains(title, "winner") || strings.Contains(title, "champion") {
			r.KeyHighlights = append(r.KeyHighlights, "Top position achieved")
			r.RecommendedPoints += 20
		}
	case "project":
		r.CategoryAssessment = "Technical project demonstrating practical skills"
		r.RecommendedPoints = scaled(0.4)
		if strings.Contains(desc, "deployed") || strings.Contains(desc, "live") || strings.Contains(desc, "production") {
			r.KeyHighlights = append(r.KeyHighlights, "Production-ready implementation")
			r.RecommendedPoints += 15
		}
	case "internship":
		r.CategoryAssessment = "Professional work experience"
		r.RecommendedPoints = scaled(0.6)
		if strings.Contains(desc, "ppo") || strings.Contains(desc, "full-time offer") {
			r.KeyHighlights = append(r.KeyHighlights, "Received full-time offer")
			r.RecommendedPoints += 25
		}
	default:
		r.CategoryAssessment = "General achievement"
		r.RecommendedPoints = scaled(0.3)
	}

	r.Summary = summary(score, in.Category)

	for _, s := range skillPatterns {
		if strings.Contains(title, s) || strings.Contains(desc, s) {
			r.SkillsIdentified = append(r.SkillsIdentified, strings.ToUpper(s))
		}
	}

	if in.Description != "" && len(in.Description) < 20 {
		r.RedFlags = append(r.RedFlags, "Very brief description - request more details")
	}
	if in.Description == "" {
		r.RedFlags = append(r.RedFlags, "No description provided")
	}
	if len(in.Title) < 5 {
		r.RedFlags = append(r.RedFlags, "Incomplete title information")
	}

	switch {
	case score >= 80:
		r.AssessmentLevel = "Excellent"
	case score >= 60:
		r.AssessmentLevel = "Good"
	case score >= 40:
		r.AssessmentLevel = "Fair"
	default:
		r.AssessmentLevel = "Needs Review"
	}

	switch {
	case score >= 70:
		r.Confidence = "High"
	case score >= 50:
		r.Confidence = "Medium"
	default:
		r.Confidence = "Low"
	}

	return r
}

func summary(score int, category string) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("Highly credible %s with exceptional value. This achievement demonstrates significant accomplishment and should be weighted heavily in evaluation.", category)
	case score >= 60:
		return fmt.Sprintf("Solid %s with good credibility. This represents meaningful achievement and validates student's capabilities in the domain.", category)
	case score >= 40:
		return fmt.Sprintf("Moderate %s with acceptable credibility. This shows student initiative and learning, though may need verification of details.", category)
	default:
		return fmt.Sprintf("Basic %s achievement. While showing student engagement, this may have limited industry recognition. Verify authenticity and scope.", category)
	}
}
