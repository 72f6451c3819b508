package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/observability"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
)

// Scoring constants. These are load-bearing contract values, kept together as
// configuration rather than scattered literals.
const (
	scoreSkillHit     = 15
	scoreRoleInTitle  = 30
	scoreRoleInText   = 10
	scoreExperienceOK = 5
	scoreExperienceLo = -10

	admissionThreshold = 15
	maxResults         = 20
	maxSkillsListed    = 5
	truncateAt         = 200
)

// commonSkills is the fixed reference vocabulary used to suggest missing
// skills. Order is deterministic and matters: suggestions are capped at
// maxSkillsListed entries.
var commonSkills = []string{
	"python", "java", "javascript", "react", "angular", "vue", "nodejs",
	"docker", "kubernetes", "aws", "azure", "sql", "mongodb", "git",
	"typescript", "golang", "rust", "c++", "c#", ".net", "flutter", "swift",
}

// MatchService ranks the static job dataset against a candidate profile with
// transparent rule-based scoring; results are explainable and reproducible.
type MatchService struct {
	jobs []domain.JobPosting
}

// NewMatchService constructs a MatchService over the read-only dataset handle.
func NewMatchService(jobs []domain.JobPosting) MatchService {
	return MatchService{jobs: jobs}
}

// DatasetSize reports how many postings are loaded. Used by readiness probes.
func (s MatchService) DatasetSize() int { return len(s.jobs) }

// Recommend scores every posting against the candidate and returns the top
// admitted matches. An empty dataset is an operational fault, reported as
// ErrDatasetUnavailable rather than an empty success.
func (s MatchService) Recommend(profile domain.CandidateProfile) ([]domain.MatchResult, error) {
	if len(s.jobs) == 0 {
		return nil, fmt.Errorf("%w: no job postings loaded", domain.ErrDatasetUnavailable)
	}
	observability.MatchRequestsTotal.Inc()

	skills := normalizeSkills(profile.Skills)
	role := strings.ToLower(strings.TrimSpace(profile.Role))

	results := make([]domain.MatchResult, 0, len(s.jobs))
	for _, job := range s.jobs {
		name := strings.ToLower(job.Name)
		fullText := name + " " + strings.ToLower(job.Description) + " " + strings.ToLower(job.Requirement)

		score := 0
		var found []string
		for _, skill := range skills {
			if containsWholeWord(fullText, skill) {
				score += scoreSkillHit
				found = append(found, skill)
			}
		}

		if role != "" {
			if strings.Contains(name, role) {
				score += scoreRoleInTitle
			} else if strings.Contains(fullText, role) {
				score += scoreRoleInText
			}
		}

		if profile.ExperienceYears < requiredExperience(name) {
			score += scoreExperienceLo
		} else {
			score += scoreExperienceOK
		}

		if score < admissionThreshold {
			continue
		}

		clamped := clampScore(score)
		observability.MatchScoreHistogram.Observe(float64(clamped))
		results = append(results, domain.MatchResult{
			JobName:        job.Name,
			CompanyName:    companyOrUnknown(job.Company),
			JobURL:         urlOrPlaceholder(job.URL),
			JobDescription: truncate(job.Description),
			JobRequirement: truncate(job.Requirement),
			MatchScore:     clamped,
			RequiredSkills: capList(found),
			MissingSkills:  capList(missingSkills(fullText, skills)),
		})
	}

	// Stable: equal scores keep dataset order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// normalizeSkills lowercases and trims candidate skills, dropping empties and
// duplicates while preserving input order.
func normalizeSkills(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// requiredExperience infers a seniority threshold from keywords in the job
// name. Absence of any keyword means no requirement.
func requiredExperience(name string) float64 {
	switch {
	case strings.Contains(name, "senior"):
		return 3
	case strings.Contains(name, "junior"), strings.Contains(name, "fresher"):
		return 0
	case strings.Contains(name, "mid"):
		return 2
	default:
		return 0
	}
}

// containsWholeWord reports whether term occurs in text bounded by
// non-alphanumeric characters on both sides. This is an explicit scan rather
// than a \b regex so terms like "c++" and "c#" match correctly, and "java"
// never matches inside "javascript".
func containsWholeWord(text, term string) bool {
	if term == "" {
		return false
	}
	for i := 0; i+len(term) <= len(text); {
		j := strings.Index(text[i:], term)
		if j < 0 {
			return false
		}
		j += i
		end := j + len(term)
		beforeOK := j == 0 || !isAlnum(text[j-1])
		afterOK := end == len(text) || !isAlnum(text[end])
		if beforeOK && afterOK {
			return true
		}
		i = j + 1
	}
	return false
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// missingSkills returns vocabulary terms the job mentions that the candidate
// does not already have.
func missingSkills(fullText string, candidate []string) []string {
	have := make(map[string]bool, len(candidate))
	for _, s := range candidate {
		have[s] = true
	}
	var missing []string
	for _, tech := range commonSkills {
		if have[tech] {
			continue
		}
		if containsWholeWord(fullText, tech) {
			missing = append(missing, tech)
		}
	}
	return missing
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func capList(in []string) []string {
	if len(in) > maxSkillsListed {
		return in[:maxSkillsListed]
	}
	return in
}

// truncate keeps the first truncateAt bytes and always appends an ellipsis
// marker, mirroring the display contract the frontend expects.
func truncate(s string) string {
	if len(s) > truncateAt {
		s = s[:truncateAt]
	}
	return s + "..."
}

func companyOrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func urlOrPlaceholder(s string) string {
	if s == "" {
		return "#"
	}
	return s
}
