package critique

import (
	"strings"
)

const jsonOnlyInstruction = "You reply with a single JSON object and nothing else."

// ReviewPrompt frames the reviewer and the answer shape. BuildPrompt appends
// the CV and the job post.
const ReviewPrompt = `You are an experienced technical hiring manager. You have read thousands of CVs, you have no patience for filler or corporate boilerplate, and you only care whether the candidate's experience maps onto the open role. Be direct and objective.

Compare the CV with the job post. Suggest only changes that would materially raise the candidate's chance of an interview. List strengths when the CV scores above 70.

Answer with JSON in exactly this shape:

{
  "overallScore": number,
  "strengths": [string],
  "improvements": [
    {"originalText": string, "suggestion": string}
  ],
  "newScore": number
}

Scoring (0-100): 40% keyword and phrasing overlap with the job post, 30% quantified achievements rather than duties, 20% relevance of experience to the stated requirements, 10% concision and structure. newScore is the score after every suggestion is applied.

Do not:
- add version numbers or trivia ("JavaScript" stays "JavaScript" unless the post insists on a version);
- turn short bullet points into long sentences;
- touch lines that are already clear and relevant. An empty improvements array is a valid answer.

For every improvement:
- "originalText" must be copied character for character from a single paragraph of the CV, without HTML tags;
- reuse the job post's own wording where it fits;
- state impact, preferably measured ("Responsible for deployments" becomes "Automated deployments, reducing release time by 50%");
- keep the shape of the original: a bullet stays a bullet, a keyword list stays a keyword list, similar length.

Suggestions may use light emphasis, only on high-impact parts such as metrics:
**text** bold, *text* or _text_ italic, ***text*** bold italic, __text__ underline.`

// BuildPrompt assembles the full prompt for one CV and job post.
func BuildPrompt(cvHTML, jobPost string) string {
	var sb strings.Builder
	sb.WriteString(ReviewPrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString("CV (HTML):\n")
	sb.WriteString(strings.TrimSpace(cvHTML))
	sb.WriteString("\n\nJob post:\n")
	sb.WriteString(strings.TrimSpace(jobPost))
	return sb.String()
}

// FitPrompt builds the prompt, truncating the inputs so the whole prompt
// stays within maxTokens. The CV keeps priority; the job post gets at most
// half of the remaining budget. maxTokens <= 0 disables truncation.
func FitPrompt(cvHTML, jobPost string, maxTokens int) string {
	if maxTokens <= 0 {
		return BuildPrompt(cvHTML, jobPost)
	}
	prompt := BuildPrompt(cvHTML, jobPost)
	if EstimateTokens(prompt) <= maxTokens {
		return prompt
	}

	remaining := maxTokens - EstimateTokens(BuildPrompt("", ""))
	if remaining <= 0 {
		return BuildPrompt("", "")
	}
	jobBudget := min(EstimateTokens(jobPost), remaining/2)
	cvBudget := remaining - jobBudget
	return BuildPrompt(TruncateToTokens(cvHTML, cvBudget), TruncateToTokens(jobPost, jobBudget))
}
