package dto

// QuizResponse represents a quiz in the API response
// @Description Quiz information
type QuizResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Type        string `json:"type"`
}

// QuizRequest is the body of quiz create and update calls
// @Description Quiz form fields
type QuizRequest struct {
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Type        string `json:"type"`
}

// Fields returns the form values keyed by validation field name.
func (r QuizRequest) Fields(quizID string) map[string]string {
	return map[string]string{
		"quizId":      quizID,
		"title":       r.Title,
		"instruction": r.Instruction,
		"question":    r.Question,
		"answer":      r.Answer,
		"category":    r.Category,
		"difficulty":  r.Difficulty,
		"type":        r.Type,
	}
}
