package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mdkaba/campusmind/internal/models"
)

// admissionsTerms mark queries about applying to the Computer Science
// undergraduate program.
var admissionsTerms = []string{
	"concordia", "admission", "admit", "apply", "application", "requirement",
	"prerequisite", "gpa", "r-score", "cegep", "deadline", "tuition",
	"computer science", "bcompsc",
}

// noContextReply is returned when retrieval produced nothing, so the agent
// never answers admissions questions from model memory alone.
const noContextReply = "I currently lack the specific documents needed to answer that question about Concordia admissions. Please try rephrasing or asking a different question."

// AdmissionsAgent answers questions about Concordia Computer Science
// admissions, grounded strictly in retrieved website extracts.
type AdmissionsAgent struct {
	generator Generator
	logger    *slog.Logger
}

// NewAdmissionsAgent creates the admissions specialist.
func NewAdmissionsAgent(generator Generator, logger *slog.Logger) *AdmissionsAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdmissionsAgent{generator: generator, logger: logger}
}

func (a *AdmissionsAgent) Name() string { return "AdmissionsAgent" }

func (a *AdmissionsAgent) NeedsRetrieval() bool { return true }

func (a *AdmissionsAgent) Score(_ context.Context, query string, _ []models.Message) float64 {
	score := 0.1
	if containsAny(query, admissionsTerms) {
		score += 0.8
	}
	return min(score, 1.0)
}

func (a *AdmissionsAgent) Respond(ctx context.Context, query string, history []models.Message, bundle *ContextBundle) (string, error) {
	if bundle.Empty() {
		a.logger.Warn("no context documents retrieved for admissions query")
		return noContextReply, nil
	}

	systemPrompt := fmt.Sprintf(`You are the AdmissionsAgent, a specialized assistant providing information about undergraduate Computer Science (BCompSc - General Program) admissions at Concordia University.

Answer the user's query based strictly and solely on the information contained within the provided context documents below. These documents are extracts from the official Concordia University website. Do not use any external knowledge or make assumptions beyond what is stated in the context.

Instructions:
1. Focus: your answers must pertain only to the BCompSc - General Program admissions.
2. For general questions like "What are the admission requirements?", review all context documents and present the key requirements (minimum R-score, required CEGEP or high school courses, English proficiency, deadlines if mentioned) clearly, preferably as a bulleted list.
3. Answer specific questions directly using the relevant information found in the context.
4. If the context does not contain the information needed, clearly state that it is not available in the documents you have access to. Do not guess.
5. Be helpful, accurate, and polite.

Context Documents:
-------------------
%s
-------------------`, bundle.Render())

	return a.generator.GenerateWithHistory(ctx, systemPrompt, history, query)
}
