package domain

// ProblemRequest is the payload of a solve request.
type ProblemRequest struct {
	Problem         string `json:"problem"`
	PreferredMethod string `json:"preferredMethod,omitempty"`
}

// ParsedAnalysis holds the fields extracted from a structured completion.
// Any field may carry its default when the label was absent from Raw.
type ParsedAnalysis struct {
	Operation  string `json:"operation"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Steps      string `json:"steps"`
	Raw        string `json:"raw"`
}

// Computation is the answer of the symbolic math service.
type Computation struct {
	Operation  string `json:"operation"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
}

// Calculation methods reported in SolveResponse.
const (
	MethodAI       = "ai"
	MethodNewton   = "newton"
	MethodFallback = "fallback"
)

// OperationGeneral labels results produced by the fallback branch.
const OperationGeneral = "general"

// Analysis is the interpretation part of a SolveResponse.
type Analysis struct {
	Operation  string `json:"operation"`
	Expression string `json:"expression"`
	Context    string `json:"context"`
}

// Calculation is the result part of a SolveResponse.
type Calculation struct {
	Method    string `json:"method"`
	Result    string `json:"result"`
	Operation string `json:"operation"`
	Steps     string `json:"steps,omitempty"`
}

// SolveResponse is the assembled answer to one ProblemRequest.
type SolveResponse struct {
	Success         bool        `json:"success"`
	RequestID       string      `json:"requestId"`
	OriginalProblem string      `json:"originalProblem"`
	Analysis        Analysis    `json:"analysis"`
	Calculation     Calculation `json:"calculation"`
	Explanation     string      `json:"explanation"`
	RawModelOutput  string      `json:"rawModelOutput,omitempty"`
	Warnings        []string    `json:"warnings,omitempty"`
}
