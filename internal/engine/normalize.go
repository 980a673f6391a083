package engine

// UnknownModel is reported when the engine never names the model it used.
const UnknownModel = "Unknown"

// WorkflowSummary is the fully-reconciled workflow description returned to
// callers. Unlike WorkflowInfo, no field is ever missing.
type WorkflowSummary struct {
	InitialGenerationCompleted bool     `json:"initialGenerationCompleted"`
	EvaluationPerformed        bool     `json:"evaluationPerformed"`
	EvaluationScore            *float64 `json:"evaluationScore"`
	OptimizationPerformed      bool     `json:"optimizationPerformed"`
	OptimizationIterations     int      `json:"optimizationIterations"`
	ModelUsed                  string   `json:"modelUsed"`
}

// SummarizeWorkflow collapses a possibly-incomplete, possibly-duplicated
// engine response into one WorkflowSummary. Merging is per field,
// first-non-nil-wins:
//
//   - evaluationPerformed: workflowInfo value, else false
//   - evaluationScore: workflowInfo value, else evaluation.score, else nil
//   - optimizationPerformed: top-level value, else workflowInfo value, else false
//   - optimizationIterations: workflowInfo value, else 1 when optimization
//     was performed, else 0
//   - modelUsed: top-level value, else workflowInfo value, else "Unknown"
//
// The function is pure; it never mutates resp.
func SummarizeWorkflow(resp *Response) WorkflowSummary {
	summary := WorkflowSummary{
		InitialGenerationCompleted: true,
		ModelUsed:                  UnknownModel,
	}
	if resp == nil {
		return summary
	}

	wi := resp.WorkflowInfo

	if wi != nil && wi.EvaluationPerformed != nil {
		summary.EvaluationPerformed = *wi.EvaluationPerformed
	}

	if wi != nil && wi.EvaluationScore != nil {
		score := *wi.EvaluationScore
		summary.EvaluationScore = &score
	} else if resp.Evaluation != nil && resp.Evaluation.Score != nil {
		score := *resp.Evaluation.Score
		summary.EvaluationScore = &score
	}

	if resp.OptimizationPerformed != nil {
		summary.OptimizationPerformed = *resp.OptimizationPerformed
	} else if wi != nil && wi.OptimizationPerformed != nil {
		summary.OptimizationPerformed = *wi.OptimizationPerformed
	}

	if wi != nil && wi.OptimizationIterations != nil {
		summary.OptimizationIterations = *wi.OptimizationIterations
	} else if summary.OptimizationPerformed {
		summary.OptimizationIterations = 1
	}

	if resp.ModelUsed != nil {
		summary.ModelUsed = *resp.ModelUsed
	} else if wi != nil && wi.ModelUsed != nil {
		summary.ModelUsed = *wi.ModelUsed
	}

	return summary
}
