package validation

// FlagSubmissionRequest mirrors the fields of a flag submission.
type FlagSubmissionRequest struct {
	ChallengeID int64
}

// ValidateFlagSubmissionRequest checks the challenge reference. An empty flag
// is not a validation error; the submission workflow answers it.
func ValidateFlagSubmissionRequest(req FlagSubmissionRequest) []FieldError {
	if req.ChallengeID <= 0 {
		return []FieldError{{Field: "challengeId", Message: "challengeId must be a positive integer"}}
	}
	return nil
}
