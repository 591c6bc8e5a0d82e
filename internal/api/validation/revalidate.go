package validation

// ValidateRevalidatePaths requires at least one absolute listing path.
func ValidateRevalidatePaths(paths []string) []FieldError {
	if len(paths) == 0 {
		return []FieldError{{Field: "paths", Message: "paths must not be empty"}}
	}
	var errs []FieldError
	for _, p := range paths {
		if len(p) == 0 || p[0] != '/' {
			errs = append(errs, FieldError{Field: "paths", Message: "paths must start with /"})
			break
		}
	}
	return errs
}
