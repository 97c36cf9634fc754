package stage

// StageBuilderOption is a functional option for configuring a Stage.
type StageBuilderOption func(*Stage)

// WithLogf replaces the function the stage reports problems through. The default is log.Printf.
//
// Parameters:
//   - logf: printf-style log function; nil is ignored
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithLogf(logf func(format string, args ...any)) StageBuilderOption {
	return func(s *Stage) {
		if logf != nil {
			s.logf = logf
		}
	}
}
