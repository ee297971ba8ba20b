package database

// audit wraps a data access operation with the debug-level call trail: one
// record before fn runs and one after it returns, whatever the outcome.
// Failures are additionally reported at error level with their class and
// stack.
func audit[T any](h *Handle, op string, args map[string]any, fn func() (T, error)) (T, error) {
	log := h.log.With().Str("op", op).Logger()

	log.Debug().Fields(args).Msg("Calling database operation")

	result, err := fn()
	if err != nil {
		log.Error().Stack().Err(err).Str("class", string(Classify(err))).Msg("Database operation failed")
	}

	log.Debug().
		Interface("result", result).
		AnErr("error", err).
		Msg("Database operation finished")

	return result, err
}
