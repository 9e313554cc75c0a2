package cli

import "errors"

var (
	// ErrConfig wraps any failure to load or validate the configuration.
	ErrConfig = errors.New("configuration error")

	// ErrHealthCheck is returned by the health command when the CRM does not
	// answer.
	ErrHealthCheck = errors.New("crm health check failed")
)

// ExitCode maps the outcome of a command to the process exit status. A pass
// that completed exits 0 even when some records failed; any returned error
// exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
