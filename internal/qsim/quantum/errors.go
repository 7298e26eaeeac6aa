package quantum

// CircuitError is returned for contract violations against a circuit
type CircuitError struct {
	Message string
}

func (e *CircuitError) Error() string {
	return e.Message
}

var (
	ErrInvalidBit            = &CircuitError{"invalid classical bit"}
	ErrEmptyRegister         = &CircuitError{"register must contain at least one qubit"}
	ErrRegisterTooLarge      = &CircuitError{"register exceeds the maximum number of qubits"}
	ErrQubitOutOfRange       = &CircuitError{"qubit index out of range"}
	ErrUnknownGate           = &CircuitError{"unknown gate"}
	ErrMalformedDistribution = &CircuitError{"outcome weights do not form a probability distribution"}
	ErrInvalidShots          = &CircuitError{"shots must be positive"}
)
