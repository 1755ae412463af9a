package crowdfund

import "fmt"

// ProgramError is the closed set of failures the crowdfund program reports.
// Values surface to the runtime as custom error codes.
type ProgramError uint32

const (
	// Empty instruction data or an unknown instruction tag
	ErrUnrecognizedInstruction ProgramError = iota + 0x1770

	// Instruction payload does not decode into the expected structure
	ErrMalformedPayload

	// A required signer did not sign, or the signer is not the campaign admin
	ErrUnauthorized

	// An account is not owned by the program
	ErrWrongOwner

	// The campaign admin differs from the initializer
	ErrAdminMismatch

	// Campaign account balance is below the rent exempt minimum
	ErrNotRentExempt

	// Withdrawal would overdraw the campaign or leave it below the rent exempt minimum
	ErrInsufficientFunds

	// Fewer accounts were provided than the instruction requires
	ErrNotEnoughAccountKeys

	// Campaign account data does not hold a valid campaign
	ErrInvalidAccountData

	// Campaign does not fit in the account data
	ErrAccountDataTooSmall

	// Escrow account is not the address derived for the campaign and donor
	ErrInvalidEscrowAddress

	// Balance or donation counter would overflow
	ErrArithmeticOverflow

	// Campaign account already holds an active campaign
	ErrAlreadyInitialized

	// Campaign account has not been through create
	ErrUninitializedCampaign
)

var programErrorKinds = map[ProgramError]string{
	ErrUnrecognizedInstruction: "UnrecognizedInstruction",
	ErrMalformedPayload:        "MalformedPayload",
	ErrUnauthorized:            "Unauthorized",
	ErrWrongOwner:              "WrongOwner",
	ErrAdminMismatch:           "AdminMismatch",
	ErrNotRentExempt:           "NotRentExempt",
	ErrInsufficientFunds:       "InsufficientFunds",
	ErrNotEnoughAccountKeys:    "NotEnoughAccountKeys",
	ErrInvalidAccountData:      "InvalidAccountData",
	ErrAccountDataTooSmall:     "AccountDataTooSmall",
	ErrInvalidEscrowAddress:    "InvalidEscrowAddress",
	ErrArithmeticOverflow:      "ArithmeticOverflow",
	ErrAlreadyInitialized:      "AlreadyInitialized",
	ErrUninitializedCampaign:   "UninitializedCampaign",
}

var programErrorMessages = map[ProgramError]string{
	ErrUnrecognizedInstruction: "unrecognized instruction",
	ErrMalformedPayload:        "malformed instruction payload",
	ErrUnauthorized:            "unauthorized",
	ErrWrongOwner:              "account is not owned by the program",
	ErrAdminMismatch:           "campaign admin does not match initializer",
	ErrNotRentExempt:           "campaign account is not rent exempt",
	ErrInsufficientFunds:       "insufficient funds",
	ErrNotEnoughAccountKeys:    "not enough account keys",
	ErrInvalidAccountData:      "invalid campaign account data",
	ErrAccountDataTooSmall:     "campaign account data too small",
	ErrInvalidEscrowAddress:    "invalid donor escrow address",
	ErrArithmeticOverflow:      "arithmetic overflow",
	ErrAlreadyInitialized:      "campaign already initialized",
	ErrUninitializedCampaign:   "campaign not initialized",
}

func (e ProgramError) Error() string {
	if msg, ok := programErrorMessages[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown crowdfund program error: %#x", uint32(e))
}

// Kind returns the stable name of the error.
func (e ProgramError) Kind() string {
	if kind, ok := programErrorKinds[e]; ok {
		return kind
	}
	return "Unknown"
}

func (e ProgramError) CustomErrorCode() uint32 {
	return uint32(e)
}

// ProgramErrorFromCode maps a custom error code reported by the runtime back
// to a ProgramError.
func ProgramErrorFromCode(code uint32) (ProgramError, bool) {
	e := ProgramError(code)
	_, ok := programErrorKinds[e]
	return e, ok
}
