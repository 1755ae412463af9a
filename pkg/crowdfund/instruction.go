package crowdfund

// InstructionType is the tag in the first byte of every crowdfund instruction.
type InstructionType uint8

const (
	InstructionTypeCreateCampaign InstructionType = iota
	InstructionTypeWithdraw
	InstructionTypeDonate
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeCreateCampaign:
		return "create_campaign"
	case InstructionTypeWithdraw:
		return "withdraw"
	case InstructionTypeDonate:
		return "donate"
	}
	return "unknown"
}

// ParseInstruction splits instruction data into its tag and the remaining
// instruction specific payload. The payload is returned as is.
func ParseInstruction(data []byte) (InstructionType, []byte, error) {
	if len(data) == 0 {
		return 0, nil, ErrUnrecognizedInstruction
	}

	t := InstructionType(data[0])
	switch t {
	case InstructionTypeCreateCampaign, InstructionTypeWithdraw, InstructionTypeDonate:
		return t, data[1:], nil
	default:
		return t, nil, ErrUnrecognizedInstruction
	}
}

func newInstructionData(t InstructionType, payload []byte) []byte {
	data := make([]byte, 1+len(payload))
	data[0] = uint8(t)
	copy(data[1:], payload)
	return data
}
