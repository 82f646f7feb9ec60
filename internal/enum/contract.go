package enum

type ContractType string

const (
	ContractIndefinite ContractType = "indefinite"
	ContractFixedTerm  ContractType = "fixed_term"
	ContractFreelance  ContractType = "freelance"
	ContractInternship ContractType = "internship"
)

func (c ContractType) String() string {
	return string(c)
}

func DecodeContractType(s string) ContractType {
	switch s {
	case "fixed_term":
		return ContractFixedTerm
	case "freelance":
		return ContractFreelance
	case "internship":
		return ContractInternship
	default:
		return ContractIndefinite
	}
}
