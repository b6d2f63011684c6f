package blood

import "github.com/covaid/covaid-backend/internal/validation"

// BloodType is the stored blood group code.
type BloodType int

const (
	APositive BloodType = iota
	ANegative
	OPositive
	ONegative
	BPositive
	BNegative
	ABPositive
	ABNegative
)

var labels = [...]string{"A+", "A-", "O+", "O-", "B+", "B-", "AB+", "AB-"}

// donorsFor maps a receiver's group to the donor groups it can safely take.
var donorsFor = map[BloodType][]BloodType{
	APositive:  {APositive, ANegative, OPositive, ONegative},
	ANegative:  {ANegative, ONegative},
	OPositive:  {OPositive, ONegative},
	ONegative:  {ONegative},
	BPositive:  {BPositive, BNegative, OPositive, ONegative},
	BNegative:  {BNegative, ONegative},
	ABPositive: {APositive, ANegative, OPositive, ONegative, BPositive, BNegative, ABPositive, ABNegative},
	ABNegative: {ABNegative, ANegative, BNegative, ONegative},
}

func (b BloodType) Valid() bool {
	return b >= APositive && b <= ABNegative
}

func (b BloodType) String() string {
	if !b.Valid() {
		return "unknown"
	}
	return labels[b]
}

// ParseBloodType converts a label such as "AB-" to its code.
func ParseBloodType(label string) (BloodType, error) {
	for i, l := range labels {
		if l == label {
			return BloodType(i), nil
		}
	}
	return 0, validation.Errorf("unknown blood type %q", label)
}

// CompatibleDonors returns the donor codes a receiver of type b can accept.
func CompatibleDonors(b BloodType) ([]int, error) {
	donors, ok := donorsFor[b]
	if !ok {
		return nil, validation.Errorf("bloodType must be between 0 and 7, got %d", int(b))
	}
	codes := make([]int, len(donors))
	for i, d := range donors {
		codes[i] = int(d)
	}
	return codes, nil
}
