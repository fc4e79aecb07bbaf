package models

// Grade is the school grade a student attends (or intends to attend).
type Grade string

const (
	GradeMaternal3 Grade = "MATERNAL_3"
	GradePreI4     Grade = "PRE_I_4"
	GradePreII5    Grade = "PRE_II_5"
	GradeAno1      Grade = "ANO_1"
	GradeAno2      Grade = "ANO_2"
	GradeAno3      Grade = "ANO_3"
	GradeAno4      Grade = "ANO_4"
	GradeAno5      Grade = "ANO_5"
)

// AllGrades lists every grade in school order.
var AllGrades = []Grade{
	GradeMaternal3, GradePreI4, GradePreII5,
	GradeAno1, GradeAno2, GradeAno3, GradeAno4, GradeAno5,
}

func (g Grade) Valid() bool {
	for _, v := range AllGrades {
		if g == v {
			return true
		}
	}
	return false
}

// GradePromotion maps a grade to the grade of the following school year.
// The last grade repeats itself; the school has no 6th year.
var GradePromotion = map[Grade]Grade{
	GradeMaternal3: GradePreI4,
	GradePreI4:     GradePreII5,
	GradePreII5:    GradeAno1,
	GradeAno1:      GradeAno2,
	GradeAno2:      GradeAno3,
	GradeAno3:      GradeAno4,
	GradeAno4:      GradeAno5,
	GradeAno5:      GradeAno5,
}

// ServiceKey identifies one of the school's service offerings.
type ServiceKey string

const (
	ServiceIntegral              ServiceKey = "integral"
	ServiceMeioPeriodo           ServiceKey = "meio_periodo"
	ServiceInfantilVespertino    ServiceKey = "infantil_vespertino"
	ServiceFundamentalVespertino ServiceKey = "fundamental_vespertino"
)

var AllServiceKeys = []ServiceKey{
	ServiceIntegral, ServiceMeioPeriodo,
	ServiceInfantilVespertino, ServiceFundamentalVespertino,
}

func (k ServiceKey) Valid() bool {
	for _, v := range AllServiceKeys {
		if k == v {
			return true
		}
	}
	return false
}

// PreStatus tracks how a pre-registration or pre-reenrollment lead is going.
type PreStatus string

const (
	PreStatusRealizada   PreStatus = "realizada"
	PreStatusEmConversas PreStatus = "em_conversas"
	PreStatusFinalizado  PreStatus = "finalizado"
	PreStatusCancelado   PreStatus = "cancelado"
)

func (s PreStatus) Valid() bool {
	switch s {
	case PreStatusRealizada, PreStatusEmConversas, PreStatusFinalizado, PreStatusCancelado:
		return true
	}
	return false
}

// PaymentOption is the payment plan the family picked on the intent form.
// Stored values predate the current UI labels: the single installment is
// stored as one_sep even though the UI offers it as "1x (Outubro)".
type PaymentOption string

const (
	PaymentOneSep    PaymentOption = "one_sep"
	PaymentTwoSepOct PaymentOption = "two_sep_oct"
)

func (p PaymentOption) Valid() bool {
	return p == PaymentOneSep || p == PaymentTwoSepOct
}

// PriceTier selects which column of the price table applies.
type PriceTier string

const (
	TierTable        PriceTier = "table"
	TierPunctual     PriceTier = "punctual"
	TierReenrollment PriceTier = "reenrollment"
)

// EnrollmentStatus is the state of a school-year enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending     EnrollmentStatus = "pending"
	EnrollmentActive      EnrollmentStatus = "active"
	EnrollmentCancelled   EnrollmentStatus = "cancelled"
	EnrollmentTransferred EnrollmentStatus = "transferred"
)

// ContractStatus is the state of a signed (or drafted) contract.
type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
)
