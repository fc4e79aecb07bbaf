// Package whatsapp builds the follow-up messages and wa.me links the staff
// send to guardians. Nothing here talks to WhatsApp; the staff click the
// generated links themselves.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/felipekgouvea/cerg/models"
)

// Display labels for the domain vocabulary. These are presentation lookups,
// immutable by convention; the billing core never touches them.
var GradeLabel = map[models.Grade]string{
	models.GradeMaternal3: "Maternal (3 anos)",
	models.GradePreI4:     "Pré I (4 anos)",
	models.GradePreII5:    "Pré II (5 anos)",
	models.GradeAno1:      "1º ANO",
	models.GradeAno2:      "2º ANO",
	models.GradeAno3:      "3º ANO",
	models.GradeAno4:      "4º ANO",
	models.GradeAno5:      "5º ANO",
}

var ServiceLabel = map[models.ServiceKey]string{
	models.ServiceIntegral:              "Integral",
	models.ServiceMeioPeriodo:           "Meio período",
	models.ServiceInfantilVespertino:    "Infantil – Vespertino",
	models.ServiceFundamentalVespertino: "Fundamental – Vespertino",
}

// The single-installment plan is stored as one_sep but advertised as
// October; the label follows the UI.
var PaymentLabel = map[models.PaymentOption]string{
	models.PaymentOneSep:    "1x (Outubro)",
	models.PaymentTwoSepOct: "2x (Set/Out)",
}

const schoolName = "CERG"

// PreRegistrationMessage is the data needed to render the confirmation text.
type PreRegistrationMessage struct {
	StudentName   string
	BirthDate     time.Time
	GuardianName  string
	Grade         models.Grade
	Service       *models.ServiceKey
	PaymentOption *models.PaymentOption
	CreatedAt     time.Time
	Status        models.PreStatus
}

// BuildPreRegistrationMessage renders the Portuguese confirmation message
// sent to the guardian after a pre-registration arrives.
func BuildPreRegistrationMessage(m PreRegistrationMessage) string {
	serviceLabel := "—"
	if m.Service != nil {
		if l, ok := ServiceLabel[*m.Service]; ok {
			serviceLabel = l
		}
	}
	paymentLabel := "—"
	if m.PaymentOption != nil {
		if l, ok := PaymentLabel[*m.PaymentOption]; ok {
			paymentLabel = l
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Olá %s! Aqui é do %s 👋\n\n", m.GuardianName, schoolName)
	fmt.Fprintf(&b, "Recebemos a PRÉ-MATRÍCULA de *%s*.\n\n", m.StudentName)
	b.WriteString("📌 Dados enviados:\n")
	fmt.Fprintf(&b, "• Nascimento: %s\n", FormatDateBR(m.BirthDate))
	fmt.Fprintf(&b, "• Série pretendida: %s\n", GradeLabel[m.Grade])
	fmt.Fprintf(&b, "• Serviço: %s\n", serviceLabel)
	fmt.Fprintf(&b, "• Forma de pagamento: %s\n", paymentLabel)
	fmt.Fprintf(&b, "• Enviado em: %s\n", FormatDateTimeBR(m.CreatedAt))
	fmt.Fprintf(&b, "• Status: %s\n\n", strings.ReplaceAll(string(m.Status), "_", " "))
	b.WriteString("Em breve entraremos em contato para os próximos passos.\nSe preferir, pode responder por aqui. Obrigado!")
	return b.String()
}

// Link builds the wa.me deep link for a phone, optionally pre-filling text.
// Brazilian numbers without a country code (10 or 11 digits) get 55
// prepended.
func Link(phone, text string) string {
	digits := OnlyDigits(phone)
	if len(digits) == 10 || len(digits) == 11 {
		digits = "55" + digits
	}
	link := "https://wa.me/" + digits
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}

// OnlyDigits strips every non-digit from a phone string.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatDateBR renders a date as dd/mm/yyyy.
func FormatDateBR(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatDateTimeBR renders a timestamp as dd/mm/yyyy hh:mm.
func FormatDateTimeBR(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}
