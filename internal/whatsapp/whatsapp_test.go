package whatsapp

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felipekgouvea/cerg/models"
)

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "27999887766", OnlyDigits("(27) 99988-7766"))
	assert.Equal(t, "5527999887766", OnlyDigits("+55 27 99988-7766"))
	assert.Equal(t, "", OnlyDigits("abc"))
}

func TestLinkAddsCountryCode(t *testing.T) {
	assert.Equal(t, "https://wa.me/5527999887766", Link("27999887766", ""))
	assert.Equal(t, "https://wa.me/552733221100", Link("2733221100", ""))
	// already has the country code
	assert.Equal(t, "https://wa.me/5527999887766", Link("5527999887766", ""))
}

func TestLinkEscapesText(t *testing.T) {
	link := Link("27999887766", "Olá João")

	assert.Equal(t, "https://wa.me/5527999887766?text=Ol%C3%A1+Jo%C3%A3o", link)
}

func TestBuildPreRegistrationMessage(t *testing.T) {
	service := models.ServiceIntegral
	payment := models.PaymentOneSep

	msg := BuildPreRegistrationMessage(PreRegistrationMessage{
		StudentName:   "Maria Silva",
		BirthDate:     time.Date(2021, time.March, 10, 0, 0, 0, 0, time.UTC),
		GuardianName:  "Ana Silva",
		Grade:         models.GradePreI4,
		Service:       &service,
		PaymentOption: &payment,
		CreatedAt:     time.Date(2025, time.August, 20, 14, 30, 0, 0, time.UTC),
		Status:        models.PreStatusRealizada,
	})

	assert.Contains(t, msg, "Olá Ana Silva!")
	assert.Contains(t, msg, "*Maria Silva*")
	assert.Contains(t, msg, "10/03/2021")
	assert.Contains(t, msg, "Pré I (4 anos)")
	assert.Contains(t, msg, "Integral")
	assert.Contains(t, msg, "1x (Outubro)")
	assert.Contains(t, msg, "20/08/2025 14:30")
	assert.Contains(t, msg, "realizada")
}

func TestBuildPreRegistrationMessageWithoutOptionalFields(t *testing.T) {
	msg := BuildPreRegistrationMessage(PreRegistrationMessage{
		StudentName:  "Maria Silva",
		GuardianName: "Ana Silva",
		Grade:        models.GradeAno1,
		CreatedAt:    time.Now(),
		Status:       models.PreStatusEmConversas,
	})

	assert.Contains(t, msg, "• Serviço: —")
	assert.Contains(t, msg, "• Forma de pagamento: —")
	assert.Contains(t, msg, "em conversas")
	assert.False(t, strings.Contains(msg, "em_conversas"))
}
